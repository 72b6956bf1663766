package store

import (
	"context"
	"hash/fnv"

	"github.com/jmoiron/sqlx"
)

// advisoryLockKey is a fixed Postgres advisory-lock key for the pipeline's
// single-writer lock (§3.2 invariant 8, §4.11). Derived once from a stable
// name rather than hardcoding a magic int64, so the key's origin stays
// legible.
var advisoryLockKey = lockKey("projetus:pipeline:run")

func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

type AdvisoryLockStore struct{}

// TryAcquire returns immediately (no wait) — contention means another run
// holds the lock, and the caller reports AlreadyRunning (§4.11). A session
// lock only means anything pinned to one physical connection, so callers
// must pass a *sqlx.Conn checked out for the run's whole lifetime and
// release on that same Conn.
func (s *AdvisoryLockStore) TryAcquire(ctx context.Context, conn *sqlx.Conn) (bool, error) {
	var acquired bool
	err := conn.GetContext(ctx, &acquired, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey)
	return acquired, err
}

// Release must be called on the same Conn the lock was acquired on.
func (s *AdvisoryLockStore) Release(ctx context.Context, conn *sqlx.Conn) error {
	_, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	return err
}
