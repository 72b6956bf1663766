package store

import (
	sq "github.com/Masterminds/squirrel"
)

// psql builds statements with Postgres "$n" placeholders — squirrel's
// default is "?", which lib/pq does not accept.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// UpsertCounts is what C7 returns per table: affected row counts, split by
// whether Postgres actually inserted or updated each row (via the
// `xmax = 0` trick on RETURNING, which is true only for newly-inserted
// tuples in the same command).
type UpsertCounts struct {
	Inserted int
	Updated  int
}

func (c UpsertCounts) Total() int { return c.Inserted + c.Updated }

// batchSize bounds how many rows go into a single multi-VALUES upsert
// statement, matching §4.7's "issued in server-side batches".
const batchSize = 500

func chunkInts(total, size int) [][2]int {
	var out [][2]int
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
