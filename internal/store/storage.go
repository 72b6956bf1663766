package store

import (
	"github.com/jmoiron/sqlx"
)

// Storage aggregates every repository the pipeline needs, the way the
// reference's Storage aggregated Commitment/Liquidation/Payment stores —
// generalized here to the proposals/programs/supporters/amendments domain.
type Storage struct {
	Programs    *ProgramStore
	Proposals   *ProposalStore
	Supporters  *SupporterStore
	Amendments  *AmendmentStore
	Junctions   *JunctionStore
	Proponents  *ProponentStore
	Lineage     *LineageStore
	RunLogs     *RunLogStore
	AdvisoryLock *AdvisoryLockStore

	DB *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Programs:     &ProgramStore{},
		Proposals:    &ProposalStore{},
		Supporters:   &SupporterStore{},
		Amendments:   &AmendmentStore{},
		Junctions:    &JunctionStore{},
		Proponents:   &ProponentStore{},
		Lineage:      &LineageStore{},
		RunLogs:      &RunLogStore{},
		AdvisoryLock: &AdvisoryLockStore{},
		DB:           db,
	}
}
