// Package lineage implements C9, the Lineage Recorder (§4.9): one append
// -only provenance row per base-entity upsert in a run.
package lineage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/store"
	"github.com/jmoiron/sqlx"
)

// EntityType names a base entity for lineage purposes. Junction rows
// (ProposalSupporter, ProposalAmendment) are not base entities and get no
// lineage rows of their own — §4.9 scopes lineage to "every base-entity
// upsert".
type EntityType string

const (
	EntityProgram    EntityType = "programa"
	EntityProposal   EntityType = "proposta"
	EntitySupporter  EntityType = "apoiador"
	EntityAmendment  EntityType = "emenda"
	EntityProponent  EntityType = "proponente"
)

// Hash computes the record_hash §4.9 specifies: SHA-256 of the
// JSON-encoded, key-sorted, canonical representation of a record. Marshal
// once to produce a plain value tree, then re-marshal — encoding/json
// always emits object keys in sorted order for map values, which gives the
// canonical form without a bespoke sorter.
func Hash(record interface{}) (string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Batch is everything C9 needs about one run's entity outputs, grouped by
// the file each row's lineage should cite (§4.10 keys loaded_count off
// source_file, so C9 and C10 must agree on what a row's file was).
type Batch struct {
	RunID          string
	PipelineVersion string
	ExtractionTS   time.Time

	Programs     []model.ProgramInput
	ProgramasFile string

	Proposals     []model.ProposalInput
	PropostasFile string

	Supporters []model.SupporterInput
	Amendments []model.AmendmentInput
	LinkFile   string // apoiadores_emendas file both derive from

	Proponents []model.ProponentInput
}

// Record builds the lineage rows for one run without writing them, so
// callers (and tests) can inspect counts before C10 runs.
func Record(b Batch) ([]store.LineageRecord, error) {
	var rows []store.LineageRecord

	for _, p := range b.Programs {
		hash, err := Hash(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row(b, EntityProgram, p.SourceID, b.ProgramasFile, hash))
	}

	for _, p := range b.Proposals {
		hash, err := Hash(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row(b, EntityProposal, p.SourceID, b.PropostasFile, hash))
	}

	for _, s := range b.Supporters {
		hash, err := Hash(s)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row(b, EntitySupporter, s.NaturalKey, b.LinkFile, hash))
	}

	for _, a := range b.Amendments {
		hash, err := Hash(a)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row(b, EntityAmendment, a.Numero, b.LinkFile, hash))
	}

	for _, p := range b.Proponents {
		hash, err := Hash(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row(b, EntityProponent, p.CNPJ, b.PropostasFile, hash))
	}

	return rows, nil
}

func row(b Batch, entity EntityType, naturalKey, sourceFile, hash string) store.LineageRecord {
	return store.LineageRecord{
		RunID:               b.RunID,
		EntityType:          string(entity),
		EntityNaturalKey:    naturalKey,
		SourceFile:          sourceFile,
		ExtractionTimestamp: b.ExtractionTS,
		PipelineVersion:     b.PipelineVersion,
		RecordHash:          hash,
	}
}

// Run builds and writes the batch's lineage rows inside the run transaction
// (§4.9: "Lineage is written inside the run transaction").
func Run(ctx context.Context, tx *sqlx.Tx, storage *store.Storage, b Batch) error {
	rows, err := Record(b)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return storage.Lineage.Insert(ctx, tx, rows)
}
