// Package load implements C7, the Loader (§4.7): it orders upserts by the
// dependency DAG, stamps the audit columns invariant 3 reserves for the
// core, and resolves program links without clobbering existing ones.
package load

import (
	"context"
	"time"

	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/store"
	"github.com/jmoiron/sqlx"
)

// Counts is C7's per-table affected-row report (§4.7: "returns affected
// counts per table").
type Counts struct {
	Programs            store.UpsertCounts
	Proposals           store.UpsertCounts
	Supporters          store.UpsertCounts
	Amendments          store.UpsertCounts
	ProposalSupporters  store.UpsertCounts
	ProposalAmendments  store.UpsertCounts
	Proponents          store.UpsertCounts
	ProgramLinksResolved int
}

// Total sums every table's affected rows, used by the Orchestrator to
// populate RunLog.total_records.
func (c Counts) Total() int {
	return c.Programs.Total() + c.Proposals.Total() + c.Supporters.Total() +
		c.Amendments.Total() + c.ProposalSupporters.Total() + c.ProposalAmendments.Total() +
		c.Proponents.Total()
}

// Run executes the ordered upserts in one transaction: programs → proposals
// → supporters → amendments → proposal_supporters → proposal_amendments →
// proponents, then resolves program links. All rows get the same run
// extraction_date, per §4.7 ("each row carries the run's extraction_date").
func Run(
	ctx context.Context,
	tx *sqlx.Tx,
	storage *store.Storage,
	runTimestamp time.Time,
	programs []model.ProgramInput,
	proposals []model.ProposalInput,
	rel model.RelationshipExtraction,
	proponents []model.ProponentInput,
) (Counts, error) {
	var counts Counts
	var err error

	counts.Programs, err = storage.Programs.Upsert(ctx, tx, stampPrograms(programs, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.Proposals, err = storage.Proposals.Upsert(ctx, tx, stampProposals(proposals, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.Supporters, err = storage.Supporters.Upsert(ctx, tx, stampSupporters(rel.Supporters, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.Amendments, err = storage.Amendments.Upsert(ctx, tx, stampAmendments(rel.Amendments, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.ProposalSupporters, err = storage.Junctions.UpsertProposalSupporters(ctx, tx, stampProposalSupporters(rel.ProposalSupporters, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.ProposalAmendments, err = storage.Junctions.UpsertProposalAmendments(ctx, tx, stampProposalAmendments(rel.ProposalAmendments, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.Proponents, err = storage.Proponents.Upsert(ctx, tx, stampProponents(proponents, runTimestamp))
	if err != nil {
		return counts, err
	}

	counts.ProgramLinksResolved, err = storage.Proposals.ResolveProgramLinks(ctx, tx, rel.ProgramLinks)
	if err != nil {
		return counts, err
	}

	return counts, nil
}

func stampPrograms(in []model.ProgramInput, ts time.Time) []store.Program {
	out := make([]store.Program, len(in))
	for i, p := range in {
		out[i] = store.Program{
			SourceID: p.SourceID, Nome: p.Nome, Orgao: p.Orgao,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampProposals(in []model.ProposalInput, ts time.Time) []store.Proposal {
	out := make([]store.Proposal, len(in))
	for i, p := range in {
		out[i] = store.Proposal{
			SourceID: p.SourceID, Titulo: p.Titulo, ValorGlobal: p.ValorGlobal,
			DataPublicacao: p.DataPublicacao, Estado: p.Estado, Municipio: p.Municipio,
			Situacao: p.Situacao, ProgramaID: p.ProgramaID, ProponenteCNPJ: p.ProponenteCNPJ,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampSupporters(in []model.SupporterInput, ts time.Time) []store.Supporter {
	out := make([]store.Supporter, len(in))
	for i, s := range in {
		out[i] = store.Supporter{
			NaturalKey: s.NaturalKey, NomeParlamentar: s.NomeParlamentar,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampAmendments(in []model.AmendmentInput, ts time.Time) []store.Amendment {
	out := make([]store.Amendment, len(in))
	for i, a := range in {
		out[i] = store.Amendment{
			Numero: a.Numero, Autor: a.Autor, Valor: a.Valor, Tipo: a.Tipo, Ano: a.Ano,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampProposalSupporters(in []model.ProposalSupporterLink, ts time.Time) []store.ProposalSupporter {
	out := make([]store.ProposalSupporter, len(in))
	for i, l := range in {
		out[i] = store.ProposalSupporter{
			PropostaSourceID: l.PropostaSourceID, ApoiadorNaturalKey: l.ApoiadorNaturalKey,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampProposalAmendments(in []model.ProposalAmendmentLink, ts time.Time) []store.ProposalAmendment {
	out := make([]store.ProposalAmendment, len(in))
	for i, l := range in {
		out[i] = store.ProposalAmendment{
			PropostaSourceID: l.PropostaSourceID, EmendaNumero: l.EmendaNumero,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}

func stampProponents(in []model.ProponentInput, ts time.Time) []store.Proponent {
	out := make([]store.Proponent, len(in))
	for i, p := range in {
		out[i] = store.Proponent{
			CNPJ: p.CNPJ, Nome: p.Nome, NaturezaJuridica: p.NaturezaJuridica,
			Estado: p.Estado, Municipio: p.Municipio, CEP: p.CEP,
			Endereco: p.Endereco, Bairro: p.Bairro, IsOSC: p.IsOSC,
			CreatedAt: ts, UpdatedAt: ts, ExtractionDate: ts,
		}
	}
	return out
}
