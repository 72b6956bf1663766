package orchestrator

import (
	"github.com/farxc/projetus/internal/encoding"
	"github.com/farxc/projetus/internal/model"
	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/farxc/projetus/internal/reader"
	"github.com/farxc/projetus/internal/relate"
	"github.com/farxc/projetus/internal/schema"
	"github.com/farxc/projetus/internal/validate"
)

// ParsedPropostas is C1-C4's combined output for the propostas file group.
// TotalRows is the schema-accepted row count §4.10 reconciles against
// (Open Question #3: post-schema-acceptance, not raw input, and not the
// row-validation-accepted subset either).
type ParsedPropostas struct {
	Path      string
	TotalRows int
	Valid     []model.ProposalInput
	RowErrors []pipelineerr.RowError
}

type ParsedProgramas struct {
	Path      string
	TotalRows int
	Valid     []model.ProgramInput
	RowErrors []pipelineerr.RowError
}

type ParsedApoiadoresEmendas struct {
	Path        string
	TotalRows   int
	Relationship model.RelationshipExtraction
}

// ParsePropostas runs C1 (encoding) -> C2 (read) -> C3 (schema) -> C4
// (validate) over the propostas file. A *pipelineerr.Error return is a
// quarantine signal (EmptyFile, SchemaValidationError, all rows invalid, or
// a Fatal detect/read failure): the caller skips the whole file group and
// the run becomes partial (§4.11, §7).
func ParsePropostas(path string) (ParsedPropostas, *pipelineerr.Error) {
	enc, err := encoding.Detect(path)
	if err != nil {
		return ParsedPropostas{}, pipelineerr.Fatal("orchestrator.ParsePropostas:detect", err)
	}
	table, err := reader.Read(path, enc)
	if err != nil {
		if pe, ok := err.(*pipelineerr.Error); ok {
			return ParsedPropostas{Path: path}, pe
		}
		return ParsedPropostas{}, pipelineerr.Fatal("orchestrator.ParsePropostas:read", err)
	}

	mapping, err := schema.Resolve(schema.EntityPropostas, table.Names())
	if err != nil {
		pe, _ := err.(*pipelineerr.Error)
		return ParsedPropostas{Path: path}, pe
	}

	result := validate.Proposals(table, mapping)
	if len(result.Valid) == 0 && table.Nrow() > 0 {
		return ParsedPropostas{Path: path, TotalRows: table.Nrow(), RowErrors: result.Errors},
			pipelineerr.New(pipelineerr.KindRowValidation, "orchestrator.ParsePropostas:allRowsInvalid", path, nil)
	}

	return ParsedPropostas{
		Path:      path,
		TotalRows: table.Nrow(),
		Valid:     result.Valid,
		RowErrors: result.Errors,
	}, nil
}

// ParseProgramas mirrors ParsePropostas for the programas file group.
func ParseProgramas(path string) (ParsedProgramas, *pipelineerr.Error) {
	enc, err := encoding.Detect(path)
	if err != nil {
		return ParsedProgramas{}, pipelineerr.Fatal("orchestrator.ParseProgramas:detect", err)
	}
	table, err := reader.Read(path, enc)
	if err != nil {
		if pe, ok := err.(*pipelineerr.Error); ok {
			return ParsedProgramas{Path: path}, pe
		}
		return ParsedProgramas{}, pipelineerr.Fatal("orchestrator.ParseProgramas:read", err)
	}

	mapping, err := schema.Resolve(schema.EntityProgramas, table.Names())
	if err != nil {
		pe, _ := err.(*pipelineerr.Error)
		return ParsedProgramas{Path: path}, pe
	}

	result := validate.Programs(table, mapping)
	if len(result.Valid) == 0 && table.Nrow() > 0 {
		return ParsedProgramas{Path: path, TotalRows: table.Nrow(), RowErrors: result.Errors},
			pipelineerr.New(pipelineerr.KindRowValidation, "orchestrator.ParseProgramas:allRowsInvalid", path, nil)
	}

	return ParsedProgramas{
		Path:      path,
		TotalRows: table.Nrow(),
		Valid:     result.Valid,
		RowErrors: result.Errors,
	}, nil
}

// ParseApoiadoresEmendas runs C1-C3 then C5 (relate.Extract) over the link
// file, the only file group C4's per-row validator doesn't touch directly —
// §4.5 extraction already discards rows missing both relationship sides.
func ParseApoiadoresEmendas(path string) (ParsedApoiadoresEmendas, *pipelineerr.Error) {
	enc, err := encoding.Detect(path)
	if err != nil {
		return ParsedApoiadoresEmendas{}, pipelineerr.Fatal("orchestrator.ParseApoiadoresEmendas:detect", err)
	}
	table, err := reader.Read(path, enc)
	if err != nil {
		if pe, ok := err.(*pipelineerr.Error); ok {
			return ParsedApoiadoresEmendas{Path: path}, pe
		}
		return ParsedApoiadoresEmendas{}, pipelineerr.Fatal("orchestrator.ParseApoiadoresEmendas:read", err)
	}

	mapping, err := schema.Resolve(schema.EntityApoiadoresEmendas, table.Names())
	if err != nil {
		pe, _ := err.(*pipelineerr.Error)
		return ParsedApoiadoresEmendas{Path: path}, pe
	}

	rel := relate.Extract(table, mapping)
	return ParsedApoiadoresEmendas{Path: path, TotalRows: table.Nrow(), Relationship: rel}, nil
}
