// Package pipelineerr models the pipeline's error taxonomy (spec §7) as a
// single tagged type instead of an exception hierarchy.
package pipelineerr

import "fmt"

// Kind is one of the eight dispositions a pipeline error can carry. The
// taxonomy's EncodingAmbiguous kind is never raised, so it has no Kind.
type Kind int

const (
	KindEmptyFile Kind = iota
	KindSchemaValidation
	KindRowValidation
	KindRelationship
	KindUpsertConflict
	KindReconciliationDiscrepancy
	KindTransient
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindEmptyFile:
		return "EmptyFile"
	case KindSchemaValidation:
		return "SchemaValidationError"
	case KindRowValidation:
		return "RowValidationError"
	case KindRelationship:
		return "RelationshipError"
	case KindUpsertConflict:
		return "UpsertConflict"
	case KindReconciliationDiscrepancy:
		return "ReconciliationDiscrepancy"
	case KindTransient:
		return "Transient"
	case KindFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is the single error type every component returns; its Kind decides
// the Orchestrator's disposition (retry, skip, rollback).
type Error struct {
	Kind    Kind
	Op      string
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Op, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Op, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, context string, err error) *Error {
	return &Error{Kind: kind, Op: op, Context: context, Err: err}
}

func EmptyFile(op, path string) *Error {
	return New(KindEmptyFile, op, path, nil)
}

func SchemaValidation(op string, missing []string) *Error {
	return New(KindSchemaValidation, op, fmt.Sprintf("missing=%v", missing), nil)
}

func Relationship(op, detail string) *Error {
	return New(KindRelationship, op, detail, nil)
}

func UpsertConflict(op string, err error) *Error {
	return New(KindUpsertConflict, op, "", err)
}

func ReconciliationDiscrepancy(op, detail string) *Error {
	return New(KindReconciliationDiscrepancy, op, detail, nil)
}

func Transient(op string, err error) *Error {
	return New(KindTransient, op, "", err)
}

func Fatal(op string, err error) *Error {
	return New(KindFatal, op, "", err)
}

// IsKind reports whether err (or something it wraps) is a *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			pe = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return pe != nil && pe.Kind == kind
}

// Retryable reports whether the Orchestrator's retry policy (§4.11) applies.
func Retryable(err error) bool {
	return IsKind(err, KindTransient)
}

// RowError is one row's validation failure, carrying its original index and
// the reason it was rejected — the {Err(reason, row_index)} half of the
// tagged-variant validation result (§9 Design Notes).
type RowError struct {
	Index  int
	Reason string
}

func (r RowError) Error() string {
	return fmt.Sprintf("row %d: %s", r.Index, r.Reason)
}
