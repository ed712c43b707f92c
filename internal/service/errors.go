package service

import (
	"errors"
	"fmt"
	"strings"

	"expedientes/internal/schema"
)

// Error kinds. Match them with errors.Is; the concrete error is always an *Error.
var (
	ErrSourceUnavailable = errors.New("case source unavailable")
	ErrSchema            = errors.New("case source schema invalid")
	ErrNotFound          = errors.New("case not found")
	ErrAmbiguousID       = errors.New("case identifier matches more than one record")
	ErrPersistence       = errors.New("case store write failed")
	ErrAuditLogWrite     = errors.New("audit log write failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrOfficeMismatch    = errors.New("case belongs to another office")
)

// Error carries the operation context of a failure. It unwraps to both its kind and its cause.
type Error struct {
	Kind   error
	Op     string
	CaseID string
	Office string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.CaseID != "" {
		fmt.Fprintf(&b, " (case %s", e.CaseID)
		if e.Office != "" {
			fmt.Fprintf(&b, ", office %s", e.Office)
		}
		b.WriteString(")")
	} else if e.Office != "" {
		fmt.Fprintf(&b, " (office %s)", e.Office)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// loadError classifies a repository load failure. Anything but a schema error means the
// source could not be read.
func loadError(op, caseID, office string, err error) *Error {
	kind := ErrSourceUnavailable
	if errors.Is(err, schema.ErrMissingColumns) {
		kind = ErrSchema
	}
	return &Error{Kind: kind, Op: op, CaseID: caseID, Office: office, Err: err}
}

// outcome is the metrics label for an update result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousID):
		return "ambiguous"
	case errors.Is(err, ErrOfficeMismatch):
		return "office_mismatch"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	default:
		return "persistence"
	}
}
