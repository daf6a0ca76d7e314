package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document or reference entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps every posting rejection. Use errors.As with
	// *ValidationError for the kind.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownType is returned when decoding a record type outside the
	// known set.
	ErrUnknownType = errors.New("unknown record type")

	// ErrDuplicate is returned when a reference entry already exists.
	ErrDuplicate = errors.New("already exists")

	// ErrEditLeg is returned when a posting leg is edited directly instead of
	// through its main document.
	ErrEditLeg = errors.New("posting legs are edited through their main document")

	// ErrDeleteLeg is returned when one leg of a posting group is deleted on
	// its own. Deleting the main document removes both legs.
	ErrDeleteLeg = errors.New("posting legs are deleted through their main document")
)

// ErrorKind classifies a rejected posting.
type ErrorKind string

const (
	KindMissingCustomer  ErrorKind = "MissingCustomer"
	KindAmbiguousMeasure ErrorKind = "AmbiguousMeasure"
	KindCurrencyMismatch ErrorKind = "CurrencyMismatch"
	KindNothingToPost    ErrorKind = "NothingToPost"
	KindUnknownAccount   ErrorKind = "UnknownAccount"
	KindUnknownType      ErrorKind = "UnknownType"
	KindTypeChange       ErrorKind = "TypeChange"
)

// ValidationError is raised before any record is built; the book is left as
// it was.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(kind ErrorKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the validation kind carried by err, or "" if err is not a
// validation failure.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}

	return ""
}
