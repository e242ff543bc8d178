package query

import (
	"errors"
	"fmt"

	"github.com/hupe1980/frozen/record"
)

var (
	// ErrRecordNotFound is returned when a required single-record result does
	// not exist: Find, FirstOrError, LastOrError, bang finders and
	// Minimum/Maximum over an empty sequence.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnsupportedField is matched by every *UnsupportedFieldError.
	ErrUnsupportedField = errors.New("unsupported field")

	// ErrUnsupportedFinder is returned for finder names that cannot be
	// resolved to declared fields.
	ErrUnsupportedFinder = errors.New("unsupported finder")

	// ErrFinderArity is returned when a finder is called with the wrong
	// number of arguments.
	ErrFinderArity = errors.New("wrong number of finder arguments")

	// ErrDivisionByZero is returned by Average when no value contributes.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNonNumeric is matched by every *NonNumericError.
	ErrNonNumeric = errors.New("non-numeric value")

	// ErrInvalidArgument is returned for negative limits and offsets and for
	// criteria values that cannot be represented as record values.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownScope is returned when a named scope is not registered.
	ErrUnknownScope = errors.New("unknown scope")
)

// UnsupportedFieldError reports a reference to an undeclared attribute.
type UnsupportedFieldError struct {
	Field string
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("unsupported field %q", e.Field)
}

// Is makes errors.Is(err, ErrUnsupportedField) hold.
func (e *UnsupportedFieldError) Is(target error) bool { return target == ErrUnsupportedField }

// NonNumericError reports a value that Sum or Average cannot add up.
type NonNumericError struct {
	Field string
	Key   record.Value
	Kind  record.Kind
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("field %q of record %s holds a %s, not a number", e.Field, e.Key, e.Kind)
}

// Is makes errors.Is(err, ErrNonNumeric) hold.
func (e *NonNumericError) Is(target error) bool { return target == ErrNonNumeric }
