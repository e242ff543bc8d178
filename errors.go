package frozen

import (
	"errors"
	"fmt"

	"github.com/hupe1980/frozen/blobstore"
	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/pk"
	"github.com/hupe1980/frozen/query"
)

var (
	// ErrRecordNotFound is returned by Find, the *OrError terminals, bang
	// finders and Minimum/Maximum over an empty result.
	ErrRecordNotFound = query.ErrRecordNotFound
	// ErrUnsupportedField is matched by every *UnsupportedFieldError.
	ErrUnsupportedField = query.ErrUnsupportedField
	// ErrUnsupportedFinder is returned for finder names that cannot be resolved.
	ErrUnsupportedFinder = query.ErrUnsupportedFinder
	// ErrFinderArity is returned when a finder gets the wrong number of arguments.
	ErrFinderArity = query.ErrFinderArity
	// ErrDivisionByZero is returned by Average when there is nothing to average.
	ErrDivisionByZero = query.ErrDivisionByZero
	// ErrNonNumeric is matched by every *NonNumericError.
	ErrNonNumeric = query.ErrNonNumeric
	// ErrInvalidArgument is returned for malformed criteria, order terms,
	// limits and offsets.
	ErrInvalidArgument = query.ErrInvalidArgument
	// ErrUnknownScope is returned when a named scope is not registered.
	ErrUnknownScope = query.ErrUnknownScope
	// ErrDuplicateKey is returned when two records share a primary key.
	ErrDuplicateKey = pk.ErrDuplicateKey
	// ErrMissingKey is returned when a record has no primary key.
	ErrMissingKey = dataset.ErrMissingKey

	// ErrSourceNotFound is returned when the record file does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrNoSource is returned by Reload and Watch on tables created with New.
	ErrNoSource = errors.New("table has no source")
	// ErrUnknownTable is returned by Catalog.Table.
	ErrUnknownTable = errors.New("unknown table")
)

type (
	// UnsupportedFieldError names a field that is not declared by the dataset.
	UnsupportedFieldError = query.UnsupportedFieldError
	// NonNumericError names a value that cannot be summed or averaged.
	NonNumericError = query.NonNumericError
	// DuplicateKeyError names a primary key that occurs twice.
	DuplicateKeyError = pk.DuplicateKeyError
)

// LoadError reports a table that could not be loaded.
//
// The original underlying error can be accessed via errors.Unwrap.
type LoadError struct {
	Table  string
	Source string
	cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load table %q from %s: %v", e.Table, e.Source, e.cause)
}

func (e *LoadError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, blobstore.ErrNotFound) && !errors.Is(err, ErrSourceNotFound) {
		return fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}

	return err
}
