package pk

import (
	"errors"
	"fmt"

	"github.com/hupe1980/frozen/record"
)

// ErrDuplicateKey is matched by every *DuplicateKeyError.
var ErrDuplicateKey = errors.New("duplicate primary key")

// DuplicateKeyError reports two rows sharing a primary key.
type DuplicateKeyError struct {
	Key    record.Value
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate primary key %s at rows %d and %d", e.Key, e.First, e.Second)
}

// Is makes errors.Is(err, ErrDuplicateKey) hold.
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// Index maps primary-key values to row positions.
type Index struct {
	m map[string]int
}

// Build indexes keys by position. It fails on the first duplicate.
func Build(keys []record.Value) (*Index, error) {
	idx := &Index{m: make(map[string]int, len(keys))}
	for pos, key := range keys {
		k := key.Key()
		if first, ok := idx.m[k]; ok {
			return nil, &DuplicateKeyError{Key: key, First: first, Second: pos}
		}
		idx.m[k] = pos
	}
	return idx, nil
}

// Lookup returns the row position for the given key.
func (idx *Index) Lookup(key record.Value) (int, bool) {
	pos, ok := idx.m[key.Key()]
	return pos, ok
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int {
	return len(idx.m)
}
