package query

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/record"
)

const (
	finderPrefix = "find_by_"
	finderJoin   = "_and_"
	finderBang   = "!"
)

// finderRegistry is derived once per engine from the declared fields.
// Finders for a field combination are compiled on first use and memoised under
// the sorted field tuple, so find_by_a_and_b and find_by_b_and_a share one.
type finderRegistry struct {
	fields   []string // longest first, for name segmentation
	declared map[string]struct{}
	compiled sync.Map // sorted tuple -> *finder
}

// finder builds the equivalent scope for a sorted field tuple.
type finder struct {
	fields []string
}

func (f *finder) scope(s Scope, args map[string]any) Scope {
	c := make(Criteria, len(f.fields))
	for _, field := range f.fields {
		c[field] = args[field]
	}
	return s.Where(c)
}

func newFinderRegistry(ds *dataset.Dataset) *finderRegistry {
	reg := &finderRegistry{declared: make(map[string]struct{})}
	for _, f := range append(ds.Fields(), ds.KeyField()) {
		if _, ok := reg.declared[f]; ok {
			continue
		}
		reg.declared[f] = struct{}{}
		reg.fields = append(reg.fields, f)
	}
	slices.SortStableFunc(reg.fields, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return reg
}

func (reg *finderRegistry) lookup(fields []string) (*finder, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrUnsupportedFinder)
	}
	sorted := slices.Clone(fields)
	slices.Sort(sorted)
	if len(slices.Compact(slices.Clone(sorted))) != len(sorted) {
		return nil, fmt.Errorf("%w: repeated field in %v", ErrUnsupportedFinder, fields)
	}
	for _, f := range sorted {
		if _, ok := reg.declared[f]; !ok {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedFinder, &UnsupportedFieldError{Field: f})
		}
	}

	key := strings.Join(sorted, "\x00")
	if f, ok := reg.compiled.Load(key); ok {
		return f.(*finder), nil
	}
	f, _ := reg.compiled.LoadOrStore(key, &finder{fields: sorted})
	return f.(*finder), nil
}

// parse splits "find_by_a_and_b[!]" into its fields. Declared names may
// themselves contain "_and_"; parse prefers the longest declared name.
func (reg *finderRegistry) parse(name string) ([]string, bool, error) {
	rest, ok := strings.CutPrefix(name, finderPrefix)
	if !ok || rest == "" {
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedFinder, name)
	}
	rest, bang := strings.CutSuffix(rest, finderBang)

	if fields, ok := reg.segment(rest); ok {
		return fields, bang, nil
	}

	// Report the first part that is not a declared field.
	for _, part := range strings.Split(rest, finderJoin) {
		if _, ok := reg.declared[part]; !ok {
			return nil, bang, fmt.Errorf("%w: %q: %w", ErrUnsupportedFinder, name, &UnsupportedFieldError{Field: part})
		}
	}
	return nil, bang, fmt.Errorf("%w: %q", ErrUnsupportedFinder, name)
}

func (reg *finderRegistry) segment(s string) ([]string, bool) {
	for _, f := range reg.fields {
		if s == f {
			return []string{f}, true
		}
		if tail, ok := strings.CutPrefix(s, f+finderJoin); ok {
			if more, ok := reg.segment(tail); ok {
				return append([]string{f}, more...), true
			}
		}
	}
	return nil, false
}

// Finders exposes find_by_* operations derived from the declared fields,
// bound to a scope.
//
// Example:
//
//	r, err := engine.Scope().Finders().Call("find_by_name_and_nato", "France", true)
//	r, err = engine.Scope().Finders().Call("find_by_name!", "Atlantis") // ErrRecordNotFound
type Finders struct {
	scope Scope
}

// Supports reports whether name resolves to declared fields.
func (f *Finders) Supports(name string) bool {
	fields, _, err := f.scope.e.finders.parse(name)
	if err != nil {
		return false
	}
	_, err = f.scope.e.finders.lookup(fields)
	return err == nil
}

// SupportsFields reports whether a finder over fields exists.
func (f *Finders) SupportsFields(fields ...string) bool {
	_, err := f.scope.e.finders.lookup(fields)
	return err == nil
}

// Names returns the single-field finder names, sorted.
func (f *Finders) Names() []string {
	reg := f.scope.e.finders
	names := make([]string, 0, len(reg.fields))
	for _, field := range reg.fields {
		names = append(names, finderPrefix+field)
	}
	slices.Sort(names)
	return names
}

// Call invokes a finder by name. Arguments follow the order of the fields in
// the name. The bang form fails with ErrRecordNotFound instead of returning nil.
func (f *Finders) Call(name string, args ...any) (*record.Record, error) {
	reg := f.scope.e.finders
	fields, bang, err := reg.parse(name)
	if err != nil {
		return nil, err
	}
	if len(args) != len(fields) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrFinderArity, name, len(fields), len(args))
	}
	fn, err := reg.lookup(fields)
	if err != nil {
		return nil, err
	}

	byField := make(map[string]any, len(fields))
	for i, field := range fields {
		byField[field] = args[i]
	}
	s := fn.scope(f.scope, byField)
	if bang {
		return s.FirstOrError()
	}
	return s.First()
}

// FindBy is the criteria form of a finder: the first record matching c, or nil.
func (f *Finders) FindBy(c Criteria) (*record.Record, error) {
	s, err := f.bind(c)
	if err != nil {
		return nil, err
	}
	return s.First()
}

// FindByOrError is FindBy failing with ErrRecordNotFound when nothing matches.
func (f *Finders) FindByOrError(c Criteria) (*record.Record, error) {
	s, err := f.bind(c)
	if err != nil {
		return nil, err
	}
	return s.FirstOrError()
}

func (f *Finders) bind(c Criteria) (Scope, error) {
	fields := make([]string, 0, len(c))
	for field := range c {
		fields = append(fields, field)
	}
	fn, err := f.scope.e.finders.lookup(fields)
	if err != nil {
		return Scope{}, err
	}
	return fn.scope(f.scope, c), nil
}
