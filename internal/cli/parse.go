package cli

import (
	"fmt"
	"strings"

	"github.com/hupe1980/frozen/query"
	"github.com/hupe1980/frozen/record"
	"gopkg.in/yaml.v3"
)

// parseValue reads a command-line value as a YAML scalar or flow sequence:
// "116" is an int, "true" a bool, "" null and "[France, Austria]" a set.
func parseValue(s string) (record.Value, error) {
	var v record.Value
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return record.Value{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if v.Kind == record.KindInvalid {
		return record.Null(), nil
	}
	return v, nil
}

// parseCriteria turns "field=value" pairs into criteria.
func parseCriteria(pairs []string) (query.Criteria, error) {
	c := make(query.Criteria, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid criterion %q: want field=value", pair)
		}
		if _, dup := c[field]; dup {
			return nil, fmt.Errorf("invalid criterion %q: field %q given twice, use field=[a, b]", pair, field)
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, err
		}
		c[field] = v
	}
	return c, nil
}

// parseOrder accepts "field", "field:desc" and "field desc".
func parseOrder(args []string) ([]query.OrderTerm, error) {
	terms := make([]query.OrderTerm, 0, len(args))
	for _, arg := range args {
		term, err := query.ParseOrder(strings.Replace(arg, ":", " ", 1))
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}
