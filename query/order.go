package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/record"
)

// Direction is a sort direction.
type Direction uint8

const (
	// Ascending sorts by the natural value order.
	Ascending Direction = iota
	// Descending reverses the natural value order.
	Descending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderTerm is one sort key.
type OrderTerm struct {
	Field     string
	Direction Direction
}

// Asc orders by field ascending.
func Asc(field string) OrderTerm { return OrderTerm{Field: field, Direction: Ascending} }

// Desc orders by field descending.
func Desc(field string) OrderTerm { return OrderTerm{Field: field, Direction: Descending} }

// String renders the term as "field asc" or "field desc".
func (t OrderTerm) String() string {
	return t.Field + " " + t.Direction.String()
}

// ParseOrder parses "field", "field asc" or "field desc".
func ParseOrder(s string) (OrderTerm, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return Asc(parts[0]), nil
	case 2:
		switch strings.ToLower(parts[1]) {
		case "asc":
			return Asc(parts[0]), nil
		case "desc":
			return Desc(parts[0]), nil
		}
	}
	return OrderTerm{}, fmt.Errorf("%w: order %q", ErrInvalidArgument, s)
}

func appendOrderKey(sb *strings.Builder, terms []OrderTerm) {
	for _, t := range terms {
		sb.WriteString(strconv.Quote(t.Field))
		sb.WriteByte(' ')
		sb.WriteString(t.Direction.String())
		sb.WriteByte(',')
	}
}

// comparePositions compares two rows left to right over terms.
func comparePositions(ds *dataset.Dataset, terms []OrderTerm, a, b int) int {
	ra, rb := ds.At(a), ds.At(b)
	for _, t := range terms {
		c := record.Compare(ra.Get(t.Field), rb.Get(t.Field))
		if t.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
