package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/frozen/query"
	"github.com/hupe1980/frozen/record"
	"github.com/hupe1980/frozen/render"
	"github.com/spf13/cobra"
)

// QueryOptions holds the flags of the query command.
type QueryOptions struct {
	Where   []string
	Not     []string
	Order   []string
	Limit   int
	Offset  int
	Pluck   []string
	Find    string
	Count   bool
	Exists  bool
	Sum     string
	Average string
	Minimum string
	Maximum string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <location>",
		Short: "Filter, order and project records",
		Long: `Filter, order and project the records of a table.

Values are parsed as YAML: --where density=116 matches the number 116,
--where king= matches null and --where 'name=[France, Austria]' matches
either name.`,
		Example: `  frozen query countries.yml --where nato=true --order name:desc --pluck name
  frozen query s3://bucket/countries.json.zst --not name=France --find 3
  frozen query dynamodb://countries --average density`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "field=value inclusion criterion (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Not, "not", "n", nil, "field=value exclusion criterion (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Order, "order", "o", nil, "order by field[:asc|:desc] (repeatable)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", -1, "maximum number of records")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of records to skip")
	cmd.Flags().StringSliceVarP(&opts.Pluck, "pluck", "p", nil, "print only these fields")
	cmd.Flags().StringVar(&opts.Find, "find", "", "print the record with this primary key")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the number of matching records")
	cmd.Flags().BoolVar(&opts.Exists, "exists", false, "print whether any record matches")
	cmd.Flags().StringVar(&opts.Sum, "sum", "", "print the sum of a field")
	cmd.Flags().StringVar(&opts.Average, "average", "", "print the average of a field")
	cmd.Flags().StringVar(&opts.Minimum, "minimum", "", "print the minimum of a field")
	cmd.Flags().StringVar(&opts.Maximum, "maximum", "", "print the maximum of a field")

	cmd.MarkFlagsMutuallyExclusive("pluck", "find", "count", "exists", "sum", "average", "minimum", "maximum")

	return cmd
}

func buildScope(s query.Scope, opts *QueryOptions) (query.Scope, error) {
	if len(opts.Where) > 0 {
		c, err := parseCriteria(opts.Where)
		if err != nil {
			return s, err
		}
		s = s.Where(c)
	}
	if len(opts.Not) > 0 {
		c, err := parseCriteria(opts.Not)
		if err != nil {
			return s, err
		}
		s = s.WhereNot(c)
	}
	if len(opts.Order) > 0 {
		terms, err := parseOrder(opts.Order)
		if err != nil {
			return s, err
		}
		s = s.OrderBy(terms...)
	}
	if opts.Offset != 0 {
		s = s.Offset(opts.Offset)
	}
	if opts.Limit >= 0 {
		s = s.Limit(opts.Limit)
	}
	return s, s.Err()
}

func runQuery(cmd *cobra.Command, rootOpts *RootOptions, opts *QueryOptions, loc string) error {
	t, err := openTable(cmd, rootOpts, loc)
	if err != nil {
		return err
	}

	s, err := buildScope(t.Scope(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	format := outputFormat(rootOpts)

	switch {
	case opts.Find != "":
		key, err := parseValue(opts.Find)
		if err != nil {
			return err
		}
		r, err := s.Find(key)
		if err != nil {
			return err
		}
		return render.Encode(out, format, []*record.Record{r})
	case opts.Count:
		n, err := s.Count()
		if err != nil {
			return err
		}
		return writeLine(out, strconv.Itoa(n))
	case opts.Exists:
		ok, err := s.Exists()
		if err != nil {
			return err
		}
		return writeLine(out, strconv.FormatBool(ok))
	case opts.Sum != "":
		return printNumber(out)(s.Sum(opts.Sum))
	case opts.Average != "":
		return printNumber(out)(s.Average(opts.Average))
	case opts.Minimum != "":
		return printValue(out)(s.Minimum(opts.Minimum))
	case opts.Maximum != "":
		return printValue(out)(s.Maximum(opts.Maximum))
	case len(opts.Pluck) > 0:
		rows, err := s.PluckMany(opts.Pluck...)
		if err != nil {
			return err
		}
		return render.Values(out, format, opts.Pluck, rows)
	default:
		records, err := s.All()
		if err != nil {
			return err
		}
		return render.Encode(out, format, records)
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

func printNumber(w io.Writer) func(float64, error) error {
	return func(f float64, err error) error {
		if err != nil {
			return err
		}
		return writeLine(w, strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func printValue(w io.Writer) func(record.Value, error) error {
	return func(v record.Value, err error) error {
		if err != nil {
			return err
		}
		return writeLine(w, v.String())
	}
}
