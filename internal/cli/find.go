package cli

import (
	"github.com/hupe1980/frozen/record"
	"github.com/hupe1980/frozen/render"
	"github.com/spf13/cobra"
)

// NewFindCommand creates the find command, which calls a dynamic finder.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <location> <finder> [value...]",
		Short: "Call a finder such as find_by_name_and_nato",
		Long: `Call a dynamic finder. Values are parsed as YAML scalars. A trailing
"!" fails when nothing matches; otherwise nothing is printed.`,
		Example: `  frozen find countries.yml find_by_name France
  frozen find countries.yml 'find_by_name_and_nato!' Austria false`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}

			values := make([]any, 0, len(args)-2)
			for _, raw := range args[2:] {
				v, err := parseValue(raw)
				if err != nil {
					return err
				}
				values = append(values, v)
			}

			r, err := t.Finders().Call(args[1], values...)
			if err != nil || r == nil {
				return err
			}
			return render.Encode(cmd.OutOrStdout(), outputFormat(rootOpts), []*record.Record{r})
		},
	}
}
