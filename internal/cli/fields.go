package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <location>",
		Short: "List declared fields and their finders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := openTable(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}

			ds := t.Dataset()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table: %s (%d records, key %q)\n", t.Name(), ds.Len(), ds.KeyField())
			for _, name := range t.Finders().Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
