// Package cli implements the frozen command-line tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/frozen"
	"github.com/hupe1980/frozen/render"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Config     Config
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "frozen",
		Short: "Query read-only record files",
		Long: `frozen loads a JSON or YAML record file (local, s3://, minio:// or
dynamodb://) and runs a chainable query against it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.ConfigPath, cmd)
			if err != nil {
				return err
			}
			if _, err := render.ParseFormat(cfg.Format); err != nil {
				return err
			}
			if _, err := parseLevel(cfg.LogLevel); err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./frozen.yaml if present)")
	cmd.PersistentFlags().String("format", "json", "output format (json|yaml|xml)")
	cmd.PersistentFlags().String("key-field", "id", "primary-key attribute")
	cmd.PersistentFlags().String("codec", "", "force a codec (json|go-json|yaml) instead of the file extension")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))

	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// openTable loads the table named by the location argument.
func openTable(cmd *cobra.Command, opts *RootOptions, loc string) (*frozen.Table, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := openSource(ctx, opts.Config, loc)
	if err != nil {
		return nil, err
	}

	level, err := parseLevel(opts.Config.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := frozen.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return frozen.Open(ctx, src,
		frozen.WithKeyField(opts.Config.KeyField),
		frozen.WithLogger(logger),
	)
}

func outputFormat(opts *RootOptions) render.Format {
	// Validated in PersistentPreRunE.
	f, _ := render.ParseFormat(opts.Config.Format)
	return f
}
