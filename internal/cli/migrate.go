package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// MigrateResult is the output of the migrate command.
type MigrateResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Open the database, creating it if needed, and apply every pending
schema step. Running it again is harmless.

Example:
  medivault migrate --db ./vault.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.Log)

	version, err := st.SchemaVersion(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read schema version", err)
	}

	result := MigrateResult{Path: st.Path(), SchemaVersion: version}
	return opts.formatter(cmd).Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Database ready: %s (schema version %d)\n", result.Path, result.SchemaVersion)
		return err
	})
}
