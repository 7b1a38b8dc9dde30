package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/config"
	"github.com/roach88/medivault/internal/ids"
	"github.com/roach88/medivault/internal/logger"
	"github.com/roach88/medivault/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides db_path from config

	// Resolved in PersistentPreRunE.
	Config *config.Config
	Log    zerolog.Logger

	// Analyzer overrides the HTTP analysis client (for testing).
	Analyzer analysis.Analyzer
	// IDs overrides the UUIDv7 generator (for testing).
	IDs ids.Generator
	// Now overrides the wall clock (for testing).
	Now func() time.Time
	// In overrides stdin for confirmation prompts (for testing).
	In io.Reader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the medivault CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medivault",
		Short: "medivault - personal medical record vault",
		Long: `A local vault for medical events and scanned documents.

Scans are sent to an analysis service that extracts a category, a summary
and candidate events. Documents are kept immediately; events are saved
only after confirmation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewDocsCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))

	return cmd
}

// resolve loads configuration and builds the logger. Diagnostics go to
// errOut so JSON output on stdout stays parseable.
func (o *RootOptions) resolve(errOut io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.DBPath = o.Database
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, errOut)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	o.Config = cfg
	o.Log = log
	return nil
}

// openStore opens the configured database, surfacing schema errors before
// the command does any work.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, o.Config.DBPath,
		store.WithDriver(o.Config.DBDriver),
		store.WithLogger(o.Log),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// newStore configures the database without opening it. The first store
// operation opens it.
func (o *RootOptions) newStore() *store.Store {
	return store.New(o.Config.DBPath,
		store.WithDriver(o.Config.DBDriver),
		store.WithLogger(o.Log),
	)
}

func (o *RootOptions) idGenerator() ids.Generator {
	if o.IDs != nil {
		return o.IDs
	}
	return ids.UUIDv7{}
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *RootOptions) stdin() io.Reader {
	if o.In != nil {
		return o.In
	}
	return os.Stdin
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func closeStore(st *store.Store, log zerolog.Logger) {
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("error closing database")
	}
}
