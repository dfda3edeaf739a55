package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // path or file: DSN
	Driver     string // "sqlite3" | "sqlite"
	Config     string // explicit config file
	LogQueries bool
	LogResults bool
	Literal    bool // inline sanitized literals instead of bound parameters

	// Logger receives store diagnostics. Commands built without the root
	// command fall back to slog.Default.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlhelper CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlhelper",
		Short: "sqlhelper - SQLite statement builder",
		Long: `Build and run sanitized SQLite statements from filter documents.

Filters are {left, op, right} trees written in YAML or JSON. They compile
to WHERE clauses for select, update and delete, with values bound as
parameters or inlined as escaped literals (--literal).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, opts); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Database, "db", "", "path to SQLite database")
	flags.StringVar(&opts.Driver, "driver", store.DriverCGO, "database driver (sqlite3|sqlite)")
	flags.StringVar(&opts.Config, "config", "", "config file (default ./sqlhelper.yaml)")
	flags.BoolVar(&opts.LogQueries, "log-queries", false, "log every statement at info level")
	flags.BoolVar(&opts.LogResults, "log-results", false, "log statement results")
	flags.BoolVar(&opts.Literal, "literal", false, "inline escaped literals instead of bound parameters")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewCreateTableCommand(opts))
	cmd.AddCommand(NewDropTableCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))

	return cmd
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

// newLogger builds the text handler used for diagnostics.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// openStore opens the database named by --db with the global store flags.
// Failures are reported through formatter.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	if opts.Database == "" {
		return nil, outputErrorCode(formatter, ErrCodeMissingArgument,
			fmt.Errorf("%w: database, set --db or %s_DB", queryir.ErrMissingArgument, EnvPrefix))
	}

	storeOpts := []store.Option{
		store.WithLogger(opts.logger()),
		store.WithQueryLogging(opts.LogQueries),
		store.WithResultLogging(opts.LogResults),
	}
	if opts.Driver != "" {
		storeOpts = append(storeOpts, store.WithDriver(opts.Driver))
	}
	if opts.Literal {
		storeOpts = append(storeOpts, store.WithLiteralSQL())
	}
	storeOpts = append(storeOpts, store.WithFs(AppFs))

	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return nil, outputErrorCode(formatter, ErrCodeOpenFailed, err)
	}
	opts.logger().Debug("database ready", "path", opts.Database, "driver", opts.Driver)
	return st, nil
}

// closeStore closes st, logging failures.
func closeStore(opts *RootOptions, st *store.Store) {
	if err := st.Close(); err != nil {
		opts.logger().Error("error closing database", "error", err)
	}
}
