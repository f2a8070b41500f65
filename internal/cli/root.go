package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lusfold/kvstore/internal/config"
	"github.com/lusfold/kvstore/internal/logging"
	"github.com/lusfold/kvstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config starts from the environment; persistent flags override it.
	Config config.Config

	// Logger is built in PersistentPreRunE from Config.
	Logger zerolog.Logger

	configErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kvstore CLI.
// Flag defaults come from KVSTORE_* environment variables.
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	opts := &RootOptions{Config: cfg, configErr: err, Logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "kvstore",
		Short: "kvstore - string key-value store on SQLite",
		Long: `A persistent string-to-string key-value store backed by a single SQLite table.

Records live in the "KVStore" table of the database given by --db
(or KVSTORE_DB). The table is created on first use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and statement logging")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Config.DB, "db", cfg.DB, "path to SQLite database")
	flags.StringVar(&opts.Config.Driver, "driver", cfg.Driver, fmt.Sprintf("database/sql driver (%s)", joinDrivers()))
	flags.StringVar(&opts.Config.LogLevel, "log-level", cfg.LogLevel, "log level (trace|debug|info|warn|error)")
	flags.StringVar(&opts.Config.LogFile, "log-file", cfg.LogFile, "also write logs to this rotating file")

	// Record commands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewExistsCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	// Search commands
	cmd.AddCommand(NewPrefixCommand(opts))
	cmd.AddCommand(NewContainsCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	// Table and tooling commands
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags and configures logging.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.configErr != nil {
		return WrapExitError(ExitCommandError, "invalid environment configuration", o.configErr)
	}
	if o.Verbose {
		o.Config.Debug = true
		o.Config.LogLevel = "debug"
	}
	if err := o.Config.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logOpts := o.Config.LogOptions()
	logOpts.Out = cmd.ErrOrStderr()
	o.Logger = logging.Setup(logOpts)
	return nil
}

// openStore opens the configured database. The caller closes the Manager.
func (o *RootOptions) openStore(ctx context.Context, f *OutputFormatter) (*store.Manager, error) {
	storeOpts := append(o.Config.StoreOptions(), store.WithLogger(o.Logger))
	m, err := store.Open(ctx, o.Config.DB, storeOpts...)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeOpenFailed, fmt.Sprintf("failed to open database %s: %v", o.Config.DB, err), nil)
	}
	f.VerboseLog("Opened %s (driver %s)", o.Config.DB, o.Config.Driver)
	return m, nil
}

// withStore opens the store, runs fn and closes the store.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(ctx context.Context, m *store.Manager, f *OutputFormatter) error) error {
	f := newFormatter(o, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := o.openStore(ctx, f)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(ctx, m, f)
}

// exactArgs is cobra.ExactArgs with a command-error exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func joinDrivers() string {
	return strings.Join(store.Drivers, "|")
}
