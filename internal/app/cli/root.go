package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"leaveadvisor/internal/app/server"
	"leaveadvisor/internal/domain/reports"
	"leaveadvisor/internal/platform/config"
	"leaveadvisor/internal/platform/jobs"
	"leaveadvisor/internal/platform/seed"
)

type flags struct {
	addr        string
	storeDriver string
	sqlitePath  string
	databaseURL string
	logLevel    string
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "leaveadvisor",
		Short: "Leave request analysis service",
		Long: `leaveadvisor analyzes leave requests against balances, team calendars and
company policy, and recommends approve, reject or review.

Operations are exposed as MCP tools (stdio or streamable HTTP) and as a
JSON REST API. Configuration comes from the environment or a .env file;
flags override the matching variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(f.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&f.addr, "addr", "", "listen address (APP_ADDR)")
	root.PersistentFlags().StringVar(&f.storeDriver, "store", "", "store driver: postgres or sqlite (STORE_DRIVER)")
	root.PersistentFlags().StringVar(&f.sqlitePath, "sqlite-path", "", "sqlite database file (SQLITE_PATH)")
	root.PersistentFlags().StringVar(&f.databaseURL, "database-url", "", "postgres connection string (DATABASE_URL)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		newServeCommand(f),
		newStdioCommand(f),
		newMigrateCommand(f),
		newSeedCommand(f),
		newPruneReportsCommand(f),
	)
	return root
}

func (f *flags) config() config.Config {
	cfg := config.Load()
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.storeDriver != "" {
		cfg.StoreDriver = f.storeDriver
	}
	if f.sqlitePath != "" {
		cfg.SQLitePath = f.sqlitePath
	}
	if f.databaseURL != "" {
		cfg.DatabaseURL = f.databaseURL
	}
	return cfg
}

// setupLogging writes JSON logs to stderr; stdout belongs to the stdio transport.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and the MCP streamable HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			app, err := server.New(ctx, f.config())
			if err != nil {
				return err
			}
			defer app.Close()
			return app.ListenAndServe(ctx)
		},
	}
}

func newStdioCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout for a single agent session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			app, err := server.New(ctx, f.config())
			if err != nil {
				return err
			}
			defer app.Close()
			slog.Info("leave advisor serving MCP on stdio", "store", app.Config.StoreDriver)
			return app.MCP.RunStdio(ctx)
		},
	}
}

func newMigrateCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.config()
			if err := cfg.Validate(); err != nil {
				return err
			}
			store, err := server.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCommand(f *flags) *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo fixture, or a YAML fixture file, into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.config()
			if err := cfg.Validate(); err != nil {
				return err
			}
			fixture, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			store, err := server.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := seed.Apply(cmd.Context(), store, fixture); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "file", "", "YAML fixture file (default: built-in demo data)")
	return cmd
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return seed.Fixture{}, err
	}
	return seed.ParseFixture(data)
}

func newPruneReportsCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-reports",
		Short: "Delete exported report PDFs older than REPORT_RETENTION",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.config()
			if cfg.ReportRetention <= 0 {
				return fmt.Errorf("REPORT_RETENTION must be positive to prune reports")
			}
			runner := jobs.New(reports.NewPDFRenderer(cfg.ReportDir), cfg.ReportRetention, 0)
			details, err := runner.RunNow(cmd.Context(), jobs.JobReportRetention, runner.PruneReports)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %v report(s) from %s\n", details["deleted"], cfg.ReportDir)
			return nil
		},
	}
}
