// Package commands implements the fathom CLI command tree.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/auth"
	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"
)

// Build metadata, set via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	cfgPath string
	dbPath  string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fathom",
	Short: "Dive planning, logbook, and community tools",
	Long: `Fathom — plan the best gas mix for a dive, keep your logbook,
browse the site catalog, and sync with the community service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		if logger, err = newLogger(verbose, cfg.LogLevel); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"config file (default ~/.fathom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// newLogger builds a zap logger honoring --verbose over the configured level.
func newLogger(verbose bool, level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.DisableStacktrace = true

	if verbose {
		level = "debug"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}

// openStore opens the configured database, creating its directory on
// first use.
func openStore() (database.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	store, err := database.NewDBService(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

// currentSession returns the stored login session, or nil when logged out.
func currentSession() *auth.Session {
	sess, err := auth.NewFileStore(config.Dir()).Load()
	if err != nil {
		return nil
	}
	return &sess
}
