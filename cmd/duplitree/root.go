package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"duplitree/internal/config"
	"duplitree/internal/engine"
	"duplitree/internal/progress"
	"duplitree/internal/store"
)

var (
	configPath string
	dbPath     string
	workers    int
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "duplitree",
	Short: "Find duplicate files in a directory tree",
	Long: `duplitree records a directory tree in a local database, reads file sizes,
hashes only files whose size collides with another file, and reports
byte-identical files and directories.

Scans are additive: running a scan again picks up new files and refreshes
files whose size or modification time changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "duplitree.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "number of worker goroutines (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable progress output and informational logs")

	rootCmd.AddCommand(scanCmd, rescanCmd, scansCmd, dupesCmd, dirsCmd, lsCmd)
}

// app holds everything a subcommand needs once flags and config are merged.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.Store
	engine *engine.Engine
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = dbPath
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	if quiet && level < log.WarnLevel {
		level = log.WarnLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "duplitree",
	})

	loc, _ := cfg.Location()

	st, err := store.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened database", "path", st.Path())

	bar := progress.New(os.Stderr, !quiet && progress.IsTerminal(os.Stderr))

	eng := engine.New(st,
		engine.WithLogger(logger),
		engine.WithWorkers(cfg.Workers),
		engine.WithExclude(cfg.Exclude),
		engine.WithLocation(loc),
		engine.WithProgress(bar),
	)

	return &app{cfg: cfg, logger: logger, store: st, engine: eng}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close database", "err", err)
	}
}

func (a *app) scan(cmd *cobra.Command, arg string) (*store.Scan, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid scan id %q", arg)
	}
	return a.store.Scan(cmd.Context(), id)
}
