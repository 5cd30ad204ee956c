// ABOUTME: Root Cobra command for healthtrends CLI.
// ABOUTME: Loads config, logger, and the storage backend via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/healthtrends/internal/config"
	"github.com/harperreed/healthtrends/internal/logging"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	logger hclog.Logger

	flagBackend  string
	flagDataDir  string
	flagUser     string
	flagLogLevel string
)

// noStorage marks commands that open their own storage, or need none.
var noStorage = map[string]string{"storage": "none"}

func needsStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return cmd.Annotations["storage"] != "none"
}

var rootCmd = &cobra.Command{
	Use:   "healthtrends",
	Short: "Daily health log and trend charts",
	Long: `Healthtrends records one log per day and turns it into trend series.

WHAT IT TRACKS:

  sleep          hours of sleep (0-24)
  vital          resting heart rate in bpm
  mood           1 (worst) to 5 (best)
  medication     taken or not

QUICK START:

  $ healthtrends log --sleep 7.5 --mood 4 --med yes     # Log today
  $ healthtrends log 2025-03-01 --bpm 62                # Log a past day
  $ healthtrends list                                   # Recent days
  $ healthtrends trends --resolution weekly             # Weekly averages
  $ healthtrends trends --resolution monthly --metrics sleep,mood

SERVING:

  $ healthtrends serve     # HTTP JSON API on 127.0.0.1:5001
  $ healthtrends mcp       # MCP server on stdio

CONFIGURATION:

  Settings are read from ~/.config/healthtrends/config.json and can be
  overridden with HEALTHTRENDS_* environment variables or the flags below.
  The default backend is SQLite at ~/.local/share/healthtrends/healthtrends.db.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(cmd)

		if errs := cfg.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid config: %v", errs[0])
		}
		logger = logging.New(cfg.GetLogLevel(), os.Stderr)

		if !needsStorage(cmd) {
			return nil
		}

		if repo != nil {
			_ = repo.Close()
		}
		repo, err = cfg.OpenStorage()
		if err != nil {
			repo = nil
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = flagBackend
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("user") {
		cfg.UserID = flagUser
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

// newNormalizer builds a normalizer from the configured field aliases.
func newNormalizer() *trends.Normalizer {
	return trends.NewNormalizer(cfg.FieldMap(), logger.Named("normalize"))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/healthtrends)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user id (default from config, else anonymous)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}
