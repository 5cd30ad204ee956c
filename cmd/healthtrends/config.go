// ABOUTME: CLI commands for viewing and editing the healthtrends config file.
// ABOUTME: Supports show, path, set, and alias for source field names.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/config"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit configuration",
	Long: `View or edit ~/.config/healthtrends/config.json.

KEYS:

  backend       sqlite or charm
  data_dir      data directory (~ is expanded)
  user_id       default user for logs and trends
  log_level     trace, debug, info, warn, error, off
  listen_addr   HTTP API address for 'serve'
  charm_host    Charm server for the charm backend

Environment variables (HEALTHTRENDS_BACKEND, HEALTHTRENDS_USER_ID, ...)
override the file.

EXAMPLES:

  healthtrends config show
  healthtrends config set backend charm
  healthtrends config alias sleepHours slept_hours`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := map[string]any{
			"backend":     cfg.GetBackend(),
			"data_dir":    cfg.GetDataDir(),
			"user_id":     cfg.GetUserID(),
			"log_level":   cfg.GetLogLevel(),
			"listen_addr": cfg.GetListenAddr(),
			"charm_host":  cfg.CharmHost,
		}
		if len(cfg.FieldAliases) > 0 {
			effective["field_aliases"] = cfg.FieldAliases
		}
		data, err := json.MarshalIndent(effective, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
	Annotations: noStorage,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetConfigPath())
	},
	Annotations: noStorage,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := config.Load()
		if err != nil {
			return err
		}

		key, value := strings.ToLower(args[0]), args[1]
		switch key {
		case "backend":
			file.Backend = value
		case "data_dir":
			file.DataDir = value
		case "user_id":
			file.UserID = value
		case "log_level":
			file.LogLevel = value
		case "listen_addr":
			file.ListenAddr = value
		case "charm_host":
			file.CharmHost = value
		default:
			return fmt.Errorf("unknown config key: %s", args[0])
		}

		if errs := file.Validate(); len(errs) > 0 {
			return errs[0]
		}
		if err := file.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("✓ Set %s = %s", key, value)
		return nil
	},
	Annotations: noStorage,
}

var configAliasCmd = &cobra.Command{
	Use:   "alias <field> <source-name>...",
	Short: "Add source field names for a canonical field",
	Long: `Teach the normalizer extra source field names for a canonical field.

Canonical fields: date, userId, sleepHours, vitalBpm, mood,
medicationTaken, symptom, notes.

Aliases are tried after the built-in names, in the order given.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, ok := trends.ParseField(args[0])
		if !ok {
			return fmt.Errorf("unknown field: %s", args[0])
		}

		file, err := config.Load()
		if err != nil {
			return err
		}
		if file.FieldAliases == nil {
			file.FieldAliases = map[string][]string{}
		}

		// viper lowercases map keys; fold any spelling onto the canonical one
		var existing []string
		for k, v := range file.FieldAliases {
			if strings.EqualFold(k, string(field)) {
				existing = append(existing, v...)
				delete(file.FieldAliases, k)
			}
		}
		file.FieldAliases[string(field)] = lo.Uniq(append(existing, args[1:]...))

		if err := file.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("✓ %s now also reads %s", field, strings.Join(args[1:], ", "))
		return nil
	},
	Annotations: noStorage,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configAliasCmd)
	rootCmd.AddCommand(configCmd)
}
