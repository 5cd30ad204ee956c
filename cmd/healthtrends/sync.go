// ABOUTME: Charm Cloud commands for moving daily logs between devices.
// ABOUTME: Links accounts, pulls remote days, and summarizes what each user has logged.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/charm"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/spf13/cobra"
)

// charmClient returns the open Charm backend, or opens one when another
// backend is configured.
func charmClient() (*charm.Client, error) {
	if c, ok := repo.(*charm.Client); ok {
		return c, nil
	}
	return charm.InitClient(cfg.CharmHost)
}

// userSummary is one row of 'sync status'.
type userSummary struct {
	UserID string
	Days   int
	First  string
	Last   string
}

// summarizeUsers groups logs by user, sorted by user id.
func summarizeUsers(logs []*models.DailyRecord) []userSummary {
	byUser := make(map[string]*userSummary)
	for _, r := range logs {
		day := models.FormatDate(r.Date)
		s, ok := byUser[r.UserID]
		if !ok {
			s = &userSummary{UserID: r.UserID, First: day, Last: day}
			byUser[r.UserID] = s
		}
		s.Days++
		if day < s.First {
			s.First = day
		}
		if day > s.Last {
			s.Last = day
		}
	}

	out := make([]userSummary, 0, len(byUser))
	for _, s := range byUser {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func printUserSummaries(w io.Writer, rows []userSummary) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  No days logged yet.")
		return
	}
	fmt.Fprintf(w, "  %s %s %s\n", padRight("USER", 16), padRight("DAYS", 6), "RANGE")
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s %s..%s\n",
			padRight(truncate(r.UserID, 16), 16), padRight(fmt.Sprint(r.Days), 6), r.First, r.Last)
	}
}

// confirm reads one line from r and reports whether it matches any of wants,
// ignoring case and surrounding space.
func confirm(r io.Reader, wants ...string) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(line)
	for _, w := range wants {
		if strings.EqualFold(line, w) {
			return true
		}
	}
	return false
}

func runCharmCLI(args ...string) error {
	c := exec.Command("charm", args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Share daily logs across devices with Charm Cloud",
	Long: `Share daily logs across devices with Charm Cloud.

With backend "charm", every log and delete is pushed as it happens and
other devices pick it up on their next pull. Values are encrypted with
your Charm keys before they leave the machine.

SETUP:

  healthtrends config set backend charm
  healthtrends sync link

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device (local logs stay)
  status      Show the account, server, and logged days per user
  pull        Fetch days logged on other devices now
  reset       Rebuild local logs from Charm Cloud
  wipe        Delete every daily log here and, on the next sync, everywhere`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

Runs 'charm link'. A new account is created from your SSH key if you
do not have one yet. Days already in the cloud are pulled afterwards.`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharmCLI("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		color.Green("\n✓ Device linked to Charm")

		client, err := charmClient()
		if err != nil {
			return nil
		}
		if err := client.Sync(); err != nil {
			color.Yellow("⚠ Could not pull logged days: %v", err)
			return nil
		}
		logs, _ := client.ListLogs("", nil, nil, 0)
		fmt.Printf("%d days available on this device.\n", len(logs))
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm by running 'charm unlink'.

Daily logs already on this device are kept.`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharmCLI("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		color.Green("✓ Device unlinked from Charm")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show sync account and logged days",
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		host := cfg.CharmHost
		if host == "" {
			host = charm.DefaultHost
		}
		fmt.Fprintln(out, "Server:", host)
		fmt.Fprintln(out, "Backend:", cfg.GetBackend())

		client, err := charmClient()
		if err != nil {
			color.Yellow("Charm store unavailable: %v", err)
			fmt.Fprintln(out, "\nRun 'healthtrends sync link' to connect to Charm.")
			return nil
		}

		id, err := client.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'healthtrends sync link' to connect to Charm.")
			return nil
		}
		fmt.Fprintln(out, "Charm ID:", id)
		if client.IsReadOnly() {
			color.Yellow("Read-only: another process holds the Charm store")
		}

		logs, err := client.ListLogs("", nil, nil, 0)
		if err != nil {
			return fmt.Errorf("failed to read logs: %w", err)
		}
		fmt.Fprintln(out)
		printUserSummaries(out, summarizeUsers(logs))
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:         "pull",
	Short:       "Fetch days logged on other devices",
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charmClient()
		if err != nil {
			return fmt.Errorf("charm store unavailable: %w", err)
		}
		before, _ := client.ListLogs("", nil, nil, 0)
		if err := client.Sync(); err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		after, err := client.ListLogs("", nil, nil, 0)
		if err != nil {
			return fmt.Errorf("failed to read logs: %w", err)
		}
		color.Green("✓ Pulled from Charm Cloud")
		fmt.Fprintf(cmd.OutOrStdout(), "  Days: %d (was %d)\n", len(after), len(before))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Rebuild local logs from Charm Cloud",
	Long: `Drop the local Charm store and rebuild it from Charm Cloud.

Days logged on this device that never reached the cloud are lost.`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), "Replace local daily logs with the cloud copy? [y/N]: ")
		if !confirm(cmd.InOrStdin(), "y", "yes") {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		client, err := charmClient()
		if err != nil {
			return fmt.Errorf("charm store unavailable: %w", err)
		}
		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		logs, _ := client.ListLogs("", nil, nil, 0)
		color.Green("✓ Rebuilt from Charm Cloud: %d days", len(logs))
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every daily log",
	Long: `Delete every daily log for every user from the Charm store.

The deletions sync, so linked devices lose these days too.
Export first if you want a copy: healthtrends export json -o backup.json`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), "Type 'wipe' to delete every daily log: ")
		if !confirm(cmd.InOrStdin(), "wipe") {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		client, err := charmClient()
		if err != nil {
			return fmt.Errorf("charm store unavailable: %w", err)
		}
		n, err := client.DeleteAllLogs()
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		color.Green("✓ Deleted %d daily logs", n)
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	rootCmd.AddCommand(syncCmd)
}
