// ABOUTME: Installs the embedded Claude Code skill that drives the healthtrends MCP tools.
// ABOUTME: Skips the write when the installed copy already matches.

package main

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var (
	skillSkipConfirm bool
	skillPrint       bool
)

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the healthtrends skill for Claude Code.

The skill teaches Claude Code when to call log_day, get_day, delete_day,
list_days, and get_trends on 'healthtrends mcp', and how to read the
resulting points (null means nothing was logged in that period).

It is written to ~/.claude/skills/healthtrends/SKILL.md. Use --print to
see it without installing.`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if skillPrint {
			content, err := skillContent()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		}
		return installSkill(cmd.OutOrStdout(), cmd.InOrStdin())
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	installSkillCmd.Flags().BoolVar(&skillPrint, "print", false, "Print the skill to stdout instead of installing")
	rootCmd.AddCommand(installSkillCmd)
}

func skillContent() ([]byte, error) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded skill: %w", err)
	}
	return content, nil
}

func skillPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "skills", "healthtrends", "SKILL.md"), nil
}

func installSkill(out io.Writer, in io.Reader) error {
	content, err := skillContent()
	if err != nil {
		return err
	}
	path, err := skillPath()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, content):
		fmt.Fprintf(out, "✓ Skill already up to date at %s\n", path)
		return nil
	case err == nil:
		fmt.Fprintf(out, "Updating the healthtrends skill at %s\n", path)
	default:
		fmt.Fprintf(out, "Installing the healthtrends skill to %s\n", path)
	}
	fmt.Fprintln(out, "Claude Code will be able to log days and chart sleep, heart rate, mood, and medication.")

	if !skillSkipConfirm {
		fmt.Fprint(out, "Continue? [y/N] ")
		if !confirm(in, "y", "yes") {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, "✓ Installed healthtrends skill")
	fmt.Fprintln(out, `Try asking Claude: "I slept 7 hours and took my meds" or "How has my mood trended this month?"`)
	return nil
}
