// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Tests parseDay, formatting helpers, command flags, and commands against SQLite.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/config"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestParseDay(t *testing.T) {
	today := models.DateOf(time.Now())

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty is today", input: "", want: today},
		{name: "today", input: "today", want: today},
		{name: "yesterday", input: "Yesterday", want: today.AddDate(0, 0, -1)},
		{name: "iso date", input: "2025-03-04", want: models.Date(2025, time.March, 4)},
		{name: "invalid format", input: "03-04-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDay(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDay(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDay(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionalDay(t *testing.T) {
	d, err := optionalDay("")
	if err != nil || d != nil {
		t.Errorf("optionalDay(\"\") = %v, %v; want nil, nil", d, err)
	}

	d, err = optionalDay("2025-01-31")
	if err != nil {
		t.Fatalf("optionalDay failed: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.January || d.Day() != 31 {
		t.Errorf("optionalDay returned wrong date: got %v", d)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string no truncation", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact length", input: "hello", maxLen: 5, want: "hello"},
		{name: "needs truncation", input: "hello world this is a long string", maxLen: 10, want: "hello w..."},
		{name: "empty string", input: "", maxLen: 5, want: ""},
		{name: "multi-byte kept whole", input: "12/29–01/04 extra", maxLen: 9, want: "12/29–..."},
		{name: "multi-byte fits", input: "12/29–01/04", maxLen: 11, want: "12/29–01/04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		length int
		want   string
	}{
		{name: "needs padding", input: "abc", length: 6, want: "abc   "},
		{name: "exact length", input: "abcdef", length: 6, want: "abcdef"},
		{name: "longer than length", input: "abcdefgh", length: 6, want: "abcdefgh"},
		{name: "empty string", input: "", length: 3, want: "   "},
		{name: "week label counts runes", input: "12/29–01/04", length: 14, want: "12/29–01/04   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padRight(tt.input, tt.length)
			if got != tt.want {
				t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
			}
		})
	}
}

func TestShowValues(t *testing.T) {
	sleep := 7.5
	bpm := 62
	yes := true
	no := false
	blank := ""

	if got := showFloat(nil); got != "-" {
		t.Errorf("showFloat(nil) = %q, want -", got)
	}
	if got := showFloat(&sleep); got != "7.5" {
		t.Errorf("showFloat(7.5) = %q", got)
	}
	if got := showInt(&bpm); got != "62" {
		t.Errorf("showInt(62) = %q", got)
	}
	if got := showBool(nil); got != "-" {
		t.Errorf("showBool(nil) = %q, want -", got)
	}
	if got := showBool(&yes); got != "yes" {
		t.Errorf("showBool(true) = %q", got)
	}
	if got := showBool(&no); got != "no" {
		t.Errorf("showBool(false) = %q", got)
	}
	if got := showText(&blank); got != "" {
		t.Errorf("showText(\"\") = %q", got)
	}
	if got := showMean(nil); got != "-" {
		t.Errorf("showMean(nil) = %q, want -", got)
	}
	if got := showMean(&sleep); got != "7.50" {
		t.Errorf("showMean(7.5) = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"sleep,mood", " vital ", ""})
	want := []string{"sleep", "mood", "vital"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if got := splitList(nil); got == nil || len(got) != 0 {
		t.Errorf("splitList(nil) = %#v, want empty non-nil", got)
	}
}

func TestMergeLog(t *testing.T) {
	day := models.Date(2025, time.March, 4)
	base := models.NewDailyRecord("alice", day).WithSleep(7).WithMood(3).WithNotes("base")
	update := models.NewDailyRecord("alice", day).WithMood(5)

	merged := mergeLog(base, update)

	if merged.ID != base.ID {
		t.Error("Expected merged log to keep the existing ID")
	}
	if merged.SleepHours == nil || *merged.SleepHours != 7 {
		t.Errorf("Expected sleep 7 to survive, got %v", merged.SleepHours)
	}
	if merged.Mood == nil || *merged.Mood != 5 {
		t.Errorf("Expected mood 5, got %v", merged.Mood)
	}
	if merged.Notes == nil || *merged.Notes != "base" {
		t.Errorf("Expected notes to survive, got %v", merged.Notes)
	}
	if *base.Mood != 3 {
		t.Error("mergeLog must not modify base")
	}
}

func TestIsBackup(t *testing.T) {
	if !isBackup([]byte(`{"version":"1.0","tool":"healthtrends","logs":[]}`)) {
		t.Error("Expected export document to be detected as a backup")
	}
	if isBackup([]byte(`[{"date":"2025-03-04","mood":3}]`)) {
		t.Error("Expected raw record array not to be a backup")
	}
	if isBackup([]byte(`{"data":[{"date":"2025-03-04"}]}`)) {
		t.Error("Expected data envelope not to be a backup")
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "healthtrends" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "healthtrends")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}
	for _, name := range []string{"backend", "data-dir", "user", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag on root command", name)
		}
	}
}

func TestLogCmdFlags(t *testing.T) {
	for _, name := range []string{"sleep", "bpm", "mood", "med", "symptom", "notes", "replace"} {
		if logCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on log command", name)
		}
	}
}

func TestListCmdFlags(t *testing.T) {
	limitFlag := listCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("Expected --limit flag on list command")
	}
	if limitFlag.Shorthand != "n" {
		t.Errorf("Expected -n shorthand for --limit, got %q", limitFlag.Shorthand)
	}
	if limitFlag.DefValue != "20" {
		t.Errorf("Expected --limit default 20, got %s", limitFlag.DefValue)
	}
	for _, name := range []string{"from", "to", "all-users"} {
		if listCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on list command", name)
		}
	}
}

func TestTrendsCmdFlags(t *testing.T) {
	resFlag := trendsCmd.Flags().Lookup("resolution")
	if resFlag == nil {
		t.Fatal("Expected --resolution flag on trends command")
	}
	if resFlag.DefValue != "weekly" {
		t.Errorf("Expected weekly default resolution, got %s", resFlag.DefValue)
	}
	for _, name := range []string{"from", "to", "metrics", "input", "format"} {
		if trendsCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on trends command", name)
		}
	}
}

func TestCmdAliases(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		alias string
	}{
		{logCmd, "add"},
		{listCmd, "ls"},
		{deleteCmd, "rm"},
		{trendsCmd, "chart"},
	}

	for _, tt := range tests {
		found := false
		for _, a := range tt.cmd.Aliases {
			if a == tt.alias {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q alias on %s command", tt.alias, tt.cmd.Name())
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := map[string]bool{"json": true, "yaml": true, "markdown": true}
	for _, arg := range exportCmd.ValidArgs {
		delete(want, arg)
	}
	if len(want) != 0 {
		t.Errorf("Missing export formats: %v", want)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"log", "show", "list", "delete", "trends", "export", "import", "migrate", "serve", "mcp", "sync", "config", "install-skill"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == nil || cmd.Name() != name {
			t.Errorf("Expected %s command to be registered", name)
		}
	}
}

// resetFlags restores every flag to its default so Execute runs are independent.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func setupTestCLI(t *testing.T) *storage.DB {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	color.NoColor = true

	resetFlags(rootCmd)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	// Pre-open the database to create the schema
	dbPath := filepath.Join(tmpDir, "healthtrends", storage.DBFileName)
	testDB, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() {
		if repo != nil {
			_ = repo.Close()
			repo = nil
		}
		testDB.Close()
	})

	return testDB
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestLogCmdWithDB(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "log", "2025-03-04", "--sleep", "7.5", "--mood", "4", "--med", "yes", "--notes", "good day"); err != nil {
		t.Fatalf("log command failed: %v", err)
	}

	r, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4))
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if r.SleepHours == nil || *r.SleepHours != 7.5 {
		t.Errorf("Expected sleep 7.5, got %v", r.SleepHours)
	}
	if r.Mood == nil || *r.Mood != 4 {
		t.Errorf("Expected mood 4, got %v", r.Mood)
	}
	if r.MedicationTaken == nil || !*r.MedicationTaken {
		t.Errorf("Expected medication taken, got %v", r.MedicationTaken)
	}
	if r.VitalBPM != nil {
		t.Errorf("Expected no heart rate, got %d", *r.VitalBPM)
	}
	if r.Notes == nil || *r.Notes != "good day" {
		t.Errorf("Expected notes, got %v", r.Notes)
	}
}

func TestLogCmdMergesExistingDay(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "log", "2025-03-04", "--sleep", "6"); err != nil {
		t.Fatalf("first log failed: %v", err)
	}
	if err := execute(t, "log", "2025-03-04", "--bpm", "61"); err != nil {
		t.Fatalf("second log failed: %v", err)
	}

	r, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4))
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if r.SleepHours == nil || *r.SleepHours != 6 {
		t.Errorf("Expected sleep 6 to be kept, got %v", r.SleepHours)
	}
	if r.VitalBPM == nil || *r.VitalBPM != 61 {
		t.Errorf("Expected bpm 61, got %v", r.VitalBPM)
	}
}

func TestLogCmdReplace(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "log", "2025-03-04", "--sleep", "6"); err != nil {
		t.Fatalf("first log failed: %v", err)
	}
	if err := execute(t, "log", "2025-03-04", "--mood", "2", "--replace"); err != nil {
		t.Fatalf("replace log failed: %v", err)
	}

	r, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4))
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if r.SleepHours != nil {
		t.Errorf("Expected sleep to be cleared by --replace, got %v", *r.SleepHours)
	}
}

func TestLogCmdUserFlag(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "log", "2025-03-04", "--mood", "5", "--user", "alice"); err != nil {
		t.Fatalf("log command failed: %v", err)
	}

	if _, err := testDB.GetLog("alice", models.Date(2025, time.March, 4)); err != nil {
		t.Errorf("Expected log for alice: %v", err)
	}
	if _, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4)); err == nil {
		t.Error("Expected no log for the default user")
	}
}

func TestLogCmdRejectsOutOfRange(t *testing.T) {
	testDB := setupTestCLI(t)

	err := execute(t, "log", "2025-03-04", "--mood", "9")
	if err == nil {
		t.Fatal("Expected error for mood 9")
	}
	if !strings.Contains(err.Error(), "mood") {
		t.Errorf("Expected error to name the field, got %v", err)
	}

	logs, _ := testDB.ListLogs("", nil, nil, 0)
	if len(logs) != 0 {
		t.Errorf("Expected nothing stored, got %d logs", len(logs))
	}
}

func TestLogCmdHeartRateDomain(t *testing.T) {
	testDB := setupTestCLI(t)

	if !strings.Contains(logCmd.Long, "--bpm      resting heart rate, any positive whole number") {
		t.Error("Expected log help to describe the heart rate domain")
	}

	if err := execute(t, "log", "2025-03-04", "--bpm", "500"); err != nil {
		t.Fatalf("Expected bpm 500 to be accepted: %v", err)
	}
	r, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4))
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if r.VitalBPM == nil || *r.VitalBPM != 500 {
		t.Errorf("Expected bpm 500, got %v", r.VitalBPM)
	}

	if err := execute(t, "log", "2025-03-05", "--bpm", "0"); err == nil {
		t.Error("Expected bpm 0 to be rejected")
	}
}

func TestLogCmdNothingToLog(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "log", "2025-03-04"); err == nil {
		t.Error("Expected error when no values are given")
	}
}

func TestLogCmdInvalidDate(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "log", "04/03/2025", "--mood", "3"); err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestShowCmd(t *testing.T) {
	testDB := setupTestCLI(t)

	r := models.NewDailyRecord("anonymous", models.Date(2025, time.March, 4)).WithMood(3)
	if err := testDB.UpsertLog(r); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	if err := execute(t, "show", "2025-03-04"); err != nil {
		t.Errorf("show command failed: %v", err)
	}
	if err := execute(t, "show", "2025-03-05"); err != nil {
		t.Errorf("show for a missing day should not fail: %v", err)
	}
}

func TestListCmdWithDB(t *testing.T) {
	testDB := setupTestCLI(t)

	for d := 1; d <= 3; d++ {
		r := models.NewDailyRecord("anonymous", models.Date(2025, time.March, d)).WithSleep(float64(6 + d))
		if err := testDB.UpsertLog(r); err != nil {
			t.Fatalf("UpsertLog failed: %v", err)
		}
	}

	if err := execute(t, "list"); err != nil {
		t.Errorf("list command failed: %v", err)
	}
	if err := execute(t, "list", "-n", "2", "--from", "2025-03-01", "--to", "2025-03-31"); err != nil {
		t.Errorf("list with range failed: %v", err)
	}
	if err := execute(t, "list", "--all-users"); err != nil {
		t.Errorf("list --all-users failed: %v", err)
	}
}

func TestListCmdEmptyDB(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "list"); err != nil {
		t.Errorf("list command failed on empty DB: %v", err)
	}
}

func TestListCmdInvalidRange(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "list", "--from", "2025-03-10", "--to", "2025-03-01"); err == nil {
		t.Error("Expected error when --from is after --to")
	}
}

func TestDeleteCmdWithDB(t *testing.T) {
	testDB := setupTestCLI(t)

	r := models.NewDailyRecord("anonymous", models.Date(2025, time.March, 4)).WithMood(3)
	if err := testDB.UpsertLog(r); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	if err := execute(t, "delete", "2025-03-04"); err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	if _, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 4)); err == nil {
		t.Error("Expected log to be deleted")
	}
}

func TestDeleteCmdNotFound(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "delete", "2025-03-04"); err == nil {
		t.Error("Expected error when deleting a missing day")
	}
}

func TestTrendsCmdWithDB(t *testing.T) {
	testDB := setupTestCLI(t)

	r := models.NewDailyRecord("anonymous", models.Date(2025, time.March, 4)).WithSleep(7).WithMood(4)
	if err := testDB.UpsertLog(r); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	for _, format := range []string{"table", "json", "yaml"} {
		err := execute(t, "trends", "--from", "2025-03-01", "--to", "2025-03-31", "-r", "monthly", "--format", format)
		if err != nil {
			t.Errorf("trends --format %s failed: %v", format, err)
		}
	}
}

func TestTrendsCmdErrors(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "trends", "--resolution", "hourly"); err == nil {
		t.Error("Expected error for unknown resolution")
	}
	if err := execute(t, "trends", "--from", "2025-03-10", "--to", "2025-03-01"); err == nil {
		t.Error("Expected error for reversed range")
	}
	if err := execute(t, "trends", "--format", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestTrendsCmdFromInputFile(t *testing.T) {
	setupTestCLI(t)

	path := filepath.Join(t.TempDir(), "records.json")
	raw := `[{"date":"03-02-2025","hours_of_sleep":6,"mood":3},{"date":"03-04-2025","hours_of_sleep":8,"mood":5}]`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := execute(t, "trends", "--input", path, "--from", "2025-03-01", "--to", "2025-03-08", "--format", "json"); err != nil {
		t.Errorf("trends --input failed: %v", err)
	}
}

func TestRenderTable(t *testing.T) {
	color.NoColor = true

	sleep := 7.0
	point := models.AggregatedPoint{DateLabel: "03/02–03/08"}
	point.SetValue(models.MetricSleepHours, &sleep)
	series := &chart.Series{
		From:       "2025-03-02",
		To:         "2025-03-08",
		Resolution: models.ResolutionWeekly,
		Points:     trends.ProjectAll([]models.AggregatedPoint{point}, []string{"sleep", "mood"}),
	}

	var buf bytes.Buffer
	if err := renderSeries(&buf, series, "table"); err != nil {
		t.Fatalf("renderSeries failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "SLEEP_HOURS") || !strings.Contains(out, "MOOD") {
		t.Errorf("Expected metric headers, got:\n%s", out)
	}
	if strings.Contains(out, "VITAL_BPM") {
		t.Errorf("Expected only requested metrics, got:\n%s", out)
	}
	if !strings.Contains(out, "03/02–03/08") || !strings.Contains(out, "7.00") {
		t.Errorf("Expected label and mean, got:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Errorf("Expected missing mood rendered as -, got:\n%s", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	series := &chart.Series{From: "2025-03-01", To: "2025-03-31"}
	if err := renderSeries(&buf, series, "table"); err != nil {
		t.Fatalf("renderSeries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No health logs") {
		t.Errorf("Expected empty message, got %q", buf.String())
	}
}

func TestRenderJSONKeepsNulls(t *testing.T) {
	point := models.AggregatedPoint{DateLabel: "Mar 2025"}
	series := &chart.Series{
		Resolution: models.ResolutionMonthly,
		Points:     trends.ProjectAll([]models.AggregatedPoint{point}, []string{"mood"}),
	}

	var buf bytes.Buffer
	if err := renderSeries(&buf, series, "json"); err != nil {
		t.Fatalf("renderSeries failed: %v", err)
	}

	var decoded struct {
		Points []map[string]any `json:"points"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(decoded.Points))
	}
	v, ok := decoded.Points[0]["mood"]
	if !ok || v != nil {
		t.Errorf("Expected mood: null, got %v (present=%v)", v, ok)
	}
}

func TestExportCmdWithDB(t *testing.T) {
	testDB := setupTestCLI(t)

	r := models.NewDailyRecord("anonymous", models.Date(2025, time.March, 4)).WithSleep(7)
	if err := testDB.UpsertLog(r); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	for _, format := range []string{"json", "yaml", "markdown"} {
		if err := execute(t, "export", format); err != nil {
			t.Errorf("export %s failed: %v", format, err)
		}
	}
}

func TestExportInvalidFormat(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "export", "invalid"); err == nil {
		t.Error("Expected error for invalid export format")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	testDB := setupTestCLI(t)

	r := models.NewDailyRecord("alice", models.Date(2025, time.March, 4)).WithSleep(7).WithMedication(false)
	if err := testDB.UpsertLog(r); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := execute(t, "export", "json", "-o", path); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if err := testDB.DeleteLog("alice", r.Date); err != nil {
		t.Fatalf("DeleteLog failed: %v", err)
	}

	if err := execute(t, "import", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	got, err := testDB.GetLog("alice", r.Date)
	if err != nil {
		t.Fatalf("Expected restored log: %v", err)
	}
	if got.MedicationTaken == nil || *got.MedicationTaken {
		t.Errorf("Expected medication false to survive, got %v", got.MedicationTaken)
	}
}

func TestImportRawRecords(t *testing.T) {
	testDB := setupTestCLI(t)

	path := filepath.Join(t.TempDir(), "health-logs.json")
	raw := `{"data":[
		{"date":"03-04-2025","user_id":"bob","hours_of_sleep":7.5,"vital_bpm":64,"took_medication":true},
		{"date":"03-05-2025","mood":11},
		{"date":"garbage","mood":3}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := execute(t, "import", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	bob, err := testDB.GetLog("bob", models.Date(2025, time.March, 4))
	if err != nil {
		t.Fatalf("Expected bob's log: %v", err)
	}
	if bob.VitalBPM == nil || *bob.VitalBPM != 64 {
		t.Errorf("Expected bpm 64, got %v", bob.VitalBPM)
	}

	anon, err := testDB.GetLog("anonymous", models.Date(2025, time.March, 5))
	if err != nil {
		t.Fatalf("Expected record without user stored under default user: %v", err)
	}
	if anon.Mood != nil {
		t.Errorf("Expected out-of-range mood dropped, got %d", *anon.Mood)
	}

	logs, _ := testDB.ListLogs("", nil, nil, 0)
	if len(logs) != 2 {
		t.Errorf("Expected 2 logs (bad date skipped), got %d", len(logs))
	}
}

func TestImportUnattributedDayMergesWithDefaultUser(t *testing.T) {
	testDB := setupTestCLI(t)

	path := filepath.Join(t.TempDir(), "health-logs.json")
	raw := `[
		{"date":"2025-01-01","sleepHours":4},
		{"date":"2025-01-01","user_id":"anonymous","sleepHours":8}
	]`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := execute(t, "import", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	logs, err := testDB.ListLogs("anonymous", nil, nil, 0)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	if logs[0].SleepHours == nil || *logs[0].SleepHours != 8 {
		t.Errorf("Expected later record to win with sleep 8, got %v", logs[0].SleepHours)
	}
}

func TestImportMissingFile(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "import", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing import file")
	}
}

func TestMigrateCmdSameBackend(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "migrate", "--from", "sqlite", "--to", "sqlite"); err == nil {
		t.Error("Expected error when source and destination match")
	}
}

func TestMigrateCmdFlags(t *testing.T) {
	for name, def := range map[string]string{"from": "charm", "to": "sqlite", "dry-run": "false"} {
		f := migrateCmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("Expected --%s flag on migrate command", name)
			continue
		}
		if f.DefValue != def {
			t.Errorf("--%s default = %s, want %s", name, f.DefValue, def)
		}
	}
}

func TestInvalidBackendFlag(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "list", "--backend", "postgres"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestSyncSubcommands(t *testing.T) {
	want := map[string]bool{"link": true, "unlink": true, "status": true, "pull": true, "reset": true, "wipe": true}
	for _, c := range syncCmd.Commands() {
		delete(want, c.Name())
	}
	if len(want) != 0 {
		t.Errorf("Missing sync subcommands: %v", want)
	}
}

func TestSummarizeUsers(t *testing.T) {
	logs := []*models.DailyRecord{
		models.NewDailyRecord("bob", models.Date(2025, time.March, 9)),
		models.NewDailyRecord("alice", models.Date(2025, time.March, 4)),
		models.NewDailyRecord("alice", models.Date(2025, time.March, 1)),
		models.NewDailyRecord("alice", models.Date(2025, time.March, 7)),
	}

	got := summarizeUsers(logs)
	if len(got) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(got))
	}
	want := userSummary{UserID: "alice", Days: 3, First: "2025-03-01", Last: "2025-03-07"}
	if got[0] != want {
		t.Errorf("Expected %+v, got %+v", want, got[0])
	}
	if got[1].UserID != "bob" || got[1].Days != 1 {
		t.Errorf("Expected bob with 1 day, got %+v", got[1])
	}

	var buf bytes.Buffer
	printUserSummaries(&buf, got)
	if !strings.Contains(buf.String(), "2025-03-01..2025-03-07") {
		t.Errorf("Expected alice's range in output, got: %s", buf.String())
	}

	buf.Reset()
	printUserSummaries(&buf, nil)
	if !strings.Contains(buf.String(), "No days logged") {
		t.Errorf("Expected empty message, got: %s", buf.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"wipe\n", "wipe", true},
		{"  WIPE  \n", "wipe", true},
		{"y", "y", true},
		{"n\n", "y", false},
		{"", "y", false},
	}
	for _, tt := range tests {
		if got := confirm(strings.NewReader(tt.input), tt.want); got != tt.ok {
			t.Errorf("confirm(%q, %q) = %v, want %v", tt.input, tt.want, got, tt.ok)
		}
	}
}

func TestSyncWipeCanceled(t *testing.T) {
	setupTestCLI(t)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("no\n"))
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	if err := execute(t, "sync", "wipe"); err != nil {
		t.Fatalf("sync wipe failed: %v", err)
	}
	if !strings.Contains(out.String(), "Canceled.") {
		t.Errorf("Expected cancel message, got: %s", out.String())
	}
}

func TestNeedsStorage(t *testing.T) {
	if !needsStorage(listCmd) {
		t.Error("Expected list to need storage")
	}
	if !needsStorage(showCmd) {
		t.Error("Expected show to need storage")
	}
	for _, cmd := range []*cobra.Command{migrateCmd, installSkillCmd, syncStatusCmd, configShowCmd} {
		if needsStorage(cmd) {
			t.Errorf("Expected %s not to open storage", cmd.CommandPath())
		}
	}
}

func TestConfigSetAndAlias(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "config", "set", "user_id", "alice"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if err := execute(t, "config", "alias", "sleepHours", "slept", "zzz"); err != nil {
		t.Fatalf("config alias failed: %v", err)
	}

	loaded, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.GetUserID() != "alice" {
		t.Errorf("Expected user alice, got %s", loaded.GetUserID())
	}

	aliases := loaded.FieldMap()[trends.FieldSleepHours]
	if aliases[len(aliases)-2] != "slept" || aliases[len(aliases)-1] != "zzz" {
		t.Errorf("Expected configured aliases appended, got %v", aliases)
	}

	if err := execute(t, "config", "show"); err != nil {
		t.Errorf("config show failed: %v", err)
	}
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if err := execute(t, "config", "set", "backend", "postgres"); err == nil {
		t.Error("Expected error for invalid backend")
	}
	if err := execute(t, "config", "alias", "steps", "step_count"); err == nil {
		t.Error("Expected error for unknown field")
	}
}
