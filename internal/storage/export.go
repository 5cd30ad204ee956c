// ABOUTME: Export and import functionality for daily health logs.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the version stamped on export files.
const ExportVersion = "1.0"

// ExportData represents the full export format for health data.
type ExportData struct {
	Version    string                `json:"version" yaml:"version"`
	ExportedAt time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool       string                `json:"tool" yaml:"tool"`
	Logs       []*models.DailyRecord `json:"logs" yaml:"logs"`
}

// GetAllData retrieves all logs for export.
func GetAllData(repo Repository) (*ExportData, error) {
	logs, err := repo.ListLogs("", nil, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if logs == nil {
		logs = []*models.DailyRecord{}
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "healthtrends",
		Logs:       logs,
	}, nil
}

// ImportData upserts every log from an export into repo.
func ImportData(repo Repository, data *ExportData) (int, error) {
	imported := 0
	for _, r := range data.Logs {
		if r == nil {
			continue
		}
		if err := repo.UpsertLog(r); err != nil {
			return imported, fmt.Errorf("import log %s %s: %w", r.UserID, models.FormatDate(r.Date), err)
		}
		imported++
	}
	return imported, nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type yamlLog struct {
	Date       string   `yaml:"date"`
	SleepHours *float64 `yaml:"sleep_hours,omitempty"`
	VitalBPM   *int     `yaml:"vital_bpm,omitempty"`
	Mood       *int     `yaml:"mood,omitempty"`
	Medication *bool    `yaml:"medication_taken,omitempty"`
	Symptom    string   `yaml:"symptom,omitempty"`
	Notes      string   `yaml:"notes,omitempty"`
}

// ExportYAML exports all data as YAML with logs grouped by user.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string               `yaml:"version"`
		ExportedAt string               `yaml:"exported_at"`
		Tool       string               `yaml:"tool"`
		Users      map[string][]yamlLog `yaml:"users"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Users:      make(map[string][]yamlLog),
	}

	for _, r := range data.Logs {
		yl := yamlLog{
			Date:       models.FormatDate(r.Date),
			SleepHours: r.SleepHours,
			VitalBPM:   r.VitalBPM,
			Mood:       r.Mood,
			Medication: r.MedicationTaken,
		}
		if r.Symptom != nil {
			yl.Symptom = *r.Symptom
		}
		if r.Notes != nil {
			yl.Notes = *r.Notes
		}
		yamlData.Users[r.UserID] = append(yamlData.Users[r.UserID], yl)
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown exports logs as Markdown tables, one section per user.
// An empty userID includes every user; since filters out earlier days.
func ExportMarkdown(repo Repository, userID string, since *time.Time) (string, error) {
	logs, err := repo.ListLogs(userID, since, nil, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Health Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(logs) == 0 {
		sb.WriteString("No logs recorded.\n")
		return sb.String(), nil
	}

	// Group by user
	grouped := make(map[string][]*models.DailyRecord)
	var users []string
	for _, r := range logs {
		if _, ok := grouped[r.UserID]; !ok {
			users = append(users, r.UserID)
		}
		grouped[r.UserID] = append(grouped[r.UserID], r)
	}
	sort.Strings(users)

	for _, u := range users {
		sb.WriteString(fmt.Sprintf("## %s\n\n", u))
		sb.WriteString("| Date | Sleep | BPM | Mood | Medication | Symptom | Notes |\n")
		sb.WriteString("|------|-------|-----|------|------------|---------|-------|\n")
		for _, r := range grouped[u] {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				models.FormatDate(r.Date),
				formatFloat(r.SleepHours),
				formatInt(r.VitalBPM),
				formatInt(r.Mood),
				formatBool(r.MedicationTaken),
				formatText(r.Symptom),
				formatText(r.Notes)))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, data []byte) (int, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(repo, &exportData)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "yes"
	}
	return "no"
}

func formatText(v *string) string {
	if v == nil {
		return ""
	}
	return strings.ReplaceAll(*v, "|", "\\|")
}
