// ABOUTME: MCP tool implementations for daily logs and trends.
// ABOUTME: Writes pass through the normalizer so out-of-range values are reported, not stored.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultListLimit  = 30
	defaultTrendWeeks = 12
)

func (s *Server) registerTools() {
	// log_day
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_day",
		Description: "Record or replace one day's sleep hours, heart rate, mood (1-5), and medication",
	}, s.handleLogDay)

	// get_day
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day",
		Description: "Get the log for one day",
	}, s.handleGetDay)

	// delete_day
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_day",
		Description: "Delete the log for one day",
	}, s.handleDeleteDay)

	// list_days
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_days",
		Description: "List daily logs in date order, optionally within a date range",
	}, s.handleListDays)

	// get_trends
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_trends",
		Description: "Aggregate daily logs into daily, weekly, monthly, or yearly averages",
	}, s.handleGetTrends)
}

// Tool input/output types

type logDayInput struct {
	Date            string   `json:"date,omitempty" jsonschema:"Day to log (YYYY-MM-DD), defaults to today"`
	UserID          string   `json:"user_id,omitempty" jsonschema:"User the log belongs to"`
	SleepHours      *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours of sleep, 0-24"`
	VitalBPM        *float64 `json:"vital_bpm,omitempty" jsonschema:"Resting heart rate in beats per minute"`
	Mood            *float64 `json:"mood,omitempty" jsonschema:"Mood from 1 (worst) to 5 (best)"`
	MedicationTaken *bool    `json:"medication_taken,omitempty" jsonschema:"Whether medication was taken"`
	Symptom         string   `json:"symptom,omitempty" jsonschema:"Free-text symptom"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type logDayOutput struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	UserID    string   `json:"user_id"`
	Anomalies []string `json:"anomalies,omitempty"`
	Message   string   `json:"message"`
}

type dayInput struct {
	Date   string `json:"date" jsonschema:"Day (YYYY-MM-DD)"`
	UserID string `json:"user_id,omitempty" jsonschema:"User the log belongs to"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listDaysInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User whose logs to list"`
	From   string `json:"from,omitempty" jsonschema:"First day (YYYY-MM-DD)"`
	To     string `json:"to,omitempty" jsonschema:"Last day (YYYY-MM-DD)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results, most recent kept (default 30)"`
}

type getTrendsInput struct {
	UserID     string   `json:"user_id,omitempty" jsonschema:"User whose logs to aggregate"`
	From       string   `json:"from,omitempty" jsonschema:"First day (YYYY-MM-DD), defaults to 12 weeks before to"`
	To         string   `json:"to,omitempty" jsonschema:"Last day (YYYY-MM-DD), defaults to today"`
	Resolution string   `json:"resolution,omitempty" jsonschema:"daily, weekly, monthly, or yearly (default weekly)"`
	Metrics    []string `json:"metrics,omitempty" jsonschema:"Metrics to include: sleep, vital, mood, medication (default all)"`
}

// Tool handlers

func (s *Server) handleLogDay(ctx context.Context, req *mcp.CallToolRequest, input logDayInput) (*mcp.CallToolResult, logDayOutput, error) {
	date := models.DateOf(time.Now())
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, logDayOutput{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.Date)
		}
		date = d
	}

	raw := trends.RawRecord{
		"date":   models.FormatDate(date),
		"userId": s.user(input.UserID),
	}
	if input.SleepHours != nil {
		raw["sleepHours"] = *input.SleepHours
	}
	if input.VitalBPM != nil {
		raw["vitalBpm"] = *input.VitalBPM
	}
	if input.Mood != nil {
		raw["mood"] = *input.Mood
	}
	if input.MedicationTaken != nil {
		raw["medicationTaken"] = *input.MedicationTaken
	}
	if input.Symptom != "" {
		raw["symptom"] = input.Symptom
	}
	if input.Notes != "" {
		raw["notes"] = input.Notes
	}

	rec, anomalies, err := s.normalizer.NormalizeOne(raw)
	if err != nil {
		return nil, logDayOutput{}, fmt.Errorf("failed to read log: %w", err)
	}
	if rec.IsEmpty() {
		return nil, logDayOutput{}, fmt.Errorf("nothing to log for %s", models.FormatDate(date))
	}

	if err := s.repo.UpsertLog(rec); err != nil {
		return nil, logDayOutput{}, fmt.Errorf("failed to save log: %w", err)
	}

	out := logDayOutput{
		ID:      rec.ID.String()[:8],
		Date:    models.FormatDate(rec.Date),
		UserID:  rec.UserID,
		Message: fmt.Sprintf("Logged %s for %s", models.FormatDate(rec.Date), rec.UserID),
	}
	for _, a := range anomalies {
		out.Anomalies = append(out.Anomalies, a.String())
	}
	return nil, out, nil
}

func (s *Server) handleGetDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, any, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.Date)
	}

	rec, err := s.repo.GetLog(s.user(input.UserID), date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, map[string]any{"message": fmt.Sprintf("No log for %s.", input.Date)}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get log: %w", err)
	}
	return nil, storage.WireRecord(rec), nil
}

func (s *Server) handleDeleteDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.Date)
	}

	if err := s.repo.DeleteLog(s.user(input.UserID), date); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete log: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted log: %s", models.FormatDate(date)),
	}, nil
}

func (s *Server) handleListDays(ctx context.Context, req *mcp.CallToolRequest, input listDaysInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	from, err := optionalDate(input.From)
	if err != nil {
		return nil, nil, err
	}
	to, err := optionalDate(input.To)
	if err != nil {
		return nil, nil, err
	}

	logs, err := s.repo.ListLogs(s.user(input.UserID), from, to, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list logs: %w", err)
	}

	if len(logs) == 0 {
		return nil, map[string]interface{}{"message": "No logs found."}, nil
	}

	days := make([]trends.RawRecord, 0, len(logs))
	for _, l := range logs {
		days = append(days, storage.WireRecord(l))
	}
	return nil, map[string]interface{}{"days": days, "count": len(days)}, nil
}

func (s *Server) handleGetTrends(ctx context.Context, req *mcp.CallToolRequest, input getTrendsInput) (*mcp.CallToolResult, any, error) {
	q, err := s.trendQuery(input)
	if err != nil {
		return nil, nil, err
	}

	series, err := s.charts.Build(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trends: %w", err)
	}
	return nil, series, nil
}

func (s *Server) trendQuery(input getTrendsInput) (chart.Query, error) {
	to := models.DateOf(time.Now())
	if input.To != "" {
		d, err := models.ParseDate(input.To)
		if err != nil {
			return chart.Query{}, fmt.Errorf("invalid to date %q: use YYYY-MM-DD", input.To)
		}
		to = d
	}
	from := to.AddDate(0, 0, -7*defaultTrendWeeks+1)
	if input.From != "" {
		d, err := models.ParseDate(input.From)
		if err != nil {
			return chart.Query{}, fmt.Errorf("invalid from date %q: use YYYY-MM-DD", input.From)
		}
		from = d
	}

	res := models.ResolutionWeekly
	if input.Resolution != "" {
		r, err := models.ParseResolution(input.Resolution)
		if err != nil {
			return chart.Query{}, err
		}
		res = r
	}

	return chart.Query{
		UserID:     s.user(input.UserID),
		From:       from,
		To:         to,
		Resolution: res,
		Metrics:    input.Metrics,
	}, nil
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", v)
	}
	return &d, nil
}
