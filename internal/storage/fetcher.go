// ABOUTME: Adapts a Repository into a raw-record source for trend building.
// ABOUTME: Emits day objects in the backend wire shape so they pass through normalization.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/trends"
)

// WireDateLayout is the MM-DD-YYYY date form used on the wire.
const WireDateLayout = "01-02-2006"

// Fetcher reads raw day objects out of a Repository.
type Fetcher struct {
	Repo Repository
}

// NewFetcher returns a Fetcher over repo.
func NewFetcher(repo Repository) *Fetcher {
	return &Fetcher{Repo: repo}
}

// Fetch returns userID's logs between from and to inclusive as wire records.
func (f *Fetcher) Fetch(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logs, err := f.Repo.ListLogs(userID, &from, &to, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}
	out := make([]trends.RawRecord, 0, len(logs))
	for _, r := range logs {
		out = append(out, WireRecord(r))
	}
	return out, nil
}

// WireRecord renders r in the wire shape. Unrecorded values are null.
func WireRecord(r *models.DailyRecord) trends.RawRecord {
	raw := trends.RawRecord{
		"date":            r.Date.Format(WireDateLayout),
		"user_id":         r.UserID,
		"hours_of_sleep":  nil,
		"vital_bpm":       nil,
		"mood":            nil,
		"took_medication": nil,
		"symptom":         nil,
		"notes":           nil,
	}
	if r.SleepHours != nil {
		raw["hours_of_sleep"] = *r.SleepHours
	}
	if r.VitalBPM != nil {
		raw["vital_bpm"] = *r.VitalBPM
	}
	if r.Mood != nil {
		raw["mood"] = *r.Mood
	}
	if r.MedicationTaken != nil {
		raw["took_medication"] = *r.MedicationTaken
	}
	if r.Symptom != nil {
		raw["symptom"] = *r.Symptom
	}
	if r.Notes != nil {
		raw["notes"] = *r.Notes
	}
	return raw
}
