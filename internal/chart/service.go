// ABOUTME: Chart service running fetch, normalize, aggregate, and project for one request.
// ABOUTME: Fetchers stand in for the upstream data source; the engine itself does no I/O.
package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/hashicorp/go-hclog"
)

// ErrInvalidRange is returned when the start date is after the end date.
var ErrInvalidRange = errors.New("start date must not be after end date")

// Fetcher returns raw per-day records for a user and inclusive date range.
// Implementations may return records outside the range; they are dropped.
type Fetcher interface {
	Fetch(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error) {
	return f(ctx, userID, from, to)
}

// Query describes one chart request.
type Query struct {
	UserID     string
	From       time.Time
	To         time.Time
	Resolution models.Resolution
	// Metrics selects which metrics appear in the points. Nil selects all.
	Metrics []string
}

// Series is a chart-ready result.
type Series struct {
	UserID     string              `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	From       string              `json:"from" yaml:"from"`
	To         string              `json:"to" yaml:"to"`
	Resolution models.Resolution   `json:"resolution" yaml:"resolution"`
	Points     []trends.Projection `json:"points" yaml:"points"`
	Skipped    int                 `json:"skipped" yaml:"skipped"`
	Duplicates int                 `json:"duplicates" yaml:"duplicates"`
	Anomalies  []trends.Anomaly    `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

// Service builds chart series from a Fetcher.
type Service struct {
	fetcher    Fetcher
	normalizer *trends.Normalizer
	logger     hclog.Logger
}

// NewService creates a Service. A nil normalizer uses the default field table.
func NewService(fetcher Fetcher, normalizer *trends.Normalizer, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if normalizer == nil {
		normalizer = trends.NewNormalizer(nil, logger)
	}
	return &Service{fetcher: fetcher, normalizer: normalizer, logger: logger}
}

// Build fetches, normalizes, aggregates, and projects the records for q.
func (s *Service) Build(ctx context.Context, q Query) (*Series, error) {
	if err := q.Resolution.Validate(); err != nil {
		return nil, err
	}
	from, to := models.DateOf(q.From), models.DateOf(q.To)
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	raws, err := s.fetcher.Fetch(ctx, q.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := s.normalizer.NormalizeFor(raws, q.UserID)
	records := make([]*models.DailyRecord, 0, len(batch.Records))
	for _, r := range batch.Records {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if q.UserID != "" && r.UserID != "" && r.UserID != q.UserID {
			continue
		}
		records = append(records, r)
	}

	points, err := trends.Aggregate(records, q.Resolution)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	metrics := q.Metrics
	if metrics == nil {
		metrics = allMetricNames()
	}

	s.logger.Debug("built series", "user", q.UserID, "resolution", q.Resolution,
		"records", len(records), "points", len(points))

	return &Series{
		UserID:     q.UserID,
		From:       models.FormatDate(from),
		To:         models.FormatDate(to),
		Resolution: q.Resolution,
		Points:     trends.ProjectAll(points, metrics),
		Skipped:    batch.Skipped,
		Duplicates: batch.Duplicates,
		Anomalies:  batch.Anomalies,
	}, nil
}

func allMetricNames() []string {
	names := make([]string, len(models.AllMetrics))
	for i, m := range models.AllMetrics {
		names[i] = string(m)
	}
	return names
}
