// ABOUTME: RecordNormalizer converting raw upstream day objects into canonical DailyRecords.
// ABOUTME: Bad dates skip the record; bad metric values are dropped and reported as anomalies.
package trends

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/harperreed/healthtrends/internal/models"
	"github.com/hashicorp/go-hclog"
)

// RawRecord is one per-day object as returned by the fetch layer.
type RawRecord map[string]any

// ErrUnparsableDate marks a raw record whose date cannot be read.
var ErrUnparsableDate = errors.New("unparsable date")

// Anomaly describes a value the normalizer refused to accept.
type Anomaly struct {
	Index  int    `json:"index"`
	Date   string `json:"date,omitempty"`
	Field  Field  `json:"field"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

func (a Anomaly) String() string {
	if a.Date == "" {
		return fmt.Sprintf("record %d: %s: %s", a.Index, a.Field, a.Reason)
	}
	return fmt.Sprintf("record %d (%s): %s: %s", a.Index, a.Date, a.Field, a.Reason)
}

// Batch is the result of normalizing a list of raw records.
type Batch struct {
	// Records holds one record per (user, date), in first-seen order.
	Records []*models.DailyRecord
	// Skipped counts records dropped for an unparsable date.
	Skipped int
	// Duplicates counts records replaced by a later record for the same day.
	Duplicates int
	Anomalies  []Anomaly
}

// Normalizer maps source field names onto canonical DailyRecords.
type Normalizer struct {
	fields FieldMap
	logger hclog.Logger
}

// NewNormalizer creates a Normalizer. A nil fields map uses DefaultFieldMap;
// a nil logger discards anomaly logs.
func NewNormalizer(fields FieldMap, logger hclog.Logger) *Normalizer {
	if fields == nil {
		fields = DefaultFieldMap()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Normalizer{fields: fields, logger: logger}
}

// Normalize converts every raw record, skipping those with unparsable dates.
// When two records share a user and date, the later one wins.
func (n *Normalizer) Normalize(raws []RawRecord) *Batch {
	return n.NormalizeFor(raws, "")
}

// NormalizeFor is Normalize with records that carry no user id attributed to
// userID, so they collide with that user's records for the same day.
func (n *Normalizer) NormalizeFor(raws []RawRecord, userID string) *Batch {
	batch := &Batch{}
	seen := make(map[string]int, len(raws))

	for i, raw := range raws {
		rec, anomalies, err := n.normalizeAt(i, raw)
		batch.Anomalies = append(batch.Anomalies, anomalies...)
		if err != nil {
			batch.Skipped++
			n.logger.Debug("skipping record", "index", i, "error", err)
			continue
		}
		if rec.UserID == "" {
			rec.UserID = userID
		}

		key := rec.UserID + "|" + models.FormatDate(rec.Date)
		if pos, ok := seen[key]; ok {
			batch.Records[pos] = rec
			batch.Duplicates++
			n.logger.Debug("duplicate day replaced by later record", "index", i, "date", models.FormatDate(rec.Date))
			continue
		}
		seen[key] = len(batch.Records)
		batch.Records = append(batch.Records, rec)
	}

	if batch.Skipped > 0 || len(batch.Anomalies) > 0 {
		n.logger.Info("normalized records with issues",
			"records", len(batch.Records), "skipped", batch.Skipped, "anomalies", len(batch.Anomalies))
	}
	return batch
}

// NormalizeOne converts a single raw record. It returns ErrUnparsableDate
// when the date is missing or unreadable.
func (n *Normalizer) NormalizeOne(raw RawRecord) (*models.DailyRecord, []Anomaly, error) {
	return n.normalizeAt(0, raw)
}

func (n *Normalizer) normalizeAt(index int, raw RawRecord) (*models.DailyRecord, []Anomaly, error) {
	dateVal, ok := n.fields.lookup(raw, FieldDate)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing date", ErrUnparsableDate)
	}
	date, err := parseDate(dateVal)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnparsableDate, err)
	}

	rec := &models.DailyRecord{Date: date}
	dateStr := models.FormatDate(date)
	var anomalies []Anomaly
	reject := func(f Field, v any, reason string) {
		a := Anomaly{Index: index, Date: dateStr, Field: f, Value: v, Reason: reason}
		anomalies = append(anomalies, a)
		n.logger.Debug("discarding field value", "index", index, "date", dateStr, "field", f, "value", v, "reason", reason)
	}

	if v, ok := n.fields.lookup(raw, FieldUserID); ok {
		if s, ok := toText(v); ok {
			rec.UserID = s
		} else if f, ok, _ := toFloat(v); ok {
			rec.UserID = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	if f, ok := n.metric(raw, FieldSleepHours, models.MetricSleepHours, reject); ok {
		rec.SleepHours = &f
	}
	if f, ok := n.metric(raw, FieldVitalBPM, models.MetricVitalBPM, reject); ok {
		bpm := int(math.Round(f))
		rec.VitalBPM = &bpm
	}
	if f, ok := n.metric(raw, FieldMood, models.MetricMood, reject); ok {
		mood := int(math.Round(f))
		rec.Mood = &mood
	}
	if v, ok := n.fields.lookup(raw, FieldMedication); ok {
		b, present, err := toBool(v)
		switch {
		case err != nil:
			reject(FieldMedication, v, err.Error())
		case present:
			rec.MedicationTaken = &b
		}
	}

	if v, ok := n.fields.lookup(raw, FieldSymptom); ok {
		if s, ok := toText(v); ok {
			rec.Symptom = &s
		}
	}
	if v, ok := n.fields.lookup(raw, FieldNotes); ok {
		if s, ok := toText(v); ok {
			rec.Notes = &s
		}
	}

	return rec, anomalies, nil
}

// metric reads a numeric field and checks it against the metric's domain.
func (n *Normalizer) metric(raw RawRecord, f Field, m models.Metric, reject func(Field, any, string)) (float64, bool) {
	v, ok := n.fields.lookup(raw, f)
	if !ok {
		return 0, false
	}
	num, present, err := toFloat(v)
	if err != nil {
		reject(f, v, err.Error())
		return 0, false
	}
	if !present {
		return 0, false
	}
	if !m.InDomain(num) {
		reject(f, v, fmt.Sprintf("out of range for %s", m))
		return 0, false
	}
	return num, true
}
