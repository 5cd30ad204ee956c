// ABOUTME: Table-driven mapping from source field names to canonical record fields.
// ABOUTME: New upstream record shapes are supported by adding aliases, not code.
package trends

import (
	"strings"

	"github.com/samber/lo"
)

// Field is a canonical DailyRecord field.
type Field string

const (
	FieldDate       Field = "date"
	FieldUserID     Field = "userId"
	FieldSleepHours Field = "sleepHours"
	FieldVitalBPM   Field = "vitalBpm"
	FieldMood       Field = "mood"
	FieldMedication Field = "medicationTaken"
	FieldSymptom    Field = "symptom"
	FieldNotes      Field = "notes"
)

// AllFields lists every canonical field.
var AllFields = []Field{
	FieldDate, FieldUserID,
	FieldSleepHours, FieldVitalBPM, FieldMood, FieldMedication,
	FieldSymptom, FieldNotes,
}

// FieldMap lists, per canonical field, the source names to look for in order.
// The first present, non-null source name wins.
type FieldMap map[Field][]string

// DefaultFieldMap returns the aliases used by known upstream API versions.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		FieldDate:       {"date", "day", "log_date", "recorded_on"},
		FieldUserID:     {"userId", "user_id", "user"},
		FieldSleepHours: {"sleepHours", "sleep_hours", "hours_of_sleep", "sleep"},
		FieldVitalBPM:   {"vitalBpm", "vital_bpm", "heart_rate", "vital", "bpm"},
		FieldMood:       {"mood", "condition"},
		FieldMedication: {"medicationTaken", "tookMedication", "took_medication", "medication", "medicNumeric"},
		FieldSymptom:    {"symptom", "symptoms"},
		FieldNotes:      {"notes", "note"},
	}
}

// ParseField matches name to a canonical field case-insensitively.
func ParseField(name string) (Field, bool) {
	return lo.Find(AllFields, func(f Field) bool {
		return strings.EqualFold(string(f), name)
	})
}

// IsField reports whether name is a canonical field, ignoring case.
func IsField(name string) bool {
	_, ok := ParseField(name)
	return ok
}

// Merge returns a copy of fm with extra aliases appended. Keys of extra are
// matched to canonical fields case-insensitively; unknown keys are ignored.
func (fm FieldMap) Merge(extra map[string][]string) FieldMap {
	out := make(FieldMap, len(fm))
	for f, names := range fm {
		out[f] = append([]string(nil), names...)
	}
	for key, aliases := range extra {
		field, ok := ParseField(key)
		if !ok {
			continue
		}
		out[field] = lo.Uniq(append(out[field], aliases...))
	}
	return out
}

// lookup returns the first non-null value under any alias of f.
func (fm FieldMap) lookup(raw RawRecord, f Field) (any, bool) {
	for _, name := range fm[f] {
		if v, ok := raw[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
