// ABOUTME: DailyRecord model holding one user's observations for one calendar day.
// ABOUTME: Every metric is optional; nil means "not recorded", never zero.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyRecord is one calendar day's observations for one user.
type DailyRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	SleepHours      *float64  `json:"sleep_hours,omitempty"`
	VitalBPM        *int      `json:"vital_bpm,omitempty"`
	Mood            *int      `json:"mood,omitempty"`
	MedicationTaken *bool     `json:"medication_taken,omitempty"`
	Symptom         *string   `json:"symptom,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewDailyRecord creates a DailyRecord with generated UUID for the given user and day.
func NewDailyRecord(userID string, date time.Time) *DailyRecord {
	now := time.Now()
	return &DailyRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      DateOf(date),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithSleep sets hours of sleep.
func (r *DailyRecord) WithSleep(hours float64) *DailyRecord {
	r.SleepHours = &hours
	return r
}

// WithVital sets the heart rate in beats per minute.
func (r *DailyRecord) WithVital(bpm int) *DailyRecord {
	r.VitalBPM = &bpm
	return r
}

// WithMood sets the 1-5 mood score.
func (r *DailyRecord) WithMood(mood int) *DailyRecord {
	r.Mood = &mood
	return r
}

// WithMedication records whether medication was taken.
func (r *DailyRecord) WithMedication(taken bool) *DailyRecord {
	r.MedicationTaken = &taken
	return r
}

// WithSymptom sets a free-text symptom.
func (r *DailyRecord) WithSymptom(symptom string) *DailyRecord {
	r.Symptom = &symptom
	return r
}

// WithNotes sets notes on the record.
func (r *DailyRecord) WithNotes(notes string) *DailyRecord {
	r.Notes = &notes
	return r
}

// Value returns the numeric value of a metric and whether it was recorded.
// Medication maps to 1 (taken) or 0 (not taken).
func (r *DailyRecord) Value(m Metric) (float64, bool) {
	switch m {
	case MetricSleepHours:
		if r.SleepHours != nil {
			return *r.SleepHours, true
		}
	case MetricVitalBPM:
		if r.VitalBPM != nil {
			return float64(*r.VitalBPM), true
		}
	case MetricMood:
		if r.Mood != nil {
			return float64(*r.Mood), true
		}
	case MetricMedication:
		if r.MedicationTaken != nil {
			if *r.MedicationTaken {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// IsEmpty reports whether no metric, symptom, or note is recorded.
func (r *DailyRecord) IsEmpty() bool {
	for _, m := range AllMetrics {
		if _, ok := r.Value(m); ok {
			return false
		}
	}
	return r.Symptom == nil && r.Notes == nil
}
