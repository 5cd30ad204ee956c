// ABOUTME: AggregatedPoint model, one chart-ready row per bucket.
// ABOUTME: Metric values are nil when the bucket has no contributions.
package models

import "time"

// AggregatedPoint is the averaged view of one bucket.
type AggregatedPoint struct {
	DateLabel       string    `json:"dateLabel"`
	BucketStart     time.Time `json:"bucketStart"`
	BucketEnd       time.Time `json:"bucketEnd"`
	SleepHours      *float64  `json:"sleepHours"`
	VitalBPM        *float64  `json:"vitalBpm"`
	Mood            *float64  `json:"mood"`
	MedicationTaken *float64  `json:"medicationTaken"`
}

// Value returns the averaged value of a metric, or nil when there is no data.
func (p *AggregatedPoint) Value(m Metric) *float64 {
	switch m {
	case MetricSleepHours:
		return p.SleepHours
	case MetricVitalBPM:
		return p.VitalBPM
	case MetricMood:
		return p.Mood
	case MetricMedication:
		return p.MedicationTaken
	}
	return nil
}

// SetValue stores the averaged value of a metric.
func (p *AggregatedPoint) SetValue(m Metric, v *float64) {
	switch m {
	case MetricSleepHours:
		p.SleepHours = v
	case MetricVitalBPM:
		p.VitalBPM = v
	case MetricMood:
		p.Mood = v
	case MetricMedication:
		p.MedicationTaken = v
	}
}
