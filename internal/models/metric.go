// ABOUTME: Metric enum for the four charted daily health metrics.
// ABOUTME: Defines units, JSON field names, and the valid value domain of each metric.
package models

import "math"

// Metric identifies one of the charted daily health metrics.
type Metric string

const (
	MetricSleepHours Metric = "sleep_hours"
	MetricVitalBPM   Metric = "vital_bpm"
	MetricMood       Metric = "mood"
	MetricMedication Metric = "medication_taken"
)

// AllMetrics lists every metric in display order.
var AllMetrics = []Metric{
	MetricSleepHours,
	MetricVitalBPM,
	MetricMood,
	MetricMedication,
}

// MetricUnits maps metrics to their display units.
var MetricUnits = map[Metric]string{
	MetricSleepHours: "hours",
	MetricVitalBPM:   "bpm",
	MetricMood:       "scale",
	MetricMedication: "ratio",
}

// metricFields maps metrics to the field names used in chart points.
var metricFields = map[Metric]string{
	MetricSleepHours: "sleepHours",
	MetricVitalBPM:   "vitalBpm",
	MetricMood:       "mood",
	MetricMedication: "medicationTaken",
}

// IsValidMetric checks if a string is a valid metric name.
func IsValidMetric(s string) bool {
	for _, m := range AllMetrics {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Field returns the chart point field name for the metric.
func (m Metric) Field() string {
	return metricFields[m]
}

// InDomain reports whether v is an acceptable value for the metric.
// Medication values are the 0/1 encoding of taken/not taken.
func (m Metric) InDomain(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	switch m {
	case MetricSleepHours:
		return v >= 0 && v <= 24
	case MetricVitalBPM:
		return v > 0 && v == math.Trunc(v)
	case MetricMood:
		return v >= 1 && v <= 5 && v == math.Trunc(v)
	case MetricMedication:
		return v == 0 || v == 1
	}
	return false
}
