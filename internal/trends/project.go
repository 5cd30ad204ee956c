// ABOUTME: CategoryProjector exposing only the requested metrics of an aggregated point.
// ABOUTME: Accepts metric names, chart field names, and export category names.
package trends

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/harperreed/healthtrends/internal/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// metricAliases resolves requested names to metrics. Lookups are case-insensitive.
var metricAliases = map[string]models.Metric{
	"sleep":            models.MetricSleepHours,
	"sleep_hours":      models.MetricSleepHours,
	"sleephours":       models.MetricSleepHours,
	"vital":            models.MetricVitalBPM,
	"vital_bpm":        models.MetricVitalBPM,
	"vitalbpm":         models.MetricVitalBPM,
	"vital_signs":      models.MetricVitalBPM,
	"heart_rate":       models.MetricVitalBPM,
	"mood":             models.MetricMood,
	"condition":        models.MetricMood,
	"medication":       models.MetricMedication,
	"medication_taken": models.MetricMedication,
	"medicationtaken":  models.MetricMedication,
}

// ResolveMetrics maps requested names to metrics, dropping unknown names and
// duplicates while keeping request order.
func ResolveMetrics(names []string) []models.Metric {
	resolved := lo.FilterMap(names, func(name string, _ int) (models.Metric, bool) {
		m, ok := metricAliases[strings.ToLower(strings.TrimSpace(name))]
		return m, ok
	})
	return lo.Uniq(resolved)
}

// Projection is an aggregated point reduced to a label and selected metrics.
type Projection struct {
	DateLabel string
	Metrics   []models.Metric
	Values    map[models.Metric]*float64
}

// Project keeps dateLabel plus the requested metrics of p. Unknown names are
// ignored; requesting nothing yields a label-only projection.
func Project(p models.AggregatedPoint, names []string) Projection {
	metrics := ResolveMetrics(names)
	return projectMetrics(p, metrics)
}

// ProjectAll applies Project to every point.
func ProjectAll(points []models.AggregatedPoint, names []string) []Projection {
	metrics := ResolveMetrics(names)
	return lo.Map(points, func(p models.AggregatedPoint, _ int) Projection {
		return projectMetrics(p, metrics)
	})
}

func projectMetrics(p models.AggregatedPoint, metrics []models.Metric) Projection {
	values := make(map[models.Metric]*float64, len(metrics))
	for _, m := range metrics {
		values[m] = p.Value(m)
	}
	return Projection{DateLabel: p.DateLabel, Metrics: metrics, Values: values}
}

// MarshalJSON renders {"dateLabel": ..., "<field>": value|null, ...} in metric order.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	label, err := json.Marshal(p.DateLabel)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"dateLabel":`)
	buf.Write(label)
	for _, m := range p.Metrics {
		val, err := json.Marshal(p.Values[m])
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"` + m.Field() + `":`)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the same ordered mapping as MarshalJSON.
func (p Projection) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var k, val yaml.Node
		k.SetString(key)
		if err := val.Encode(v); err != nil {
			return err
		}
		node.Content = append(node.Content, &k, &val)
		return nil
	}
	if err := add("dateLabel", p.DateLabel); err != nil {
		return nil, err
	}
	for _, m := range p.Metrics {
		if err := add(m.Field(), p.Values[m]); err != nil {
			return nil, err
		}
	}
	return node, nil
}
