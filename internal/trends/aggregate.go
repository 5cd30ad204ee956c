// ABOUTME: Aggregator grouping daily records into resolution buckets and averaging each metric.
// ABOUTME: Only recorded values count toward a mean; empty metrics stay nil.
package trends

import (
	"errors"
	"fmt"
	"sort"

	"github.com/harperreed/healthtrends/internal/models"
)

// ErrNilRecord is returned when the record list contains a nil entry.
var ErrNilRecord = errors.New("nil record")

// bucket accumulates metric contributions for one window.
type bucket struct {
	key    BucketKey
	sums   map[models.Metric]float64
	counts map[models.Metric]int
	min    map[models.Metric]float64
	max    map[models.Metric]float64
}

func newBucket(key BucketKey) *bucket {
	return &bucket{
		key:    key,
		sums:   make(map[models.Metric]float64, len(models.AllMetrics)),
		counts: make(map[models.Metric]int, len(models.AllMetrics)),
		min:    make(map[models.Metric]float64, len(models.AllMetrics)),
		max:    make(map[models.Metric]float64, len(models.AllMetrics)),
	}
}

func (b *bucket) add(r *models.DailyRecord) {
	for _, m := range models.AllMetrics {
		v, ok := r.Value(m)
		if !ok {
			continue
		}
		if b.counts[m] == 0 || v < b.min[m] {
			b.min[m] = v
		}
		if b.counts[m] == 0 || v > b.max[m] {
			b.max[m] = v
		}
		b.sums[m] += v
		b.counts[m]++
	}
}

// mean returns the arithmetic mean of m, or nil without contributions.
// The result is kept within the contributing min and max so float rounding
// in the sum cannot push it outside the observed range.
func (b *bucket) mean(m models.Metric) *float64 {
	n := b.counts[m]
	if n == 0 {
		return nil
	}
	avg := b.sums[m] / float64(n)
	if avg < b.min[m] {
		avg = b.min[m]
	}
	if avg > b.max[m] {
		avg = b.max[m]
	}
	return &avg
}

// Aggregate groups records into buckets for res and returns one labeled
// point per bucket, sorted by bucket start. Daily resolution emits one point
// per record with values passed through unchanged. The result is built
// entirely before it is returned; on error nothing is returned.
func Aggregate(records []*models.DailyRecord, res models.Resolution) ([]models.AggregatedPoint, error) {
	s, err := strategyFor(res)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("aggregate: %w at index %d", ErrNilRecord, i)
		}
	}
	if len(records) == 0 {
		return []models.AggregatedPoint{}, nil
	}

	if res == models.ResolutionDaily {
		return aggregateDaily(records, s), nil
	}

	buckets := make(map[string]*bucket)
	for _, r := range records {
		key := s.bucket(models.DateOf(r.Date))
		b, ok := buckets[key.Key]
		if !ok {
			b = newBucket(key)
			buckets[key.Key] = b
		}
		b.add(r)
	}

	points := make([]models.AggregatedPoint, 0, len(buckets))
	for _, b := range buckets {
		p := models.AggregatedPoint{
			DateLabel:   s.label(b.key.Start),
			BucketStart: b.key.Start,
			BucketEnd:   b.key.End,
		}
		for _, m := range models.AllMetrics {
			p.SetValue(m, b.mean(m))
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].BucketStart.Before(points[j].BucketStart)
	})
	return points, nil
}

// aggregateDaily emits one point per record in date order.
func aggregateDaily(records []*models.DailyRecord, s strategy) []models.AggregatedPoint {
	sorted := make([]*models.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]models.AggregatedPoint, 0, len(sorted))
	for _, r := range sorted {
		key := s.bucket(models.DateOf(r.Date))
		p := models.AggregatedPoint{
			DateLabel:   s.label(key.Start),
			BucketStart: key.Start,
			BucketEnd:   key.End,
		}
		for _, m := range models.AllMetrics {
			if v, ok := r.Value(m); ok {
				p.SetValue(m, &v)
			}
		}
		points = append(points, p)
	}
	return points
}
