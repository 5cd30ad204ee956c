// ABOUTME: BucketKeyFunction mapping a calendar date and resolution to its bucket window.
// ABOUTME: Each resolution is one strategy entry; weeks are Sunday-anchored, not ISO.
package trends

import (
	"time"

	"github.com/harperreed/healthtrends/internal/models"
)

// BucketKey identifies the aggregation window a date falls into.
type BucketKey struct {
	Key   string
	Start time.Time
	// End is the last calendar day in the window, inclusive.
	End time.Time
}

// strategy describes how one resolution partitions the calendar.
type strategy struct {
	start func(day time.Time) time.Time
	end   func(start time.Time) time.Time
	key   func(start time.Time) string
	label func(start time.Time) string
}

var strategies = map[models.Resolution]strategy{
	models.ResolutionDaily: {
		start: func(day time.Time) time.Time { return day },
		end:   func(start time.Time) time.Time { return start },
		key:   func(start time.Time) string { return start.Format(models.DateLayout) },
		label: dailyLabel,
	},
	models.ResolutionWeekly: {
		start: func(day time.Time) time.Time { return day.AddDate(0, 0, -int(day.Weekday())) },
		end:   func(start time.Time) time.Time { return start.AddDate(0, 0, 6) },
		key:   func(start time.Time) string { return "W" + start.Format(models.DateLayout) },
		label: weeklyLabel,
	},
	models.ResolutionMonthly: {
		start: func(day time.Time) time.Time { return models.Date(day.Year(), day.Month(), 1) },
		end:   func(start time.Time) time.Time { return start.AddDate(0, 1, -1) },
		key:   func(start time.Time) string { return start.Format("2006-01") },
		label: monthlyLabel,
	},
	models.ResolutionYearly: {
		start: func(day time.Time) time.Time { return models.Date(day.Year(), time.January, 1) },
		end:   func(start time.Time) time.Time { return models.Date(start.Year(), time.December, 31) },
		key:   func(start time.Time) string { return start.Format("2006") },
		label: yearlyLabel,
	},
}

func strategyFor(res models.Resolution) (strategy, error) {
	s, ok := strategies[res]
	if !ok {
		return strategy{}, res.Validate()
	}
	return s, nil
}

// KeyFor returns the bucket containing date at the given resolution.
// Any time-of-day component of date is ignored.
func KeyFor(date time.Time, res models.Resolution) (BucketKey, error) {
	s, err := strategyFor(res)
	if err != nil {
		return BucketKey{}, err
	}
	return s.bucket(models.DateOf(date)), nil
}

func (s strategy) bucket(day time.Time) BucketKey {
	start := s.start(day)
	return BucketKey{Key: s.key(start), Start: start, End: s.end(start)}
}
