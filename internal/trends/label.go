// ABOUTME: LabelFormatter producing X-axis labels from a bucket start date.
// ABOUTME: Formats are fixed English layouts, independent of the host locale.
package trends

import (
	"time"

	"github.com/harperreed/healthtrends/internal/models"
)

// WeekRangeSeparator joins the first and last day of a weekly label.
const WeekRangeSeparator = "–"

// FormatLabel returns the axis label for a bucket starting at bucketStart:
// "01/02" daily, "01/02–01/08" weekly, "Jan 2006" monthly, "2006" yearly.
func FormatLabel(bucketStart time.Time, res models.Resolution) (string, error) {
	s, err := strategyFor(res)
	if err != nil {
		return "", err
	}
	return s.label(models.DateOf(bucketStart)), nil
}

func dailyLabel(start time.Time) string {
	return start.Format("01/02")
}

func weeklyLabel(start time.Time) string {
	return start.Format("01/02") + WeekRangeSeparator + start.AddDate(0, 0, 6).Format("01/02")
}

func monthlyLabel(start time.Time) string {
	return start.Format("Jan 2006")
}

func yearlyLabel(start time.Time) string {
	return start.Format("2006")
}
