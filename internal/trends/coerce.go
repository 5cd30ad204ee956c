// ABOUTME: Soft coercion of loosely typed upstream values into dates, numbers, and booleans.
// ABOUTME: Each helper separates "absent" from "present but unusable".
package trends

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
)

// dateLayouts are tried in order when parsing a date string.
var dateLayouts = []string{
	models.DateLayout,
	"01-02-2006",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseDate extracts a calendar date from a string, a time.Time, or a
// {"$date": ...} wrapper as produced by Mongo extended JSON exports.
// Timestamps keep the calendar day of their own offset.
func parseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return models.DateOf(x), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return models.DateOf(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format %q", x)
	case map[string]any:
		if inner, ok := x["$date"]; ok {
			return parseDate(inner)
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date value %v", v)
}

// toFloat coerces a number or numeric string. ok is false when v is blank;
// err is set when v is present but not numeric.
func toFloat(v any) (f float64, ok bool, err error) {
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		f, err = x.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", x.String())
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, nil
		}
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", x)
		}
	default:
		return 0, false, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a finite number: %v", v)
	}
	return f, true, nil
}

// toBool accepts true/false, 1/0, and yes/no style strings.
func toBool(v any) (b bool, ok bool, err error) {
	switch x := v.(type) {
	case bool:
		return x, true, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "":
			return false, false, nil
		case "true", "yes", "y", "1", "taken":
			return true, true, nil
		case "false", "no", "n", "0", "not taken", "skipped":
			return false, true, nil
		}
		return false, false, fmt.Errorf("not a boolean: %q", x)
	}
	f, present, ferr := toFloat(v)
	if ferr != nil || !present {
		return false, false, fmt.Errorf("not a boolean: %v", v)
	}
	switch f {
	case 1:
		return true, true, nil
	case 0:
		return false, true, nil
	}
	return false, false, fmt.Errorf("not a boolean: %v", v)
}

// toText returns a trimmed, non-empty string.
func toText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case fmt.Stringer:
		s := strings.TrimSpace(x.String())
		return s, s != ""
	}
	return "", false
}
