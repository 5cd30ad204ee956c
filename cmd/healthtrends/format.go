// ABOUTME: Shared CLI helpers for day arguments and table formatting.
// ABOUTME: Renders optional metric values with "-" for anything not recorded.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/models"
)

// parseDay accepts YYYY-MM-DD, "today", or "yesterday". Empty means today.
func parseDay(s string) (time.Time, error) {
	today := models.DateOf(time.Now())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return d, nil
}

// optionalDay parses s, returning nil when s is empty.
func optionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// truncate and padRight count runes so week labels with an en dash line up.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

func showFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func showInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func showBool(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "yes"
	default:
		return "no"
	}
}

func showText(v *string) string {
	if v == nil || *v == "" {
		return ""
	}
	return *v
}

// printLog writes a multi-line summary of one day.
func printLog(r *models.DailyRecord) {
	faint := color.New(color.Faint)
	fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint(models.FormatDate(r.Date)), faint.Sprint(r.UserID))
	fmt.Printf("  sleep       %s h\n", showFloat(r.SleepHours))
	fmt.Printf("  vital       %s bpm\n", showInt(r.VitalBPM))
	fmt.Printf("  mood        %s\n", showInt(r.Mood))
	fmt.Printf("  medication  %s\n", showBool(r.MedicationTaken))
	if s := showText(r.Symptom); s != "" {
		fmt.Printf("  symptom     %s\n", s)
	}
	if n := showText(r.Notes); n != "" {
		fmt.Printf("  notes       %s\n", faint.Sprint(n))
	}
}
