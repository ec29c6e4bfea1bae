package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Layouts used for stored dates and times of day.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// referenceDate is the shared day both sides of a shift are parsed against.
const referenceDate = "2000-01-01"

// GenerateID creates an opaque unique entry ID.
func GenerateID() string {
	return uuid.NewString()
}

// ParseTimeOfDay parses an HH:mm string against the shared reference date.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(DateLayout+" "+TimeLayout, referenceDate+" "+strings.TrimSpace(s))
}

// ValidTimeOfDay reports whether s is a parseable HH:mm time.
func ValidTimeOfDay(s string) bool {
	_, err := ParseTimeOfDay(s)
	return err == nil
}

// DurationMinutes returns the minutes between clockIn and clockOut, minus the
// lunch deduction when lunch is set, floored at 0. Unparseable input yields 0.
func DurationMinutes(clockIn, clockOut string, lunch bool) float64 {
	in, err := ParseTimeOfDay(clockIn)
	if err != nil {
		return 0
	}
	out, err := ParseTimeOfDay(clockOut)
	if err != nil {
		return 0
	}
	mins := out.Sub(in).Minutes()
	if lunch {
		mins -= 30
	}
	if mins < 0 {
		return 0
	}
	return mins
}

// To12Hour converts "HH:mm" to "h:mm AM/PM". Empty input yields empty output;
// input that is not a time of day is returned unchanged.
func To12Hour(time24 string) string {
	if time24 == "" {
		return ""
	}
	t, err := ParseTimeOfDay(time24)
	if err != nil {
		return time24
	}
	return t.Format("3:04 PM")
}

// MinutesToHoursString formats minutes as H:MM. Fractional minutes are
// truncated toward zero; negative input gets a leading "-".
func MinutesToHoursString(totalMinutes float64) string {
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	m := int64(totalMinutes)
	return fmt.Sprintf("%s%d:%02d", sign, m/60, m%60)
}

// ParseHoursString is the inverse of MinutesToHoursString for whole minutes.
func ParseHoursString(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	h, m, ok := strings.Cut(strings.TrimPrefix(s, "-"), ":")
	if !ok || len(m) != 2 {
		return 0, fmt.Errorf("invalid H:MM value %q", s)
	}
	hours, err := strconv.ParseInt(h, 10, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	mins, err := strconv.ParseInt(m, 10, 64)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	total := hours*60 + mins
	if neg {
		total = -total
	}
	return total, nil
}

// FormatDurationHHMMSS formats d as HH:MM:SS. Negative durations render as 00:00:00.
func FormatDurationHHMMSS(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration formats d as a short string like "1h 40m", "45m" or "30s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// MinutesToDuration converts fractional minutes to a time.Duration.
func MinutesToDuration(mins float64) time.Duration {
	return time.Duration(mins * float64(time.Minute))
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := StartOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}
