// Package timeexpr turns short free-form time fragments such as "14.3",
// "18:30" or "+45m" into an absolute time.
package timeexpr

import (
	"regexp"
	"strconv"
	"time"
)

var (
	dayMonthPattern = regexp.MustCompile(`([0123]?\d)\.([012]?\d)`)
	clockPattern    = regexp.MustCompile(`([012]?\d):(\d{2})?`)
	offsetPattern   = regexp.MustCompile(`\+(\d+)([mhd])?`)
)

// NowWindow is the distance from now within which a parsed time is shown as "now".
const NowWindow = 3 * time.Second

// maxOffsetDays bounds a single "+N" offset. Larger offsets are ignored.
const maxOffsetDays = 100 * 366

// Parse interprets input relative to now. Three independent passes run over
// the input, each adjusting the running result when its pattern matches:
//
//   - "D.M" sets month, then day; a result in the past moves one year ahead.
//   - "H:MM" or "H:" sets the clock; a result in the past moves one day ahead.
//   - every "+N[mhd]" adds N minutes, hours or days (minutes by default);
//     an offset of more than about a century is ignored.
//
// Input that matches nothing yields now.
func Parse(input string, now time.Time) time.Time {
	t := now
	t = applyDayMonth(input, t, now)
	t = applyClock(input, t, now)
	return applyOffsets(input, t)
}

// IsNow reports whether t is close enough to now to be presented as "now".
func IsNow(t, now time.Time) bool {
	return t.Sub(now) < NowWindow
}

func applyDayMonth(input string, t, now time.Time) time.Time {
	m := dayMonthPattern.FindStringSubmatch(input)
	if m == nil {
		return t
	}
	if month, err := strconv.Atoi(m[2]); err == nil && month > 0 && month < 13 {
		t = setMonth(t, time.Month(month))
	}
	if day, err := strconv.Atoi(m[1]); err == nil && day > 0 && day < 32 {
		t = setDay(t, day)
	}
	if t.Before(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t
}

func applyClock(input string, t, now time.Time) time.Time {
	m := clockPattern.FindStringSubmatch(input)
	if m == nil {
		return t
	}
	hour, minute := 0, 0
	if h, err := strconv.Atoi(m[1]); err == nil && h < 24 {
		hour = h
	}
	if m[2] != "" {
		if mm, err := strconv.Atoi(m[2]); err == nil && mm < 60 {
			minute = mm
		}
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func applyOffsets(input string, t time.Time) time.Time {
	for _, m := range offsetPattern.FindAllStringSubmatch(input, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		switch m[2] {
		case "h":
			if n <= maxOffsetDays*24 {
				t = t.Add(time.Duration(n) * time.Hour)
			}
		case "d":
			if n <= maxOffsetDays {
				t = t.AddDate(0, 0, n)
			}
		default:
			if n <= maxOffsetDays*24*60 {
				t = t.Add(time.Duration(n) * time.Minute)
			}
		}
	}
	return t
}

// setMonth moves t into month of the same year, clamping the day so the
// result stays inside that month.
func setMonth(t time.Time, month time.Month) time.Time {
	day := min(t.Day(), daysIn(t.Year(), month, t.Location()))
	return time.Date(t.Year(), month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// setDay sets the day of month, clamped to the last day of t's month.
func setDay(t time.Time, day int) time.Time {
	day = min(day, daysIn(t.Year(), t.Month(), t.Location()))
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
