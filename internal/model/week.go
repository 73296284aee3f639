package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Week is a canonical ISO-8601 week key, e.g. "2025-W06"
type Week string

// Accepts both the "W" and the Spanish "S" (semana) separator, any case, 1 or 2 digits.
var weekPattern = regexp.MustCompile(`^\s*(\d{4})\s*-\s*[WwSs]\s*(\d{1,2})\s*$`)

// ParseWeek normalizes a free-form week label to its canonical key
func ParseWeek(s string) (Week, error) {
	m := weekPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > weeksInYear(year) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	return formatWeek(year, week), nil
}

// WeekOf returns the ISO week containing t
func WeekOf(t time.Time) Week {
	year, week := t.ISOWeek()
	return formatWeek(year, week)
}

func formatWeek(year, week int) Week {
	return Week(fmt.Sprintf("%04d-W%02d", year, week))
}

// weeksInYear returns 52 or 53. Dec 28 always falls in the last ISO week.
func weeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
