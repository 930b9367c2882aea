// Package calendar holds the date arithmetic shared by the scheduling engine:
// month boundaries, slot instants and the enumerated set of bookable times.
package calendar

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Bookable times form a fixed half-hour grid. Providers cannot create rules or
// slots at arbitrary granularities.
const (
	firstBookableHour = 8
	lastBookableHour  = 20
)

// BookableTimes returns every valid slot start time, ordered, "HH:MM".
func BookableTimes() []string {
	var out []string
	for h := firstBookableHour; h <= lastBookableHour; h++ {
		out = append(out, clock(h, 0))
		if h < lastBookableHour {
			out = append(out, clock(h, 30))
		}
	}
	return out
}

func IsBookableTime(hm string) bool {
	t, err := time.Parse(TimeLayout, hm)
	if err != nil {
		return false
	}
	if t.Minute() != 0 && t.Minute() != 30 {
		return false
	}
	if t.Hour() < firstBookableHour || t.Hour() > lastBookableHour {
		return false
	}
	if t.Hour() == lastBookableHour && t.Minute() != 0 {
		return false
	}
	// Normalized round-trip rejects inputs like "8:00" or "08:0".
	return t.Format(TimeLayout) == hm
}

func clock(h, m int) string {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format(TimeLayout)
}

// ParseDate parses "YYYY-MM-DD" at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// SlotInstant combines a date and a time-of-day into a concrete instant in loc.
func SlotInstant(date, hm string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+hm, loc)
}

// MonthBounds returns the first instant of the month and the first instant of
// the next month in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// DayIsBefore reports whether day (date-only) is strictly before the day that
// contains ref. Same-day returns false: today is still bookable.
func DayIsBefore(day, ref time.Time) bool {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := ref.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
