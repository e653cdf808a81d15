package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day stored as seconds since midnight.
// It serializes as "HH:MM:SS".
type ClockTime int

// NewClockTime builds a ClockTime from hour, minute and second.
func NewClockTime(h, m, s int) ClockTime {
	return ClockTime(h*3600 + m*60 + s)
}

// MustClock parses "HH:MM:SS" (normalizing first) and never fails.
func MustClock(s string) ClockTime {
	return ParseClock(NormalizeClockString(s))
}

// ParseClock parses an already-normalized "HH:MM:SS" string.
func ParseClock(s string) ClockTime {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	sec, _ := strconv.Atoi(parts[2])
	return NewClockTime(h, m, sec)
}

// NormalizeClockString rewrites a time string to strict HH:MM:SS form.
// A leading empty hour (":MM:SS") is promoted to "00:MM:SS", each component
// is zero-padded to two digits, and anything that is not three
// colon-separated parts collapses to "00:00:00".
func NormalizeClockString(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return "00:00:00"
	}
	out := make([]string, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			p = "0"
		}
		if _, err := strconv.Atoi(p); err != nil {
			return "00:00:00"
		}
		if len(p) < 2 {
			p = strings.Repeat("0", 2-len(p)) + p
		}
		out[i] = p
	}
	return strings.Join(out, ":")
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 3600 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return (int(c) % 3600) / 60 }

// Second returns the second component.
func (c ClockTime) Second() int { return int(c) % 60 }

// AddMinutes returns the clock time shifted forward by m minutes.
// The result may exceed 24h; callers dealing with wrap handle it explicitly.
func (c ClockTime) AddMinutes(m int) ClockTime {
	return c + ClockTime(m*60)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// MarshalJSON serializes as "HH:MM:SS".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts any string and normalizes it.
func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = ParseClock(NormalizeClockString(s))
	return nil
}

// Date is a calendar date serializing as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the whole days from d to other (negative if earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// MarshalJSON serializes as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
