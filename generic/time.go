package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (attendance is recorded per day)
// =============================================================================

const DateLayout = "2006-01-02"

// TimePoint is a calendar date. The time-of-day part is always midnight UTC,
// no time-zone normalization is performed.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, &ParseError{Field: "date", Value: s, Err: err}
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int          { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month  { return tp.Time.Month() }
func (tp TimePoint) Day() int           { return tp.Time.Day() }
func (tp TimePoint) String() string     { return tp.Time.Format(DateLayout) }

// MonthKey returns the YYYY-MM prefix used for month filters.
func (tp TimePoint) MonthKey() string { return tp.Time.Format("2006-01") }

func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// CLOCK TIME - Time of day with minute precision
// =============================================================================

// ClockTime is a wall-clock reading such as 09:00 or 18:30.
type ClockTime struct {
	Hour   int
	Minute int
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// ParseClockTime parses "HH:MM" (a single-digit hour is accepted). Both
// fields are plain digits; signs are rejected.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || !isDigits(h, 1, 2) || !isDigits(m, 2, 2) {
		return ClockTime{}, &ParseError{Field: "clock", Value: s, Err: ErrInvalidClockTime}
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour > 23 {
		return ClockTime{}, &ParseError{Field: "clock", Value: s, Err: ErrInvalidClockTime}
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return ClockTime{}, &ParseError{Field: "clock", Value: s, Err: ErrInvalidClockTime}
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MinuteOfDay returns minutes since midnight. Out-of-range fields are not
// normalized; callers clamp the derived durations instead.
func (c ClockTime) MinuteOfDay() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MinutesBetween returns to - from in minutes. It is negative when to is
// earlier in the day than from; there is no wrap to the next day.
func MinutesBetween(from, to ClockTime) int { return to.MinuteOfDay() - from.MinuteOfDay() }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return StartOfMonth(year, month).AddMonths(1).AddDays(-1)
}
