package date

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")

// Clock is a wall-clock time of day with minute precision
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "HH:MM" string. A single digit hour ("9:05") is accepted
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 ||
		!digits(parts[0]) || !digits(parts[1]) {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	c := Clock{Hour: h, Minute: m}
	if !c.Valid() {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return c, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant at which the clock strikes on the day of t, in t's location
func (c Clock) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, t.Location())
}

// Next returns the first time strictly after t at which the clock strikes.
// if it already struck today, that is tomorrow
func (c Clock) Next(t time.Time) time.Time {
	next := c.On(t)
	if !next.After(t) {
		next = c.On(StartOfDay(t).AddDate(0, 0, 1))
	}
	return next
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	y1, m1, d1 := a.In(loc).Date()
	y2, m2, d2 := b.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
