package date

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrParsing = errors.New("error parsing date")

// ParseDay turns a human date ("today", "tue", "in 2 weeks", "18th", "20/04/2021")
// into the start of that day, relative to now and in now's location
func ParseDay(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := StartOfDay(now)
	switch s {
	case "", "today", "tod", "now":
		return today, nil
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), nil
	case "yesterday", "yday":
		return today.AddDate(0, 0, -1), nil
	}
	if wkd, err := parseWeekday(s); err == nil {
		days := int(wkd - today.Weekday())
		if days <= 0 {
			days += 7
		}
		return today.AddDate(0, 0, days), nil
	}
	if n, err := parseDayOffset(s); err == nil {
		return today.AddDate(0, 0, n), nil
	}
	if t, err := parseAbsolute(s, now.Location()); err == nil {
		return t, nil
	}
	if day, err := parseDayOfMonth(s); err == nil {
		months := 0
		if day < today.Day() {
			months = 1
		}
		return today.AddDate(0, months, day-today.Day()), nil
	}
	return time.Time{}, ErrParsing
}

func parseAbsolute(s string, loc *time.Location) (time.Time, error) {
	for _, fmt := range absoluteFormats {
		t, err := time.ParseInLocation(fmt, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("format not found")
}

var absoluteFormats = []string{
	"2006-01-02",
	"_2/01/06",
	"_2/01/2006",
	"_2 Jan 2006",
	"_2 January 2006",
}

type multiplier struct {
	key   string
	value int
}

var multipliers = []multiplier{
	{"days", 1},
	{"weeks", 7},
	{"months", 30},
	{"years", 365},
}

func parseDayOffset(s string) (int, error) {
	s = strings.TrimPrefix(s, "in")
	s = strings.TrimSpace(s)
	var (
		n        int
		negative bool
	)
	if len(s) >= 1 {
		if s[0] == '-' {
			negative = true
			s = s[1:]
		} else if s[0] == '+' {
			s = s[1:]
		}
	}
	{
		rest, n1, err := parseInt(s)
		if err != nil {
			return 0, err
		}
		n = n1
		s = strings.TrimSpace(rest)
	}

	multiplier := 1
	if len(s) > 0 {
		multiplier = 0
		endOfWord := len(s)
		for i, c := range s {
			if c == ' ' {
				endOfWord = i
				break
			}
		}
		for _, m := range multipliers {
			end := min(len(m.key), endOfWord)
			if m.key[:end] == s[:end] {
				multiplier = m.value
				s = s[endOfWord:]
				break
			}
		}
		s = strings.TrimSpace(s)
		switch s {
		case "ago":
			negative = true
		case "":
		default:
			return 0, errors.New("unexpected suffix")
		}
		if multiplier == 0 {
			return 0, errors.New("invalid suffix, expected 'days', 'months', 'weeks', or 'years'")
		}
	}

	if negative {
		n *= -1
	}
	return n * multiplier, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for i := time.Sunday; i <= time.Saturday; i++ {
		name := strings.ToLower(i.String())
		if s == name || s == name[:3] {
			return i, nil
		}
	}
	return 0, errors.New("invalid weekday")
}

func parseDayOfMonth(s string) (int, error) {
	s, n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	lastDigit := n % 10
	forceTh := (n%100 - lastDigit) == 10

	var valid bool
	switch {
	case n < 1 || n > 31:
	case lastDigit == 1 && !forceTh:
		valid = s == "st"
	case lastDigit == 2 && !forceTh:
		valid = s == "nd"
	case lastDigit == 3 && !forceTh:
		valid = s == "rd"
	default:
		valid = s == "th"
	}
	if !valid {
		return 0, errors.New("invalid postfix")
	}
	return n, nil
}

// parseInt consumes the leading digits of s
func parseInt(s string) (string, int, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return s, 0, errors.New("failed to parse")
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return s, 0, err
	}
	return s[i:], n, nil
}
