package timeinput

import (
	"errors"
	"sort"
	"strings"

	"github.com/td0m/rememo/pkg/task/date"
)

var ErrEmpty = errors.New("no times given")

// Parse reads a list of times separated by commas or spaces, e.g. "9:00, 21:30".
// The result is normalised to sorted, unique "HH:MM" strings
func Parse(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, ErrEmpty
	}
	seen := map[string]bool{}
	out := []string{}
	for _, f := range fields {
		c, err := date.ParseClock(f)
		if err != nil {
			return nil, err
		}
		if v := c.String(); !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}
