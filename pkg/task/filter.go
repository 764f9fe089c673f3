package task

import (
	"errors"
	"fmt"
)

// EffortFilter narrows history down by outcome
type EffortFilter int

const (
	AllEfforts EffortFilter = iota
	CompletedEfforts
	MissedEfforts
)

var ErrUnknownFilter = errors.New("unknown effort filter")

var filterNames = []string{"all", "done", "skipped"}

func (f EffortFilter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("EffortFilter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseEffortFilter accepts all, done or skipped. An empty string means all
func ParseEffortFilter(s string) (EffortFilter, error) {
	if s == "" {
		return AllEfforts, nil
	}
	for i, name := range filterNames {
		if s == name {
			return EffortFilter(i), nil
		}
	}
	return AllEfforts, fmt.Errorf("%w: %q, want one of all, done, skipped", ErrUnknownFilter, s)
}

// Next cycles through the filters, wrapping back to all
func (f EffortFilter) Next() EffortFilter {
	return (f + 1) % EffortFilter(len(filterNames))
}

// Apply returns the entries the filter keeps, in their original order
func (f EffortFilter) Apply(history []EffortHistory) []EffortHistory {
	if f == AllEfforts {
		return history
	}
	kept := make([]EffortHistory, 0, len(history))
	for _, h := range history {
		if h.Completed == (f == CompletedEfforts) {
			kept = append(kept, h)
		}
	}
	return kept
}
