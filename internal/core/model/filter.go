package model

import (
	"fmt"
	"strings"
	"time"
)

// FilterCriteria is the declarative filter produced by the query translator or
// posted directly. Empty fields are not applied.
type FilterCriteria struct {
	Companies []string `json:"companies,omitempty"`
	Positions []string `json:"positions,omitempty"`
	Location  string   `json:"location,omitempty"`
	MinDegree int      `json:"min_degree,omitempty"`
	DateFrom  string   `json:"date_from,omitempty"`
	DateTo    string   `json:"date_to,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (f FilterCriteria) IsEmpty() bool {
	return len(nonBlank(f.Companies)) == 0 && len(nonBlank(f.Positions)) == 0 &&
		strings.TrimSpace(f.Location) == "" && f.MinDegree <= 0 &&
		f.DateFrom == "" && f.DateTo == ""
}

// DateRange parses the optional date bounds.
func (f FilterCriteria) DateRange() (from, to *time.Time, err error) {
	if f.DateFrom != "" {
		t, err := ParseDate(f.DateFrom)
		if err != nil {
			return nil, nil, NewError(KindInvalidInput, "filter", "", fmt.Errorf("date_from: %w", err))
		}
		from = &t
	}
	if f.DateTo != "" {
		t, err := ParseDate(f.DateTo)
		if err != nil {
			return nil, nil, NewError(KindInvalidInput, "filter", "", fmt.Errorf("date_to: %w", err))
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, NewError(KindInvalidInput, "filter", "", fmt.Errorf("date_to before date_from"))
	}
	return from, to, nil
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
