package analytics

import (
	"slices"
	"strings"
	"time"

	"civic-insight/internal/record"
)

// FilterSpec is the raw, possibly partial filter input supplied by a caller.
// Dates left nil fall back to the caller-supplied defaults in Resolve; the
// engine never guesses a "current" window on its own.
type FilterSpec struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Wards      []string   `json:"wards,omitempty"`
	Department string     `json:"department,omitempty"`
	Category   string     `json:"category,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// Filter is the canonical, fully-resolved predicate every detector consumes.
// Wards is deduplicated and sorted; an empty set means "all wards".
type Filter struct {
	Start      time.Time `json:"start_date"`
	End        time.Time `json:"end_date"`
	Wards      []string  `json:"wards"`
	Department string    `json:"department,omitempty"`
	Category   string    `json:"category,omitempty"`
	Source     string    `json:"source,omitempty"`
}

// SpanDays returns the number of calendar days covered by the filter,
// inclusive of both endpoints.
func (f Filter) SpanDays() int {
	return int(f.End.Sub(f.Start).Hours()/24) + 1
}

// Resolve normalizes a raw spec into a canonical Filter. Missing dates take
// the supplied defaults. Pure function: the spec is never modified.
func Resolve(spec FilterSpec, defaultStart, defaultEnd time.Time) (Filter, error) {
	start := defaultStart
	if spec.StartDate != nil {
		start = *spec.StartDate
	}
	end := defaultEnd
	if spec.EndDate != nil {
		end = *spec.EndDate
	}

	start = truncateToDay(start)
	end = truncateToDay(end)

	if start.After(end) {
		return Filter{}, ErrInvalidRange
	}

	// Dedup wards while preserving a deterministic order. Unknown ward names
	// pass through unfiltered; the store is the source of truth.
	seen := make(map[string]bool)
	var wards []string
	for _, w := range spec.Wards {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		wards = append(wards, w)
	}
	slices.Sort(wards)

	return Filter{
		Start:      start,
		End:        end,
		Wards:      wards,
		Department: strings.TrimSpace(spec.Department),
		Category:   strings.TrimSpace(spec.Category),
		Source:     strings.TrimSpace(spec.Source),
	}, nil
}

// Apply returns the records matching the filter. The input slice is read-only;
// the result is a fresh slice sharing the underlying records.
func Apply(f Filter, records []record.Grievance) []record.Grievance {
	wardSet := make(map[string]bool, len(f.Wards))
	for _, w := range f.Wards {
		wardSet[w] = true
	}

	var out []record.Grievance
	for _, g := range records {
		if g.CreatedDate.IsZero() {
			continue
		}
		d := truncateToDay(g.CreatedDate)
		if d.Before(f.Start) || d.After(f.End) {
			continue
		}
		if len(wardSet) > 0 && !wardSet[g.WardKey()] {
			continue
		}
		if f.Department != "" && !strings.EqualFold(strings.TrimSpace(g.Department), f.Department) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(g.CategoryKey(), f.Category) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
