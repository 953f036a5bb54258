package engine

import (
	"fmt"
	"math"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
)

// Aggregate is the result of bucketing logged time by category over a window.
//
// TotalHours covers only time attributable to a known category; UnknownHours
// collects logs whose project no longer exists (or carries no valid
// category) and is excluded from percentage math so the percentages still
// sum to 100.
type Aggregate struct {
	Window              Window                        `json:"-"`
	CategoryHours       map[category.Category]float64 `json:"category_hours"`
	CategoryPercentages map[category.Category]float64 `json:"category_percentages"`
	TotalHours          float64                       `json:"total_hours"`
	UnknownHours        float64                       `json:"unknown_hours"`
	LogCount            int                           `json:"log_count"`
}

// AggregateLogs buckets time logs by their project's current category over
// the given window and derives percentage allocations.
//
// Logs referencing a missing project accumulate under UnknownHours rather
// than failing: project deletion legitimately leaves dangling references.
// Malformed durations (negative, NaN, Inf) reject the whole call before any
// accumulation so callers never see partial results.
func AggregateLogs(logs []types.TimeLog, projects []types.Project, w Window) (*Aggregate, error) {
	for _, l := range logs {
		if l.Duration < 0 || math.IsNaN(l.Duration) || math.IsInf(l.Duration, 0) {
			return nil, fmt.Errorf("time log %s: %w: duration %v", l.ID, ErrMalformedDuration, l.Duration)
		}
	}

	byID := make(map[string]types.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	agg := &Aggregate{
		Window:              w,
		CategoryHours:       make(map[category.Category]float64, category.Count),
		CategoryPercentages: make(map[category.Category]float64, category.Count),
	}
	for _, c := range category.All() {
		agg.CategoryHours[c] = 0
		agg.CategoryPercentages[c] = 0
	}

	for _, l := range logs {
		if !w.Contains(l.Date) {
			continue
		}
		agg.LogCount++

		p, ok := byID[l.ProjectID]
		if !ok || !category.Valid(p.Category) {
			agg.UnknownHours += l.Duration
			continue
		}
		agg.CategoryHours[p.Category] += l.Duration
		agg.TotalHours += l.Duration
	}

	// Zero logged time yields a zero vector, never NaN.
	if agg.TotalHours > 0 {
		for c, h := range agg.CategoryHours {
			agg.CategoryPercentages[c] = h / agg.TotalHours * 100
		}
	}

	return agg, nil
}
