package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/hyperengineering/facet/internal/category"
)

// Allocation drift beyond which a single category earns its own
// rebalancing recommendation, in percentage points.
const deviationRecommendThreshold = 10

// Deviation describes how far one category sits from its target share.
type Deviation struct {
	Category  category.Category `json:"category"`
	Actual    float64           `json:"actual"`
	Target    float64           `json:"target"`
	Deviation float64           `json:"deviation"`
	Direction string            `json:"direction"` // "over" or "under"
}

// Recommendation is a structured rebalancing suggestion.
type Recommendation struct {
	Kind       string            `json:"kind"` // concentration_risk, overweight, underweight, missing_category
	Category   category.Category `json:"category,omitempty"`
	Adjustment float64           `json:"adjustment,omitempty"` // percentage points toward target
	Message    string            `json:"message"`
}

// BalanceReport is the scorer's output bundle.
type BalanceReport struct {
	Score           float64          `json:"score"`
	Drift           float64          `json:"drift"`
	Grade           string           `json:"grade"`
	Status          string           `json:"status"`
	Deviations      []Deviation      `json:"deviations"`
	Recommendations []Recommendation `json:"recommendations"`
}

// EqualSplit returns the default target allocation: 100/N per category.
func EqualSplit() map[category.Category]float64 {
	target := make(map[category.Category]float64, category.Count)
	for _, c := range category.All() {
		target[c] = 100.0 / category.Count
	}
	return target
}

// ValidateAllocation rejects allocations with unknown category keys,
// negative values, or a total meaningfully away from 100.
func ValidateAllocation(alloc map[category.Category]float64) error {
	var sum float64
	for c, v := range alloc {
		if !category.Valid(c) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidAllocation, c, v)
		}
		sum += v
	}
	if math.Abs(sum-100) > 1e-6 {
		return fmt.Errorf("%w: sum = %v", ErrInvalidAllocation, sum)
	}
	return nil
}

// Score compares an actual allocation against a target and produces a
// balance score with grade, per-category deviations, and recommendations.
//
// A nil target means the default equal split. Drift is the standard
// allocation-drift convention: half the sum of absolute deviations, so a
// symmetric over/under shift is counted once. The score is piecewise linear
// in drift: lenient near perfect balance, steep under heavy concentration.
func Score(actual, target map[category.Category]float64) (*BalanceReport, error) {
	if target == nil {
		target = EqualSplit()
	}
	if err := ValidateAllocation(target); err != nil {
		return nil, fmt.Errorf("target allocation: %w", err)
	}
	for c := range actual {
		if !category.Valid(c) {
			return nil, fmt.Errorf("actual allocation: %w: %q", ErrUnknownCategory, c)
		}
	}

	deviations := make([]Deviation, 0, category.Count)
	var driftSum float64
	for _, c := range category.All() {
		a := actual[c]
		t := target[c]
		d := math.Abs(a - t)
		driftSum += d

		direction := "over"
		if a < t {
			direction = "under"
		}
		deviations = append(deviations, Deviation{
			Category:  c,
			Actual:    a,
			Target:    t,
			Deviation: d,
			Direction: direction,
		})
	}
	drift := driftSum / 2

	score := scoreForDrift(drift)
	score = math.Round(score*10) / 10

	grade, status := gradeFor(score)

	return &BalanceReport{
		Score:           score,
		Drift:           drift,
		Grade:           grade,
		Status:          status,
		Deviations:      deviations,
		Recommendations: buildRecommendations(actual, deviations),
	}, nil
}

// scoreForDrift maps drift (percentage points) to a 0-100 score. The bands
// meet at their boundaries: 5→90, 10→75, 15→60.
func scoreForDrift(drift float64) float64 {
	switch {
	case drift <= 5:
		return 100 - drift*2
	case drift <= 10:
		return 90 - (drift-5)*3
	case drift <= 15:
		return 75 - (drift-10)*3
	default:
		return math.Max(0, 60-(drift-15)*4)
	}
}

// gradeFor maps a rounded score to the canonical grade and status label.
func gradeFor(score float64) (string, string) {
	switch {
	case score >= 90:
		return "A", "Excellent Balance"
	case score >= 75:
		return "B", "Good Balance"
	case score >= 60:
		return "C", "Needs Attention"
	default:
		return "D", "Rebalancing Required"
	}
}

// buildRecommendations assembles the ordered recommendation list:
// concentration risk first, then per-category over/under-weight sorted by
// descending deviation, then missing-category items.
func buildRecommendations(actual map[category.Category]float64, deviations []Deviation) []Recommendation {
	recs := []Recommendation{}

	for _, c := range category.All() {
		if actual[c] > 50 {
			info, _ := category.Lookup(c)
			recs = append(recs, Recommendation{
				Kind:     "concentration_risk",
				Category: c,
				Message: fmt.Sprintf("%s holds %.1f%% of your logged time; more than half your portfolio rides on one perspective",
					info.Label, actual[c]),
			})
		}
	}

	overUnder := make([]Deviation, 0, len(deviations))
	for _, d := range deviations {
		if d.Deviation > deviationRecommendThreshold {
			overUnder = append(overUnder, d)
		}
	}
	// Stable sort keeps canonical category order for equal deviations.
	sort.SliceStable(overUnder, func(i, j int) bool {
		return overUnder[i].Deviation > overUnder[j].Deviation
	})
	for _, d := range overUnder {
		info, _ := category.Lookup(d.Category)
		kind := "overweight"
		verb := "reduce"
		if d.Direction == "under" {
			kind = "underweight"
			verb = "grow"
		}
		recs = append(recs, Recommendation{
			Kind:       kind,
			Category:   d.Category,
			Adjustment: d.Deviation,
			Message: fmt.Sprintf("%s is %s target by %.1f points; %s it to reach %.1f%%",
				info.Label, kind, d.Deviation, verb, d.Target),
		})
	}

	for _, c := range category.All() {
		if actual[c] < 5 {
			info, _ := category.Lookup(c)
			recs = append(recs, Recommendation{
				Kind:     "missing_category",
				Category: c,
				Message: fmt.Sprintf("%s is nearly absent at %.1f%%; even a small weekly block keeps the perspective alive",
					info.Label, actual[c]),
			})
		}
	}

	return recs
}
