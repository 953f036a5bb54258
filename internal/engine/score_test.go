package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperengineering/facet/internal/category"
)

func alloc(builder, contributor, integrator, experimenter float64) map[category.Category]float64 {
	return map[category.Category]float64{
		category.Builder:      builder,
		category.Contributor:  contributor,
		category.Integrator:   integrator,
		category.Experimenter: experimenter,
	}
}

func TestScore_PerfectMatch(t *testing.T) {
	report, err := Score(alloc(25, 25, 25, 25), nil)
	if err != nil {
		t.Fatal(err)
	}

	if report.Drift != 0 {
		t.Errorf("expected drift 0, got %v", report.Drift)
	}
	if report.Score != 100 {
		t.Errorf("expected score 100, got %v", report.Score)
	}
	if report.Grade != "A" || report.Status != "Excellent Balance" {
		t.Errorf("expected grade A / Excellent Balance, got %s / %s", report.Grade, report.Status)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("perfect balance should produce no recommendations, got %d", len(report.Recommendations))
	}
}

func TestScore_SevereConcentration(t *testing.T) {
	// drift = (35+10+5+20)/2 = 35 -> score = max(0, 60-(35-15)*4) = 0
	report, err := Score(alloc(60, 15, 20, 5), alloc(25, 25, 25, 25))
	if err != nil {
		t.Fatal(err)
	}

	if report.Drift != 35 {
		t.Errorf("expected drift 35, got %v", report.Drift)
	}
	if report.Score != 0 {
		t.Errorf("expected score 0, got %v", report.Score)
	}
	if report.Grade != "D" || report.Status != "Rebalancing Required" {
		t.Errorf("expected grade D / Rebalancing Required, got %s / %s", report.Grade, report.Status)
	}
}

func TestScore_PiecewiseBands(t *testing.T) {
	tests := []struct {
		name   string
		actual map[category.Category]float64
		drift  float64
		score  float64
		grade  string
	}{
		{"band edge drift 5", alloc(30, 25, 25, 20), 5, 90, "A"},
		{"band edge drift 10", alloc(35, 25, 25, 15), 10, 75, "B"},
		{"band edge drift 15", alloc(40, 25, 25, 10), 15, 60, "C"},
		{"past last band", alloc(41, 25, 25, 9), 16, 56, "D"},
		{"mid first band", alloc(27, 25, 25, 23), 2, 96, "A"},
		{"mid second band", alloc(32, 25, 25, 18), 7, 84, "B"},
		{"mid third band", alloc(37, 25, 25, 13), 12, 69, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Score(tt.actual, nil)
			if err != nil {
				t.Fatal(err)
			}
			if report.Drift != tt.drift {
				t.Errorf("drift = %v, expected %v", report.Drift, tt.drift)
			}
			if report.Score != tt.score {
				t.Errorf("score = %v, expected %v", report.Score, tt.score)
			}
			if report.Grade != tt.grade {
				t.Errorf("grade = %s, expected %s", report.Grade, tt.grade)
			}
		})
	}
}

func TestScore_MonotonicInDeviation(t *testing.T) {
	// Shift weight from experimenter to builder one point at a time; the
	// score must never increase.
	prev := math.Inf(1)
	for shift := 0.0; shift <= 25; shift++ {
		report, err := Score(alloc(25+shift, 25, 25, 25-shift), nil)
		if err != nil {
			t.Fatal(err)
		}
		if report.Score > prev {
			t.Fatalf("score increased from %v to %v at shift %v", prev, report.Score, shift)
		}
		prev = report.Score
	}
}

func TestScore_RecommendationOrdering(t *testing.T) {
	// builder 60 (concentration + overweight 35), contributor 14 (under 11),
	// integrator 22 (3, below threshold), experimenter 4 (under 21, missing).
	report, err := Score(alloc(60, 14, 22, 4), nil)
	if err != nil {
		t.Fatal(err)
	}

	expected := []struct {
		kind string
		cat  category.Category
	}{
		{"concentration_risk", category.Builder},
		{"overweight", category.Builder},
		{"underweight", category.Experimenter},
		{"underweight", category.Contributor},
		{"missing_category", category.Experimenter},
	}

	if len(report.Recommendations) != len(expected) {
		t.Fatalf("expected %d recommendations, got %d: %+v", len(expected), len(report.Recommendations), report.Recommendations)
	}
	for i, want := range expected {
		got := report.Recommendations[i]
		if got.Kind != want.kind || got.Category != want.cat {
			t.Errorf("recommendation %d: got %s/%s, expected %s/%s", i, got.Kind, got.Category, want.kind, want.cat)
		}
	}
}

func TestScore_DefaultsToEqualSplit(t *testing.T) {
	explicit, err := Score(alloc(40, 20, 20, 20), alloc(25, 25, 25, 25))
	if err != nil {
		t.Fatal(err)
	}
	defaulted, err := Score(alloc(40, 20, 20, 20), nil)
	if err != nil {
		t.Fatal(err)
	}
	if explicit.Score != defaulted.Score || explicit.Drift != defaulted.Drift {
		t.Errorf("nil target should behave as equal split: %+v vs %+v", explicit, defaulted)
	}
}

func TestScore_RejectsMalformedTargets(t *testing.T) {
	tests := []struct {
		name    string
		target  map[category.Category]float64
		wantErr error
	}{
		{
			"unknown category key",
			map[category.Category]float64{"observer": 100},
			ErrUnknownCategory,
		},
		{
			"negative share",
			map[category.Category]float64{category.Builder: 120, category.Contributor: -20},
			ErrInvalidAllocation,
		},
		{
			"does not sum to 100",
			alloc(30, 30, 30, 30),
			ErrInvalidAllocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(alloc(25, 25, 25, 25), tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestScore_RejectsUnknownActualKey(t *testing.T) {
	actual := map[category.Category]float64{"observer": 100}
	if _, err := Score(actual, nil); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestScore_MissingActualKeysTreatedAsZero(t *testing.T) {
	actual := map[category.Category]float64{category.Builder: 100}
	report, err := Score(actual, nil)
	if err != nil {
		t.Fatal(err)
	}
	// deviations: 75 + 25 + 25 + 25 = 150, drift = 75
	if report.Drift != 75 {
		t.Errorf("expected drift 75, got %v", report.Drift)
	}
	if report.Score != 0 || report.Grade != "D" {
		t.Errorf("expected floor score 0 grade D, got %v %s", report.Score, report.Grade)
	}
}
