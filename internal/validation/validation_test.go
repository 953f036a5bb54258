package validation

import (
	"math"
	"testing"
	"time"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
)

func intPtr(v int) *int { return &v }

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"positive", 1.5, true},
		{"small positive", 0.25, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"nan", math.NaN(), false},
		{"infinity", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration("duration", tt.value)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateDuration(%v): valid=%v, expected %v", tt.value, err == nil, tt.valid)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	if err := ValidateRating("energy_level", nil); err != nil {
		t.Error("absent rating should be valid")
	}
	if err := ValidateRating("energy_level", intPtr(3)); err != nil {
		t.Error("rating 3 should be valid")
	}
	if err := ValidateRating("energy_level", intPtr(0)); err == nil {
		t.Error("rating 0 should be rejected")
	}
	if err := ValidateRating("energy_level", intPtr(6)); err == nil {
		t.Error("rating 6 should be rejected")
	}
}

func TestValidateULID(t *testing.T) {
	if err := ValidateULID("id", "01ARZ3NDEKTSV4RRFFQ69G5FAV"); err != nil {
		t.Errorf("valid ULID rejected: %v", err)
	}
	if err := ValidateULID("id", "short"); err == nil {
		t.Error("short string accepted as ULID")
	}
	if err := ValidateULID("id", "01ARZ3NDEKTSV4RRFFQ69G5FAI"); err == nil {
		t.Error("ULID containing I accepted")
	}
}

func TestValidateNewTimeLog(t *testing.T) {
	valid := types.NewTimeLog{
		ProjectID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Date:      time.Now().UTC(),
		Duration:  2,
	}
	if errs := ValidateNewTimeLog(valid); len(errs) != 0 {
		t.Errorf("valid log rejected: %+v", errs)
	}

	invalid := types.NewTimeLog{
		ProjectID:   "nope",
		Duration:    -2,
		EnergyLevel: intPtr(9),
	}
	errs := ValidateNewTimeLog(invalid)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"project_id", "date", "duration", "energy_level"} {
		if !fields[f] {
			t.Errorf("expected error on %s, got %+v", f, errs)
		}
	}
}

func TestValidateNewProject(t *testing.T) {
	valid := types.NewProject{
		Name:              "Reading Group",
		Status:            types.StatusPlanning,
		Category:          category.Contributor,
		CategoryAlignment: 70,
	}
	if errs := ValidateNewProject(valid); len(errs) != 0 {
		t.Errorf("valid project rejected: %+v", errs)
	}

	invalid := types.NewProject{
		Name:              "  ",
		Status:            "launched",
		Category:          "observer",
		CategoryAlignment: 130,
	}
	errs := ValidateNewProject(invalid)
	if len(errs) < 4 {
		t.Errorf("expected at least 4 errors, got %+v", errs)
	}
}

func TestValidateNewJournalEntry(t *testing.T) {
	valid := types.NewJournalEntry{
		Date:      time.Now().UTC(),
		EntryType: types.EntryReflection,
		Content:   "a thought",
	}
	if errs := ValidateNewJournalEntry(valid); len(errs) != 0 {
		t.Errorf("valid entry rejected: %+v", errs)
	}

	invalid := types.NewJournalEntry{EntryType: "rant"}
	errs := ValidateNewJournalEntry(invalid)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"date", "entry_type", "content"} {
		if !fields[f] {
			t.Errorf("expected error on %s, got %+v", f, errs)
		}
	}
}

func TestValidateFeedback(t *testing.T) {
	if errs := ValidateFeedback(types.FeedbackHelpful); len(errs) != 0 {
		t.Errorf("helpful rejected: %+v", errs)
	}
	if errs := ValidateFeedback("meh"); len(errs) == 0 {
		t.Error("unknown feedback accepted")
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() {
		t.Error("fresh collector should have no errors")
	}
	c.Add(nil)
	if c.HasErrors() {
		t.Error("nil error should not count")
	}
	c.Add(&ValidationError{Field: "x", Message: "bad"})
	if !c.HasErrors() || len(c.Errors()) != 1 {
		t.Error("collector should hold one error")
	}
}
