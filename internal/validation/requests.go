package validation

import (
	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
)

const (
	maxNameLength    = 200
	maxNotesLength   = 5000
	maxContentLength = 20000
)

func validateCategory(field string, c category.Category) *ValidationError {
	if !category.Valid(c) {
		return &ValidationError{
			Field:   field,
			Message: "must be a known perspective category",
		}
	}
	return nil
}

// ValidateNewProject checks a project creation request.
func ValidateNewProject(p types.NewProject) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("name", p.Name))
	c.Add(ValidateUTF8("name", p.Name))
	c.Add(ValidateMaxLength("name", p.Name, maxNameLength))
	if p.Status != "" {
		c.Add(ValidateEnum("status", string(p.Status), types.ProjectStatuses))
	}
	if p.Category != "" {
		c.Add(validateCategory("category", p.Category))
	}
	c.Add(ValidateRange("category_alignment", float64(p.CategoryAlignment), 0, 100))
	if p.TargetHours != nil {
		c.Add(ValidateDuration("target_hours", *p.TargetHours))
	}
	return c.Errors()
}

// ValidateProjectUpdate checks a partial project update.
func ValidateProjectUpdate(u types.ProjectUpdate) []ValidationError {
	var c Collector
	if u.Name != nil {
		c.Add(ValidateRequired("name", *u.Name))
		c.Add(ValidateMaxLength("name", *u.Name, maxNameLength))
	}
	if u.Status != nil {
		c.Add(ValidateEnum("status", string(*u.Status), types.ProjectStatuses))
	}
	if u.Category != nil {
		c.Add(validateCategory("category", *u.Category))
	}
	if u.CategoryAlignment != nil {
		c.Add(ValidateRange("category_alignment", float64(*u.CategoryAlignment), 0, 100))
	}
	if u.TargetHours != nil {
		c.Add(ValidateDuration("target_hours", *u.TargetHours))
	}
	return c.Errors()
}

// ValidateNewTimeLog checks a time log creation request.
func ValidateNewTimeLog(l types.NewTimeLog) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("project_id", l.ProjectID))
	c.Add(ValidateULID("project_id", l.ProjectID))
	if l.Date.IsZero() {
		c.Add(&ValidationError{Field: "date", Message: "is required"})
	}
	c.Add(ValidateDuration("duration", l.Duration))
	c.Add(ValidateRating("energy_level", l.EnergyLevel))
	c.Add(ValidateRating("productivity_feeling", l.ProductivityFeeling))
	c.Add(ValidateRating("enjoyment_level", l.EnjoymentLevel))
	c.Add(ValidateMaxLength("notes", l.Notes, maxNotesLength))
	return c.Errors()
}

// ValidateTimeLogUpdate checks a partial time log update.
func ValidateTimeLogUpdate(u types.TimeLogUpdate) []ValidationError {
	var c Collector
	if u.Duration != nil {
		c.Add(ValidateDuration("duration", *u.Duration))
	}
	c.Add(ValidateRating("energy_level", u.EnergyLevel))
	c.Add(ValidateRating("productivity_feeling", u.ProductivityFeeling))
	c.Add(ValidateRating("enjoyment_level", u.EnjoymentLevel))
	if u.Notes != nil {
		c.Add(ValidateMaxLength("notes", *u.Notes, maxNotesLength))
	}
	return c.Errors()
}

// ValidateNewJournalEntry checks a journal entry creation request.
func ValidateNewJournalEntry(e types.NewJournalEntry) []ValidationError {
	var c Collector
	if e.Date.IsZero() {
		c.Add(&ValidationError{Field: "date", Message: "is required"})
	}
	if e.ProjectID != "" {
		c.Add(ValidateULID("project_id", e.ProjectID))
	}
	if e.EntryType != "" {
		c.Add(ValidateEnum("entry_type", string(e.EntryType), types.EntryTypes))
	}
	c.Add(ValidateRequired("content", e.Content))
	c.Add(ValidateUTF8("content", e.Content))
	c.Add(ValidateMaxLength("content", e.Content, maxContentLength))
	return c.Errors()
}

// ValidateFeedback checks an insight feedback value.
func ValidateFeedback(fb types.Feedback) []ValidationError {
	var c Collector
	c.Add(ValidateEnum("feedback", string(fb), []string{
		string(types.FeedbackHelpful),
		string(types.FeedbackNotHelpful),
	}))
	return c.Errors()
}
