package types

import (
	"encoding/json"
	"time"

	"github.com/hyperengineering/facet/internal/category"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	StatusPlanning  ProjectStatus = "planning"
	StatusActive    ProjectStatus = "active"
	StatusPaused    ProjectStatus = "paused"
	StatusCompleted ProjectStatus = "completed"
	StatusArchived  ProjectStatus = "archived"
)

// ProjectStatuses lists the valid lifecycle states.
var ProjectStatuses = []string{
	string(StatusPlanning),
	string(StatusActive),
	string(StatusPaused),
	string(StatusCompleted),
	string(StatusArchived),
}

// Project represents a user project that time is logged against.
type Project struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	LegacyType        string            `json:"type,omitempty"`
	Status            ProjectStatus     `json:"status"`
	Category          category.Category `json:"category"`
	CategoryAlignment int               `json:"category_alignment"`
	TotalHoursLogged  float64           `json:"total_hours_logged"`
	TargetHours       *float64          `json:"target_hours,omitempty"`
	LastWorkedAt      *time.Time        `json:"last_worked_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewProject is the input type for creating a project.
type NewProject struct {
	Name              string            `json:"name"`
	LegacyType        string            `json:"type,omitempty"`
	Status            ProjectStatus     `json:"status"`
	Category          category.Category `json:"category"`
	CategoryAlignment int               `json:"category_alignment"`
	TargetHours       *float64          `json:"target_hours,omitempty"`
}

// ProjectUpdate carries a partial update; nil fields are left unchanged.
type ProjectUpdate struct {
	Name              *string            `json:"name,omitempty"`
	Status            *ProjectStatus     `json:"status,omitempty"`
	Category          *category.Category `json:"category,omitempty"`
	CategoryAlignment *int               `json:"category_alignment,omitempty"`
	TargetHours       *float64           `json:"target_hours,omitempty"`
}

// TimeLog represents a single logged block of time against a project.
// A time log's category is indirect: it is whatever category its project
// currently holds, resolved at aggregation time.
type TimeLog struct {
	ID                  string    `json:"id"`
	ProjectID           string    `json:"project_id"`
	Date                time.Time `json:"date"`
	Duration            float64   `json:"duration"`
	ActivityType        string    `json:"activity_type,omitempty"`
	EnergyLevel         *int      `json:"energy_level,omitempty"`
	ProductivityFeeling *int      `json:"productivity_feeling,omitempty"`
	EnjoymentLevel      *int      `json:"enjoyment_level,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewTimeLog is the input type for creating a time log.
type NewTimeLog struct {
	ProjectID           string    `json:"project_id"`
	Date                time.Time `json:"date"`
	Duration            float64   `json:"duration"`
	ActivityType        string    `json:"activity_type,omitempty"`
	EnergyLevel         *int      `json:"energy_level,omitempty"`
	ProductivityFeeling *int      `json:"productivity_feeling,omitempty"`
	EnjoymentLevel      *int      `json:"enjoyment_level,omitempty"`
	Notes               string    `json:"notes,omitempty"`
}

// TimeLogUpdate carries a partial update; nil fields are left unchanged.
// A duration change applies a compensating delta to the owning project's
// running total.
type TimeLogUpdate struct {
	Date                *time.Time `json:"date,omitempty"`
	Duration            *float64   `json:"duration,omitempty"`
	ActivityType        *string    `json:"activity_type,omitempty"`
	EnergyLevel         *int       `json:"energy_level,omitempty"`
	ProductivityFeeling *int       `json:"productivity_feeling,omitempty"`
	EnjoymentLevel      *int       `json:"enjoyment_level,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}

// EntryType classifies a journal entry.
type EntryType string

const (
	EntryGeneral    EntryType = "general"
	EntryReflection EntryType = "reflection"
	EntryLearning   EntryType = "learning"
	EntryDecision   EntryType = "decision"
	EntryMilestone  EntryType = "milestone"
	EntryStruggle   EntryType = "struggle"
	EntryIdea       EntryType = "idea"
)

// EntryTypes lists the valid journal entry types.
var EntryTypes = []string{
	string(EntryGeneral),
	string(EntryReflection),
	string(EntryLearning),
	string(EntryDecision),
	string(EntryMilestone),
	string(EntryStruggle),
	string(EntryIdea),
}

// JournalEntry represents a dated free-text journal record. The insight
// engine reads these as a signal source only.
type JournalEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	ProjectID string    `json:"project_id,omitempty"`
	EntryType EntryType `json:"entry_type"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment,omitempty"`
	Favorite  bool      `json:"favorite"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NewJournalEntry is the input type for creating a journal entry.
type NewJournalEntry struct {
	Date      time.Time `json:"date"`
	ProjectID string    `json:"project_id,omitempty"`
	EntryType EntryType `json:"entry_type"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment,omitempty"`
	Favorite  bool      `json:"favorite"`
	Tags      []string  `json:"tags,omitempty"`
}

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightBalance     InsightType = "balance"
	InsightPattern     InsightType = "pattern"
	InsightSuggestion  InsightType = "suggestion"
	InsightAlert       InsightType = "alert"
	InsightAchievement InsightType = "achievement"
	InsightMilestone   InsightType = "milestone"
)

// Priority orders insights for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sortable weight; higher sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Feedback is the user's verdict on an insight.
type Feedback string

const (
	FeedbackHelpful    Feedback = "helpful"
	FeedbackNotHelpful Feedback = "not-helpful"
)

// Insight represents one generated observation about the user's activity.
// Created only by the insight generator; mutated only by the lifecycle
// operations. Dismissed and ActedOn are independent flags and may both be
// set.
type Insight struct {
	ID               string         `json:"id"`
	Type             InsightType    `json:"type"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Confidence       float64        `json:"confidence"`
	Priority         Priority       `json:"priority"`
	Actionable       bool           `json:"actionable"`
	SuggestedActions []string       `json:"suggested_actions"`
	BasedOn          map[string]any `json:"based_on,omitempty"`
	GeneratedAt      time.Time      `json:"generated_at"`
	ValidUntil       *time.Time     `json:"valid_until,omitempty"`
	Dismissed        bool           `json:"dismissed"`
	DismissReason    string         `json:"dismiss_reason,omitempty"`
	DismissedAt      *time.Time     `json:"dismissed_at,omitempty"`
	ActedOn          bool           `json:"acted_on"`
	ActedOnAt        *time.Time     `json:"acted_on_at,omitempty"`
	Feedback         Feedback       `json:"feedback,omitempty"`
}

// Portfolio is the singleton per-user balance state: the target allocation
// plus the most recently computed actuals. Actuals are recomputed from the
// full record set on demand, never incrementally maintained.
type Portfolio struct {
	TargetAllocation map[category.Category]float64 `json:"target_allocation"`
	ActualAllocation map[category.Category]float64 `json:"actual_allocation,omitempty"`
	TotalHours       float64                       `json:"total_hours"`
	Score            float64                       `json:"score"`
	Grade            string                        `json:"grade,omitempty"`
	LastCalculatedAt *time.Time                    `json:"last_calculated_at,omitempty"`
}

// Snapshot is the engine's read view of the store: every record needed for
// one aggregation/scoring/insight pass, fetched wholesale.
type Snapshot struct {
	Projects       []Project      `json:"projects"`
	TimeLogs       []TimeLog      `json:"time_logs"`
	JournalEntries []JournalEntry `json:"journal_entries"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ProjectCount int64  `json:"project_count"`
	TimeLogCount int64  `json:"time_log_count"`
}

// MarshalJSON ensures nil slices in Insight marshal as [] not null.
func (i Insight) MarshalJSON() ([]byte, error) {
	if i.SuggestedActions == nil {
		i.SuggestedActions = []string{}
	}
	type Alias Insight
	return json.Marshal(Alias(i))
}

// MarshalJSON ensures nil Tags in JournalEntry marshal as [] not null.
func (j JournalEntry) MarshalJSON() ([]byte, error) {
	if j.Tags == nil {
		j.Tags = []string{}
	}
	type Alias JournalEntry
	return json.Marshal(Alias(j))
}
