package store

import (
	"context"
	"time"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
)

// Store defines the persistence contract for all activity records and the
// insight lifecycle.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p types.NewProject) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context) ([]types.Project, error)
	UpdateProject(ctx context.Context, id string, u types.ProjectUpdate) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	BackfillCategories(ctx context.Context) (int64, error)

	// Time logs
	CreateTimeLog(ctx context.Context, l types.NewTimeLog) (*types.TimeLog, error)
	GetTimeLog(ctx context.Context, id string) (*types.TimeLog, error)
	ListTimeLogs(ctx context.Context, since *time.Time) ([]types.TimeLog, error)
	UpdateTimeLog(ctx context.Context, id string, u types.TimeLogUpdate) (*types.TimeLog, error)
	DeleteTimeLog(ctx context.Context, id string) error

	// Journal
	CreateJournalEntry(ctx context.Context, e types.NewJournalEntry) (*types.JournalEntry, error)
	ListJournalEntries(ctx context.Context) ([]types.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id string) error

	// Engine input
	Snapshot(ctx context.Context) (*types.Snapshot, error)

	// Insight lifecycle
	SaveInsights(ctx context.Context, insights []types.Insight) ([]types.Insight, error)
	ListActiveInsights(ctx context.Context, now time.Time) ([]types.Insight, error)
	DismissInsight(ctx context.Context, id, reason string, now time.Time) error
	MarkInsightActedOn(ctx context.Context, id string, now time.Time) error
	SetInsightFeedback(ctx context.Context, id string, fb types.Feedback) error
	PurgeOldDismissed(ctx context.Context, maxAge time.Duration, now time.Time) (int64, error)

	// Portfolio
	GetPortfolio(ctx context.Context) (*types.Portfolio, error)
	UpdateTargetAllocation(ctx context.Context, target map[category.Category]float64) error
	SavePortfolioSnapshot(ctx context.Context, actual map[category.Category]float64, totalHours, score float64, grade string, at time.Time) error

	// Health
	Counts(ctx context.Context) (projects, timeLogs int64, err error)

	Close() error
}
