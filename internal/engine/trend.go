package engine

import (
	"time"

	"github.com/hyperengineering/facet/internal/types"
)

// TrendWeeks is the number of rolling 7-day buckets in the weekly trend view.
const TrendWeeks = 4

// WeeklyTrend aggregates logs into TrendWeeks rolling 7-day buckets anchored
// to now, oldest first. Buckets are elapsed-time windows stepped back 7 days
// at a time, not calendar weeks, so the newest bucket always ends at the
// current moment.
func WeeklyTrend(logs []types.TimeLog, projects []types.Project, now time.Time) ([]*Aggregate, error) {
	buckets := make([]*Aggregate, 0, TrendWeeks)
	for i := TrendWeeks - 1; i >= 0; i-- {
		end := now.Add(-time.Duration(i) * 7 * 24 * time.Hour)
		agg, err := AggregateLogs(logs, projects, LastNDays(7, end))
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, agg)
	}
	return buckets, nil
}
