package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/types"
)

// Thresholds for the insight rule battery. Percentages are compared against
// un-rounded aggregator output so display rounding can't flap a rule on or
// off.
const (
	overconcentrationPct   = 70.0
	overconcentrationHours = 10.0
	missingCategoryHours   = 5.0
	neglectWindowDays      = 14
	neglectMinHours        = 10.0
	balancedLowPct         = 15.0
	balancedHighPct        = 35.0
	balancedMinHours       = 20.0
	balancedMinCategories  = 3
	dormantAfter           = 14 * 24 * time.Hour
	lowActivityWeekHours   = 5.0
	lowActivityMinLogs     = 10
	journalGapMinEntries   = 5
	balancedExpiry         = 7 * 24 * time.Hour
	milestoneExpiry        = 3 * 24 * time.Hour
)

// GenerateInsights runs the fixed rule battery over the record sets and
// returns zero or more insights in rule order. Pure function of its inputs
// and now: no mutation, no I/O, no IDs assigned (persistence is the
// caller's job, and the store owns ID generation).
func GenerateInsights(logs []types.TimeLog, projects []types.Project, entries []types.JournalEntry, now time.Time) ([]types.Insight, error) {
	allTime, err := AggregateLogs(logs, projects, AllTime())
	if err != nil {
		return nil, err
	}
	last14, err := AggregateLogs(logs, projects, LastNDays(neglectWindowDays, now))
	if err != nil {
		return nil, err
	}
	last7, err := AggregateLogs(logs, projects, LastNDays(7, now))
	if err != nil {
		return nil, err
	}

	insights := []types.Insight{}
	appendIf := func(in *types.Insight) {
		if in != nil {
			in.GeneratedAt = now
			insights = append(insights, *in)
		}
	}

	appendIf(overconcentrationInsight(allTime))
	appendIf(missingCategoryInsight(allTime))
	appendIf(neglectInsight(allTime, last14))
	appendIf(balancedPortfolioInsight(allTime, now))
	appendIf(dormantProjectsInsight(projects, now))
	appendIf(lowActivityWeekInsight(allTime, last7, len(logs)))
	appendIf(journalGapInsight(entries, now))
	appendIf(milestoneInsight(entries, now))

	return insights, nil
}

// overconcentrationInsight fires when a single category dominates the
// all-time allocation. At most one category can exceed the threshold since
// percentages sum to 100.
func overconcentrationInsight(allTime *Aggregate) *types.Insight {
	if allTime.TotalHours <= overconcentrationHours {
		return nil
	}
	for _, c := range category.All() {
		pct := allTime.CategoryPercentages[c]
		if pct <= overconcentrationPct {
			continue
		}
		info, _ := category.Lookup(c)
		pair := category.Complementary(c)
		first, _ := category.Lookup(pair[0])
		second, _ := category.Lookup(pair[1])
		return &types.Insight{
			Type:        types.InsightBalance,
			Priority:    types.PriorityMedium,
			Confidence:  0.85,
			Title:       fmt.Sprintf("%s dominates your portfolio", info.Label),
			Description: fmt.Sprintf("%s accounts for %.0f%% of your logged time. Shifting some attention toward %s or %s would spread the load.", info.Label, pct, first.Label, second.Label),
			Actionable:  true,
			SuggestedActions: []string{
				fmt.Sprintf("Schedule a %s block this week", first.Label),
				fmt.Sprintf("Pick one small %s activity", second.Label),
			},
			BasedOn: map[string]any{
				"category":   string(c),
				"percentage": pct,
				"totalHours": allTime.TotalHours,
			},
		}
	}
	return nil
}

// missingCategoryInsight groups every zero-allocation category into a single
// suggestion once there is enough logged time for the absence to mean
// something.
func missingCategoryInsight(allTime *Aggregate) *types.Insight {
	if allTime.TotalHours <= missingCategoryHours {
		return nil
	}
	var missing []category.Category
	for _, c := range category.All() {
		if allTime.CategoryPercentages[c] == 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var names []string
	var actions []string
	for _, c := range missing {
		info, _ := category.Lookup(c)
		names = append(names, info.Label)
		if len(info.Examples) > 0 {
			actions = append(actions, fmt.Sprintf("%s: %s", info.Label, info.Examples[0]))
		}
	}
	return &types.Insight{
		Type:             types.InsightSuggestion,
		Priority:         types.PriorityLow,
		Confidence:       0.7,
		Title:            "Untouched perspectives",
		Description:      fmt.Sprintf("No time logged yet under %s. Each perspective only needs a small start.", strings.Join(names, ", ")),
		Actionable:       true,
		SuggestedActions: actions,
		BasedOn: map[string]any{
			"missingCategories": categoryStrings(missing),
			"totalHours":        allTime.TotalHours,
		},
	}
}

// neglectInsight flags categories with history but nothing in the trailing
// two weeks.
func neglectInsight(allTime, last14 *Aggregate) *types.Insight {
	if allTime.TotalHours <= neglectMinHours {
		return nil
	}
	var neglected []category.Category
	for _, c := range category.All() {
		if allTime.CategoryHours[c] > 0 && last14.CategoryHours[c] == 0 {
			neglected = append(neglected, c)
		}
	}
	if len(neglected) == 0 {
		return nil
	}

	var names []string
	for _, c := range neglected {
		info, _ := category.Lookup(c)
		names = append(names, info.Label)
	}
	return &types.Insight{
		Type:        types.InsightPattern,
		Priority:    types.PriorityMedium,
		Confidence:  0.75,
		Title:       "Perspectives going quiet",
		Description: fmt.Sprintf("%s had activity before but nothing in the last %d days.", strings.Join(names, ", "), neglectWindowDays),
		Actionable:  true,
		SuggestedActions: []string{
			fmt.Sprintf("Log even 30 minutes in %s this week", names[0]),
		},
		BasedOn: map[string]any{
			"neglectedCategories": categoryStrings(neglected),
			"windowDays":          neglectWindowDays,
		},
	}
}

// balancedPortfolioInsight celebrates an allocation where most categories
// sit in the healthy band. Expires after a week so stale praise doesn't
// linger.
func balancedPortfolioInsight(allTime *Aggregate, now time.Time) *types.Insight {
	if allTime.TotalHours <= balancedMinHours {
		return nil
	}
	inBand := 0
	for _, c := range category.All() {
		pct := allTime.CategoryPercentages[c]
		if pct >= balancedLowPct && pct <= balancedHighPct {
			inBand++
		}
	}
	if inBand < balancedMinCategories {
		return nil
	}

	validUntil := now.Add(balancedExpiry)
	return &types.Insight{
		Type:        types.InsightAchievement,
		Priority:    types.PriorityMedium,
		Confidence:  0.9,
		Title:       "Well-balanced portfolio",
		Description: fmt.Sprintf("%d of %d perspectives sit in the healthy %d-%d%% band. Keep the rhythm going.", inBand, category.Count, int(balancedLowPct), int(balancedHighPct)),
		ValidUntil:  &validUntil,
		BasedOn: map[string]any{
			"categoriesInBand": inBand,
			"totalHours":       allTime.TotalHours,
		},
	}
}

// dormantProjectsInsight collects active projects untouched for more than 14
// days into one alert. The boundary is strictly greater: exactly 14 days is
// not dormant.
func dormantProjectsInsight(projects []types.Project, now time.Time) *types.Insight {
	var dormant []string
	for _, p := range projects {
		if p.Status != types.StatusActive || p.LastWorkedAt == nil {
			continue
		}
		if now.Sub(*p.LastWorkedAt) > dormantAfter {
			dormant = append(dormant, p.Name)
		}
	}
	if len(dormant) == 0 {
		return nil
	}

	return &types.Insight{
		Type:        types.InsightAlert,
		Priority:    types.PriorityHigh,
		Confidence:  0.9,
		Title:       "Active projects going dormant",
		Description: fmt.Sprintf("No time logged in over two weeks on: %s. Pick them back up or pause them.", strings.Join(dormant, ", ")),
		Actionable:  true,
		SuggestedActions: []string{
			"Log a session on a dormant project",
			"Move stalled projects to paused status",
		},
		BasedOn: map[string]any{
			"dormantProjects": dormant,
		},
	}
}

// lowActivityWeekInsight fires on a quiet trailing week, but only once
// there is enough history for a dip to be meaningful. Unknown-bucket hours
// count as real logged time here.
func lowActivityWeekInsight(allTime, last7 *Aggregate, logCount int) *types.Insight {
	weekHours := last7.TotalHours + last7.UnknownHours
	if weekHours >= lowActivityWeekHours || logCount <= lowActivityMinLogs {
		return nil
	}

	weeklyAverage := (allTime.TotalHours + allTime.UnknownHours) / math.Ceil(float64(logCount)/7)
	return &types.Insight{
		Type:        types.InsightPattern,
		Priority:    types.PriorityMedium,
		Confidence:  0.7,
		Title:       "Quiet week",
		Description: fmt.Sprintf("Only %.1f hours logged in the last 7 days against a historical weekly average of %.1f.", weekHours, weeklyAverage),
		Actionable:  true,
		SuggestedActions: []string{
			"Block one session on your most important project",
		},
		BasedOn: map[string]any{
			"weekHours":     weekHours,
			"weeklyAverage": weeklyAverage,
			"logCount":      logCount,
		},
	}
}

// journalGapInsight nudges journaling when an established habit has lapsed
// for a week.
func journalGapInsight(entries []types.JournalEntry, now time.Time) *types.Insight {
	if len(entries) <= journalGapMinEntries {
		return nil
	}
	week := LastNDays(7, now)
	for _, e := range entries {
		if week.Contains(e.Date) {
			return nil
		}
	}

	return &types.Insight{
		Type:        types.InsightSuggestion,
		Priority:    types.PriorityLow,
		Confidence:  0.6,
		Title:       "Journal has gone quiet",
		Description: "No journal entries in the last 7 days. A short reflection keeps the record honest.",
		Actionable:  true,
		SuggestedActions: []string{
			"Write a two-line reflection on this week",
		},
		BasedOn: map[string]any{
			"totalEntries": len(entries),
		},
	}
}

// milestoneInsight celebrates milestone journal entries from the trailing
// week. Short expiry keeps the celebration fresh.
func milestoneInsight(entries []types.JournalEntry, now time.Time) *types.Insight {
	week := LastNDays(7, now)
	count := 0
	for _, e := range entries {
		if e.EntryType == types.EntryMilestone && week.Contains(e.Date) {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	validUntil := now.Add(milestoneExpiry)
	noun := "milestone"
	if count > 1 {
		noun = "milestones"
	}
	return &types.Insight{
		Type:        types.InsightAchievement,
		Priority:    types.PriorityMedium,
		Confidence:  0.95,
		Title:       "Milestone reached",
		Description: fmt.Sprintf("You recorded %d %s this week. Worth celebrating.", count, noun),
		ValidUntil:  &validUntil,
		BasedOn: map[string]any{
			"milestoneCount": count,
		},
	}
}

func categoryStrings(cats []category.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
