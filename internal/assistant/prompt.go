package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperengineering/facet/internal/category"
	"github.com/hyperengineering/facet/internal/engine"
	"github.com/hyperengineering/facet/internal/types"
)

const systemPreamble = `You are Facet, a portfolio balance coach for a personal activity tracker.
The user classifies their projects into four categories: builder (creating things),
contributor (helping others), integrator (keeping life running), and experimenter
(exploring new ground). Answer questions about their balance using only the data
below. Be concise and concrete; suggest at most one action per reply. If the data
does not support an answer, say so rather than guessing.`

// maxRecentLogs bounds how much raw activity goes into the prompt.
const maxRecentLogs = 10

// ComposeSystemPrompt renders the current portfolio state into the system
// message that grounds the assistant's replies.
func ComposeSystemPrompt(portfolio *types.Portfolio, agg *engine.Aggregate, report *engine.BalanceReport, insights []types.Insight, recent []types.TimeLog) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n[Portfolio]\n")

	if agg != nil {
		fmt.Fprintf(&b, "Total tracked: %.1fh across %d logs", agg.TotalHours, agg.LogCount)
		if agg.UnknownHours > 0 {
			fmt.Fprintf(&b, " (plus %.1fh on deleted projects)", agg.UnknownHours)
		}
		b.WriteString("\n")
		for _, c := range category.All() {
			target := 0.0
			if portfolio != nil {
				target = portfolio.TargetAllocation[c]
			}
			info, _ := category.Lookup(c)
			fmt.Fprintf(&b, "- %s: %.1fh (%.1f%% actual, %.0f%% target)\n",
				info.Label, agg.CategoryHours[c], agg.CategoryPercentages[c], target)
		}
	}

	if report != nil {
		fmt.Fprintf(&b, "Balance score: %.1f (grade %s, %s; drift %.1f points)\n",
			report.Score, report.Grade, report.Status, report.Drift)
	}

	if len(insights) > 0 {
		b.WriteString("\n[Active Insights]\n")
		for _, ins := range insights {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", ins.Priority, ins.Title, ins.Description)
		}
	}

	if len(recent) > 0 {
		logs := make([]types.TimeLog, len(recent))
		copy(logs, recent)
		sort.Slice(logs, func(i, j int) bool { return logs[i].Date.After(logs[j].Date) })
		if len(logs) > maxRecentLogs {
			logs = logs[:maxRecentLogs]
		}
		b.WriteString("\n[Recent Activity]\n")
		for _, l := range logs {
			fmt.Fprintf(&b, "- %s: %.1fh", l.Date.Format("2006-01-02"), l.Duration)
			if l.Notes != "" {
				fmt.Fprintf(&b, " (%s)", l.Notes)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
