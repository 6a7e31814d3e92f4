package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"civic-insight/internal/record"
)

// OverviewParams controls the coverage-aware aggregation.
type OverviewParams struct {
	TopN int `json:"top_n"`
	// ClosedSeriesMinCoverage is the closed-date coverage fraction below which
	// the closed daily series is hidden from charts (too sparse to be honest).
	ClosedSeriesMinCoverage float64 `json:"closed_series_min_coverage"`
}

func (p OverviewParams) normalize() OverviewParams {
	if p.TopN == 0 {
		p.TopN = 10
	}
	p.TopN = clampInt(p.TopN, 3, 15)
	if p.ClosedSeriesMinCoverage <= 0 {
		p.ClosedSeriesMinCoverage = 0.25
	}
	return p
}

// RiskSlice is one cell of the operational risk snapshot.
type RiskSlice struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// RiskSnapshot summarises operational exposure in the filtered set.
type RiskSnapshot struct {
	Within3d  RiskSlice `json:"within_3d"`
	Over30d   RiskSlice `json:"over_30d"`
	Forwarded RiskSlice `json:"forwarded"`
	LowRating RiskSlice `json:"low_rating_1_2"`
}

// OverviewTotals holds the headline KPIs. Closure and rating statistics are
// computed only over rows where the field is known; when nothing is known the
// pointer stays nil rather than degrading to zero.
type OverviewTotals struct {
	TotalGrievances   int      `json:"total_grievances"`
	OpenBacklog       int      `json:"open_backlog"`
	AvgClosureDays    *float64 `json:"avg_closure_time_days"`
	MedianClosureDays *float64 `json:"median_closure_time_days"`
	P90ClosureDays    *float64 `json:"p90_closure_time_days"`
	ClosureCoverage   Coverage `json:"closure_coverage"`
	AvgRating         *float64 `json:"avg_rating"`
	RatingCoverage    Coverage `json:"rating_coverage"`
	EscalatedCount    int      `json:"escalated_count"`
	EscalationRatePct float64  `json:"escalation_rate_pct"`
	AICoverage        Coverage `json:"ai_coverage"`
}

// DailyRow is one day in the created/closed time series.
type DailyRow struct {
	Day     string `json:"day"`
	Created int    `json:"created"`
	Closed  int    `json:"closed"`
}

// DailySeries is the created/closed volume series for charting.
type DailySeries struct {
	ShowClosed bool       `json:"show_closed"`
	Rows       []DailyRow `json:"rows"`
}

// Overview is the coverage-aware aggregate for a filtered record set.
type Overview struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Filter        Filter          `json:"filters"`
	Totals        OverviewTotals  `json:"totals"`
	TimeSeries    DailySeries     `json:"time_series_daily"`
	TopCategories []CategoryCount `json:"top_categories"`
	TopSubtopics  []SubtopicCount `json:"top_subtopics"`
	Risk          RiskSnapshot    `json:"operational_risk_snapshot"`
	Insights      []string        `json:"insights"`
}

// Aggregate computes the coverage-aware overview. Never fails on an empty
// set: ratios default to 0 and nullable metrics stay nil per the coverage
// convention, so callers can always render something honest.
func Aggregate(records []record.Grievance, f Filter, params OverviewParams, now time.Time) Overview {
	params = params.normalize()
	total := len(records)

	var closureDays []float64
	var ratings []float64
	within3d, over30d, forwarded, escalated, lowRating := 0, 0, 0, 0, 0
	aiKnown := 0
	closedKnown := 0

	catCounts := make(map[string]int)
	subCounts := make(map[string]int)
	createdDaily := make(map[string]int)
	closedDaily := make(map[string]int)

	for _, g := range records {
		catCounts[g.CategoryKey()]++
		subCounts[g.SubtopicKey()]++
		createdDaily[g.CreatedDate.Format("2006-01-02")]++

		if g.HasSubtopic() {
			aiKnown++
		}
		if g.ClosedDate != nil {
			closedKnown++
			closedDaily[g.ClosedDate.Format("2006-01-02")]++
		}
		if d := g.ClosureDays(); d != nil {
			closureDays = append(closureDays, *d)
			if *d <= 3 {
				within3d++
			}
			if *d > 30 {
				over30d++
			}
		}
		if r := g.Rating(); r != nil {
			ratings = append(ratings, *r)
			if *r <= 2 {
				lowRating++
			}
		}
		if g.Forwarded {
			forwarded++
		}
		if g.Escalated {
			escalated++
		}
	}

	totals := OverviewTotals{
		TotalGrievances: total,
		OpenBacklog:     total - closedKnown,
		ClosureCoverage: NewCoverage(len(closureDays), total),
		RatingCoverage:  NewCoverage(len(ratings), total),
		EscalatedCount:  escalated,
		AICoverage:      NewCoverage(aiKnown, total),
	}

	if len(closureDays) > 0 {
		avg := Round2(Mean(closureDays))
		med := Round2(Median(closureDays))
		p90 := Round2(Percentile(closureDays, 0.90))
		totals.AvgClosureDays = &avg
		totals.MedianClosureDays = &med
		totals.P90ClosureDays = &p90
	}
	if len(ratings) > 0 {
		avg := Round2(Mean(ratings))
		totals.AvgRating = &avg
	}
	if total > 0 {
		totals.EscalationRatePct = Round1(100.0 * float64(escalated) / float64(total))
	}

	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return Round1(100.0 * float64(n) / float64(total))
	}
	risk := RiskSnapshot{
		Within3d:  RiskSlice{Count: within3d, Pct: pct(within3d)},
		Over30d:   RiskSlice{Count: over30d, Pct: pct(over30d)},
		Forwarded: RiskSlice{Count: forwarded, Pct: pct(forwarded)},
		LowRating: RiskSlice{Count: lowRating, Pct: pct(lowRating)},
	}

	return Overview{
		GeneratedAt:   now.UTC().Truncate(time.Second),
		Filter:        f,
		Totals:        totals,
		TimeSeries:    buildDailySeries(createdDaily, closedDaily, closedKnown, total, params.ClosedSeriesMinCoverage),
		TopCategories: topCategories(catCounts, params.TopN),
		TopSubtopics:  topSubtopics(subCounts, params.TopN),
		Risk:          risk,
		Insights:      buildInsights(totals, risk),
	}
}

func topCategories(counts map[string]int, topN int) []CategoryCount {
	rows := make([]CategoryCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, CategoryCount{Category: k, Count: n})
	}
	// Count descending; ties broken by key ascending for determinism.
	slices.SortFunc(rows, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func topSubtopics(counts map[string]int, topN int) []SubtopicCount {
	rows := make([]SubtopicCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, SubtopicCount{Subtopic: k, Count: n})
	}
	slices.SortFunc(rows, func(a, b SubtopicCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Subtopic, b.Subtopic)
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func buildDailySeries(created, closed map[string]int, closedKnown, total int, minCoverage float64) DailySeries {
	daySet := make(map[string]bool, len(created)+len(closed))
	for d := range created {
		daySet[d] = true
	}
	for d := range closed {
		daySet[d] = true
	}
	days := make([]string, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	slices.Sort(days)

	rows := make([]DailyRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, DailyRow{Day: d, Created: created[d], Closed: closed[d]})
	}

	show := false
	if total > 0 && float64(closedKnown)/float64(total) >= minCoverage {
		show = true
	}
	return DailySeries{ShowClosed: show, Rows: rows}
}

func buildInsights(t OverviewTotals, r RiskSnapshot) []string {
	var insights []string
	insights = append(insights, fmt.Sprintf("Total grievances: %d. Open backlog: %d.", t.TotalGrievances, t.OpenBacklog))
	if t.AvgClosureDays != nil {
		insights = append(insights, fmt.Sprintf("Average closure time: %.2f days (coverage %d/%d).",
			*t.AvgClosureDays, t.ClosureCoverage.Known, t.ClosureCoverage.Total))
	} else {
		insights = append(insights, fmt.Sprintf("Average closure time unavailable (coverage %d/%d).",
			t.ClosureCoverage.Known, t.ClosureCoverage.Total))
	}
	if t.AvgRating != nil {
		insights = append(insights, fmt.Sprintf("Average rating: %.2f/5 (coverage %d/%d).",
			*t.AvgRating, t.RatingCoverage.Known, t.RatingCoverage.Total))
	} else {
		insights = append(insights, fmt.Sprintf("Average rating unavailable (coverage %d/%d).",
			t.RatingCoverage.Known, t.RatingCoverage.Total))
	}
	insights = append(insights, fmt.Sprintf("Operational risk: %.1f%% >30d, %.1f%% forwarded, %.1f%% low rating (1-2).",
		r.Over30d.Pct, r.Forwarded.Pct, r.LowRating.Pct))
	return insights
}
