package analytics

import (
	"cmp"
	"slices"

	"civic-insight/internal/record"
)

// ChronicParams controls persistence detection across calendar periods.
type ChronicParams struct {
	Period         string `json:"period"` // "week" or "month"
	TopNPerPeriod  int    `json:"top_n_per_period"`
	MinPeriods     int    `json:"min_periods"`
	Limit          int    `json:"limit"`
	MaxWardsListed int    `json:"max_wards_listed"`
}

func (p ChronicParams) normalize() ChronicParams {
	p.Period = NormalizePeriod(p.Period)
	if p.TopNPerPeriod == 0 {
		p.TopNPerPeriod = 5
	}
	if p.MinPeriods == 0 {
		p.MinPeriods = 4
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.MaxWardsListed == 0 {
		p.MaxWardsListed = 10
	}
	p.TopNPerPeriod = clampInt(p.TopNPerPeriod, 3, 20)
	p.MinPeriods = clampInt(p.MinPeriods, 2, 52)
	p.Limit = clampInt(p.Limit, 5, 50)
	return p
}

// ChronicRow is a subtopic that keeps resurfacing among top contributors.
type ChronicRow struct {
	Subtopic      string   `json:"subTopic"`
	PeriodsActive int      `json:"periods_active"`
	TotalCount    int      `json:"total_count"`
	AffectedWards []string `json:"affected_wards"`
}

// ChronicResult is the chronic-issues response.
type ChronicResult struct {
	Period        string       `json:"period"`
	TopNPerPeriod int          `json:"top_n_per_period"`
	MinPeriods    int          `json:"min_periods"`
	Rows          []ChronicRow `json:"rows"`
}

// DetectChronicIssues finds subtopics that rank among each period's top
// contributors in at least MinPeriods distinct periods. The two-stage design
// (top-per-period, then persistence across periods) filters one-off spikes
// while surfacing recurring-but-not-always-largest issues.
func DetectChronicIssues(records []record.Grievance, params ChronicParams) ChronicResult {
	params = params.normalize()
	res := ChronicResult{
		Period:        params.Period,
		TopNPerPeriod: params.TopNPerPeriod,
		MinPeriods:    params.MinPeriods,
		Rows:          []ChronicRow{},
	}

	// Stage 1: per-period subtopic counts. Partial boundary periods count as
	// long as they contain at least one record.
	periodCounts := make(map[string]map[string]int)
	totalCounts := make(map[string]int)
	wardSets := make(map[string]map[string]bool)
	for _, g := range records {
		period := PeriodLabel(g.CreatedDate, params.Period)
		sub := g.SubtopicKey()
		if periodCounts[period] == nil {
			periodCounts[period] = make(map[string]int)
		}
		periodCounts[period][sub]++
		totalCounts[sub]++
		if wardSets[sub] == nil {
			wardSets[sub] = make(map[string]bool)
		}
		wardSets[sub][g.WardKey()] = true
	}

	// Stage 2: dense-rank each period's subtopics and track how many periods
	// each one surfaced in the top set. Dense ranking keeps ties together so
	// equal volumes share a rank.
	periodsActive := make(map[string]int)
	for _, counts := range periodCounts {
		for _, sub := range topRanked(counts, params.TopNPerPeriod) {
			periodsActive[sub]++
		}
	}

	for sub, active := range periodsActive {
		if active < params.MinPeriods {
			continue
		}
		wards := make([]string, 0, len(wardSets[sub]))
		for w := range wardSets[sub] {
			wards = append(wards, w)
		}
		slices.Sort(wards)
		if len(wards) > params.MaxWardsListed {
			wards = wards[:params.MaxWardsListed]
		}
		res.Rows = append(res.Rows, ChronicRow{
			Subtopic:      sub,
			PeriodsActive: active,
			// Volume across the full range, not just the periods it was top
			// in: a chronic issue's weight includes its quiet weeks.
			TotalCount:    totalCounts[sub],
			AffectedWards: wards,
		})
	}

	slices.SortFunc(res.Rows, func(a, b ChronicRow) int {
		if a.PeriodsActive != b.PeriodsActive {
			return cmp.Compare(b.PeriodsActive, a.PeriodsActive)
		}
		if a.TotalCount != b.TotalCount {
			return cmp.Compare(b.TotalCount, a.TotalCount)
		}
		return cmp.Compare(a.Subtopic, b.Subtopic)
	})
	if len(res.Rows) > params.Limit {
		res.Rows = res.Rows[:params.Limit]
	}
	return res
}

// topRanked returns the subtopics whose dense rank by count is <= topN.
func topRanked(counts map[string]int, topN int) []string {
	distinct := make(map[int]bool)
	for _, n := range counts {
		distinct[n] = true
	}
	volumes := make([]int, 0, len(distinct))
	for n := range distinct {
		volumes = append(volumes, n)
	}
	slices.SortFunc(volumes, func(a, b int) int { return cmp.Compare(b, a) })

	rankOf := make(map[int]int, len(volumes))
	for i, v := range volumes {
		rankOf[v] = i + 1
	}

	var out []string
	for sub, n := range counts {
		if rankOf[n] <= topN {
			out = append(out, sub)
		}
	}
	return out
}
