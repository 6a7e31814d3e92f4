package analytics

import (
	"cmp"
	"slices"
	"time"

	"civic-insight/internal/record"
)

// Trend statuses for window-pair comparison.
const (
	TrendRising  = "rising"
	TrendStable  = "stable"
	TrendFalling = "falling"
)

// Ward risk labels.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

const insufficientRangeNote = "Selected date range is too short for two windows; expand the range."

// WindowPair is two disjoint, equal-length, contiguous date intervals used
// for trend comparison. Recent is anchored at the filter's end date.
type WindowPair struct {
	PreviousStart time.Time `json:"previous_start"`
	PreviousEnd   time.Time `json:"previous_end"`
	RecentStart   time.Time `json:"recent_start"`
	RecentEnd     time.Time `json:"recent_end"`
}

// MakeWindowPair derives the window pair for a filter. Returns ok=false when
// the filter's span cannot contain both windows; callers must then report
// insufficient range instead of partially computing.
func MakeWindowPair(f Filter, windowDays int) (WindowPair, bool) {
	recentStart := f.End.AddDate(0, 0, -(windowDays - 1))
	prevStart := f.End.AddDate(0, 0, -(2*windowDays - 1))
	prevEnd := recentStart.AddDate(0, 0, -1)

	w := WindowPair{
		PreviousStart: prevStart,
		PreviousEnd:   prevEnd,
		RecentStart:   recentStart,
		RecentEnd:     f.End,
	}
	return w, !prevStart.Before(f.Start)
}

// TrendParams controls rising-subtopic detection. Zero values take the
// documented defaults; out-of-band values are clamped.
type TrendParams struct {
	WindowDays      int     `json:"window_days"`
	MinVolume       int     `json:"min_volume"`
	GrowthThreshold float64 `json:"growth_threshold"`
	TopN            int     `json:"top_n"`
}

func (p TrendParams) normalize() TrendParams {
	if p.WindowDays == 0 {
		p.WindowDays = 14
	}
	if p.MinVolume == 0 {
		p.MinVolume = 10
	}
	if p.GrowthThreshold == 0 {
		p.GrowthThreshold = 0.5
	}
	if p.TopN == 0 {
		p.TopN = 15
	}
	p.WindowDays = clampInt(p.WindowDays, 3, 60)
	p.MinVolume = clampInt(p.MinVolume, 1, 2000)
	p.TopN = clampInt(p.TopN, 5, 50)
	return p
}

// TrendRow is a classified window comparison for one subtopic.
type TrendRow struct {
	Subtopic  string  `json:"subTopic"`
	Previous  int     `json:"previous"`
	Recent    int     `json:"recent"`
	PctChange float64 `json:"pct_change"`
	Status    string  `json:"status"`
	// NewIssue marks groups absent from the previous window; their pct_change
	// uses a denominator of 1 and should be read as "new", not literal growth.
	NewIssue bool `json:"new_issue,omitempty"`
}

// TrendResult is the rising-subtopics response.
type TrendResult struct {
	WindowDays        int         `json:"window_days"`
	Windows           *WindowPair `json:"windows,omitempty"`
	MinVolume         int         `json:"min_volume"`
	GrowthThreshold   float64     `json:"growth_threshold"`
	InsufficientRange bool        `json:"insufficient_range,omitempty"`
	Note              string      `json:"note,omitempty"`
	Rows              []TrendRow  `json:"rows"`
}

// DetectRisingSubtopics compares per-subtopic counts across the window pair
// and flags rising / stable / falling behavior. Groups with zero recent
// volume are excluded entirely; they cannot be rising.
func DetectRisingSubtopics(records []record.Grievance, f Filter, params TrendParams) TrendResult {
	params = params.normalize()
	res := TrendResult{
		WindowDays:      params.WindowDays,
		MinVolume:       params.MinVolume,
		GrowthThreshold: params.GrowthThreshold,
		Rows:            []TrendRow{},
	}

	windows, ok := MakeWindowPair(f, params.WindowDays)
	if !ok {
		res.InsufficientRange = true
		res.Note = insufficientRangeNote
		return res
	}
	res.Windows = &windows

	prev, recent := countWindows(records, windows, func(g record.Grievance) string { return g.SubtopicKey() })

	for sub, rn := range recent {
		if rn < params.MinVolume {
			continue
		}
		pn := prev[sub]
		row := TrendRow{
			Subtopic:  sub,
			Previous:  pn,
			Recent:    rn,
			PctChange: pctChange(pn, rn),
			NewIssue:  pn == 0,
		}
		row.Status = classifyTrend(row.PctChange, params.GrowthThreshold)
		res.Rows = append(res.Rows, row)
	}

	// Rising first, then by recent volume descending, key ascending.
	rank := map[string]int{TrendRising: 0, TrendStable: 1, TrendFalling: 2}
	slices.SortFunc(res.Rows, func(a, b TrendRow) int {
		if rank[a.Status] != rank[b.Status] {
			return cmp.Compare(rank[a.Status], rank[b.Status])
		}
		if a.Recent != b.Recent {
			return cmp.Compare(b.Recent, a.Recent)
		}
		return cmp.Compare(a.Subtopic, b.Subtopic)
	})
	if len(res.Rows) > params.TopN {
		res.Rows = res.Rows[:params.TopN]
	}
	return res
}

// WardRiskThresholds is the fixed, auditable decision table for ward risk.
// Promoted to named configuration so it can be tuned and tested on its own.
type WardRiskThresholds struct {
	HighGrowth            float64 `json:"high_growth"`
	HighDistinctSubtopics int     `json:"high_distinct_subtopics"`
	MediumGrowth          float64 `json:"medium_growth"`
	MediumRepeatDensity   float64 `json:"medium_repeat_density"`
}

// DefaultWardRiskThresholds returns the calibrated production decision table.
func DefaultWardRiskThresholds() WardRiskThresholds {
	return WardRiskThresholds{
		HighGrowth:            0.25,
		HighDistinctSubtopics: 8,
		MediumGrowth:          0.15,
		MediumRepeatDensity:   0.35,
	}
}

// WardRiskParams controls at-risk ward detection.
type WardRiskParams struct {
	WindowDays    int                `json:"window_days"`
	MinWardVolume int                `json:"min_ward_volume"`
	Limit         int                `json:"limit"`
	Thresholds    WardRiskThresholds `json:"thresholds"`
}

func (p WardRiskParams) normalize() WardRiskParams {
	if p.WindowDays == 0 {
		p.WindowDays = 14
	}
	if p.MinWardVolume == 0 {
		p.MinWardVolume = 30
	}
	if p.Limit == 0 {
		p.Limit = 30
	}
	p.WindowDays = clampInt(p.WindowDays, 3, 60)
	p.MinWardVolume = clampInt(p.MinWardVolume, 5, 20000)
	p.Limit = clampInt(p.Limit, 5, 100)
	if p.Thresholds == (WardRiskThresholds{}) {
		p.Thresholds = DefaultWardRiskThresholds()
	}
	return p
}

// WardRiskRow combines trend direction and repeat density for one ward.
type WardRiskRow struct {
	Ward                    string  `json:"ward"`
	Risk                    string  `json:"risk"`
	Previous                int     `json:"previous"`
	Recent                  int     `json:"recent"`
	PctChange               float64 `json:"pct_change"`
	DistinctSubtopicsRecent int     `json:"distinct_subtopics_recent"`
	// RepeatDensity is the share of the recent window taken by the ward's
	// single most repeated subtopic; a high value means the same issue keeps
	// coming back rather than many distinct ones.
	RepeatDensity float64 `json:"repeat_density"`
}

// WardRiskResult is the at-risk wards response.
type WardRiskResult struct {
	WindowDays        int           `json:"window_days"`
	Windows           *WindowPair   `json:"windows,omitempty"`
	InsufficientRange bool          `json:"insufficient_range,omitempty"`
	Note              string        `json:"note,omitempty"`
	Rows              []WardRiskRow `json:"rows"`
}

// DetectWardRisk flags wards whose recent volume and repetition pattern
// warrant attention, using the fixed decision table in params.Thresholds.
func DetectWardRisk(records []record.Grievance, f Filter, params WardRiskParams) WardRiskResult {
	params = params.normalize()
	res := WardRiskResult{WindowDays: params.WindowDays, Rows: []WardRiskRow{}}

	windows, ok := MakeWindowPair(f, params.WindowDays)
	if !ok {
		res.InsufficientRange = true
		res.Note = insufficientRangeNote
		return res
	}
	res.Windows = &windows

	prev, recent := countWindows(records, windows, func(g record.Grievance) string { return g.WardKey() })

	// Subtopic composition of each ward's recent window.
	recentSubs := make(map[string]map[string]int)
	for _, g := range records {
		d := truncateToDay(g.CreatedDate)
		if d.Before(windows.RecentStart) || d.After(windows.RecentEnd) {
			continue
		}
		w := g.WardKey()
		if recentSubs[w] == nil {
			recentSubs[w] = make(map[string]int)
		}
		recentSubs[w][g.SubtopicKey()]++
	}

	thr := params.Thresholds
	for ward, rn := range recent {
		if rn < params.MinWardVolume {
			continue
		}
		pn := prev[ward]
		growth := float64(rn-pn) / float64(max(pn, 1))

		distinct := len(recentSubs[ward])
		maxSub := 0
		for _, c := range recentSubs[ward] {
			if c > maxSub {
				maxSub = c
			}
		}
		repeatDensity := 0.0
		if rn > 0 {
			repeatDensity = float64(maxSub) / float64(rn)
		}

		risk := RiskLow
		switch {
		case rn >= params.MinWardVolume && growth > thr.HighGrowth && distinct >= thr.HighDistinctSubtopics:
			risk = RiskHigh
		case growth > thr.MediumGrowth || repeatDensity > thr.MediumRepeatDensity:
			risk = RiskMedium
		}

		res.Rows = append(res.Rows, WardRiskRow{
			Ward:                    ward,
			Risk:                    risk,
			Previous:                pn,
			Recent:                  rn,
			PctChange:               Round1(growth * 100.0),
			DistinctSubtopicsRecent: distinct,
			RepeatDensity:           Round2(repeatDensity),
		})
	}

	// HIGH first, then recent volume, then growth; ward name for determinism.
	rank := map[string]int{RiskHigh: 0, RiskMedium: 1, RiskLow: 2}
	slices.SortFunc(res.Rows, func(a, b WardRiskRow) int {
		if rank[a.Risk] != rank[b.Risk] {
			return cmp.Compare(rank[a.Risk], rank[b.Risk])
		}
		if a.Recent != b.Recent {
			return cmp.Compare(b.Recent, a.Recent)
		}
		if a.PctChange != b.PctChange {
			return cmp.Compare(b.PctChange, a.PctChange)
		}
		return cmp.Compare(a.Ward, b.Ward)
	})
	if len(res.Rows) > params.Limit {
		res.Rows = res.Rows[:params.Limit]
	}
	return res
}

// countWindows tallies group counts for the previous and recent windows in a
// single pass. Records outside both windows are ignored.
func countWindows(records []record.Grievance, w WindowPair, key func(record.Grievance) string) (prev, recent map[string]int) {
	prev = make(map[string]int)
	recent = make(map[string]int)
	for _, g := range records {
		d := truncateToDay(g.CreatedDate)
		switch {
		case !d.Before(w.RecentStart) && !d.After(w.RecentEnd):
			recent[key(g)]++
		case !d.Before(w.PreviousStart) && !d.After(w.PreviousEnd):
			prev[key(g)]++
		}
	}
	return prev, recent
}

// pctChange computes the growth percentage with a floor-of-one denominator,
// so a previously silent group yields a large finite value instead of +Inf.
func pctChange(previous, recent int) float64 {
	return Round1(float64(recent-previous) / float64(max(previous, 1)) * 100.0)
}

func classifyTrend(pct float64, growthThreshold float64) string {
	switch {
	case pct >= growthThreshold*100.0:
		return TrendRising
	case pct <= -growthThreshold*100.0:
		return TrendFalling
	default:
		return TrendStable
	}
}
