package analytics

// MarksPerDimension is the maximum marks a single KPI dimension can earn.
const MarksPerDimension = 4

// ScorecardInput holds the aggregate KPIs the scorecard grades. A nil value
// means the underlying data was missing; that dimension scores 0 marks.
type ScorecardInput struct {
	AvgClosureDays    *float64 `json:"avg_closure_time_days"`
	EscalationRatePct *float64 `json:"escalation_rate_pct"`
	AvgRating         *float64 `json:"avg_rating"`
	AICoveragePct     *float64 `json:"ai_coverage_pct"`
}

// Mark is one graded dimension of the scorecard.
type Mark struct {
	Dimension string `json:"dimension"`
	Marks     int    `json:"marks"`
	Max       int    `json:"max"`
	Basis     string `json:"basis"`
}

// Scorecard is the auditable composite score. Same inputs always reproduce
// the same marks; the step functions below are the whole specification.
type Scorecard struct {
	Marks []Mark `json:"marks"`
	Total int    `json:"total"`
	Max   int    `json:"max"`
}

// CalculateScorecard maps aggregate KPIs to bounded integer marks via fixed
// step functions. Pure and side-effect free.
func CalculateScorecard(in ScorecardInput) Scorecard {
	marks := []Mark{
		gradeClosure(in.AvgClosureDays),
		gradeEscalation(in.EscalationRatePct),
		gradeRating(in.AvgRating),
		gradeAICoverage(in.AICoveragePct),
	}

	sc := Scorecard{Marks: marks, Max: len(marks) * MarksPerDimension}
	for _, m := range marks {
		sc.Total += m.Marks
	}
	return sc
}

// ScorecardFromOverview grades the KPIs already computed by Aggregate.
func ScorecardFromOverview(ov Overview) Scorecard {
	in := ScorecardInput{AvgClosureDays: ov.Totals.AvgClosureDays, AvgRating: ov.Totals.AvgRating}
	if ov.Totals.TotalGrievances > 0 {
		esc := ov.Totals.EscalationRatePct
		ai := ov.Totals.AICoverage.Pct
		in.EscalationRatePct = &esc
		in.AICoveragePct = &ai
	}
	return CalculateScorecard(in)
}

func gradeClosure(avgDays *float64) Mark {
	m := Mark{Dimension: "closure_time", Max: MarksPerDimension, Basis: "avg days to close: <=10d:4, <=14d:3, <=21d:2, else 1, missing 0"}
	if avgDays == nil {
		return m
	}
	switch d := *avgDays; {
	case d <= 10:
		m.Marks = 4
	case d <= 14:
		m.Marks = 3
	case d <= 21:
		m.Marks = 2
	default:
		m.Marks = 1
	}
	return m
}

func gradeEscalation(ratePct *float64) Mark {
	m := Mark{Dimension: "escalation_rate", Max: MarksPerDimension, Basis: "pct escalated: <=5%:4, <=10%:3, <=20%:2, else 1, missing 0"}
	if ratePct == nil {
		return m
	}
	switch r := *ratePct; {
	case r <= 5:
		m.Marks = 4
	case r <= 10:
		m.Marks = 3
	case r <= 20:
		m.Marks = 2
	default:
		m.Marks = 1
	}
	return m
}

func gradeRating(avg *float64) Mark {
	m := Mark{Dimension: "feedback_rating", Max: MarksPerDimension, Basis: "avg rating of 5: >=4:4, >=3:3, >=2:2, else 1, missing 0"}
	if avg == nil {
		return m
	}
	switch r := *avg; {
	case r >= 4:
		m.Marks = 4
	case r >= 3:
		m.Marks = 3
	case r >= 2:
		m.Marks = 2
	default:
		m.Marks = 1
	}
	return m
}

func gradeAICoverage(pct *float64) Mark {
	m := Mark{Dimension: "ai_label_coverage", Max: MarksPerDimension, Basis: "pct rows with AI subtopic: >=90%:4, >=70%:3, >=40%:2, else 1, missing 0"}
	if pct == nil {
		return m
	}
	switch c := *pct; {
	case c >= 90:
		m.Marks = 4
	case c >= 70:
		m.Marks = 3
	case c >= 40:
		m.Marks = 2
	default:
		m.Marks = 1
	}
	return m
}
