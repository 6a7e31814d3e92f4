package analytics

import (
	"cmp"
	"slices"

	"civic-insight/internal/record"
)

// Pain quadrants. A subtopic's median SLA at or above the x threshold counts
// as slow; a low-rating share at or above the y threshold counts as unhappy.
// The >= tie rule is deliberate: a boundary value is an action signal.
const (
	QuadrantHealthy     = "healthy"
	QuadrantFastUnhappy = "fast_unhappy"
	QuadrantSlowOK      = "slow_ok"
	QuadrantPriority    = "priority"
)

// Fallback thresholds when the filtered set yields no observable medians.
const (
	defaultXThresholdDays = 15.0
	defaultYThresholdPct  = 25.0
)

// Composite pain index weights: delay dominates, dissatisfaction next, the
// long tail of >30d cases last. Used only for ranking, never as an absolute.
const (
	painWeightDelay  = 1.0
	painWeightRating = 0.6
	painWeightTail   = 0.4
)

// PainParams controls the pain matrix. Thresholds left nil are derived from
// the medians of the observed points.
type PainParams struct {
	TopN           int      `json:"top_n"`
	XThresholdDays *float64 `json:"x_threshold_days,omitempty"`
	YThresholdPct  *float64 `json:"y_threshold_low_rating_pct,omitempty"`
}

func (p PainParams) normalize() PainParams {
	if p.TopN == 0 {
		p.TopN = 10
	}
	p.TopN = clampInt(p.TopN, 3, 15)
	return p
}

// PainPoint is one subtopic positioned on the delay/dissatisfaction plane.
type PainPoint struct {
	Subtopic      string   `json:"subTopic"`
	Count         int      `json:"count"`
	MedianSLADays float64  `json:"median_sla_days"`
	LowRatingPct  float64  `json:"low_rating_pct"`
	PctOver30d    *float64 `json:"pct_over_30d,omitempty"`
	UrgencyMode   string   `json:"urgency_mode"`
	Quadrant      string   `json:"quadrant"`
}

// RankedPainPoint is a pain point in the top-painful ranking.
type RankedPainPoint struct {
	Rank int `json:"rank"`
	PainPoint
	Label string `json:"label"` // WATCH / ACTION REQ / CRITICAL
}

// PainMatrix is the pain matrix response.
type PainMatrix struct {
	XThresholdDays float64           `json:"x_threshold_days"`
	YThresholdPct  float64           `json:"y_threshold_low_rating_pct"`
	Points         []PainPoint       `json:"points"`
	TopPainful     []RankedPainPoint `json:"top_painful"`
}

// ScorePainMatrix positions the highest-volume subtopics on the
// delay/dissatisfaction plane and ranks them by composite pain. Subtopics
// lacking either metric are excluded rather than defaulted: missing data must
// never masquerade as "healthy".
func ScorePainMatrix(records []record.Grievance, params PainParams) PainMatrix {
	params = params.normalize()

	type subMetrics struct {
		count    int
		closure  []float64
		ratings  []float64
		lowRated int
		urgency  map[string]int
	}
	bySub := make(map[string]*subMetrics)
	for _, g := range records {
		sub := g.SubtopicKey()
		m := bySub[sub]
		if m == nil {
			m = &subMetrics{urgency: make(map[string]int)}
			bySub[sub] = m
		}
		m.count++
		if d := g.ClosureDays(); d != nil {
			m.closure = append(m.closure, *d)
		}
		if r := g.Rating(); r != nil {
			m.ratings = append(m.ratings, *r)
			if *r <= 2 {
				m.lowRated++
			}
		}
		if g.Urgency != "" {
			m.urgency[g.Urgency]++
		}
	}

	// Keep the top-N subtopics by volume; ties break on key for determinism.
	type subRow struct {
		sub string
		m   *subMetrics
	}
	rows := make([]subRow, 0, len(bySub))
	for sub, m := range bySub {
		rows = append(rows, subRow{sub, m})
	}
	slices.SortFunc(rows, func(a, b subRow) int {
		if a.m.count != b.m.count {
			return cmp.Compare(b.m.count, a.m.count)
		}
		return cmp.Compare(a.sub, b.sub)
	})
	if len(rows) > params.TopN {
		rows = rows[:params.TopN]
	}

	points := []PainPoint{}
	for _, r := range rows {
		m := r.m
		if len(m.closure) == 0 || len(m.ratings) == 0 {
			continue // no coverage for one axis; cannot be placed
		}
		over30 := 0
		for _, d := range m.closure {
			if d > 30 {
				over30++
			}
		}
		tail := Round1(100.0 * float64(over30) / float64(len(m.closure)))
		points = append(points, PainPoint{
			Subtopic:      r.sub,
			Count:         m.count,
			MedianSLADays: Round2(Median(m.closure)),
			LowRatingPct:  Round1(100.0 * float64(m.lowRated) / float64(len(m.ratings))),
			PctOver30d:    &tail,
			UrgencyMode:   urgencyMode(m.urgency),
		})
	}

	matrix := PainMatrix{Points: points, TopPainful: []RankedPainPoint{}}
	matrix.XThresholdDays, matrix.YThresholdPct = resolveThresholds(points, params)

	for i := range matrix.Points {
		p := &matrix.Points[i]
		p.Quadrant = classifyQuadrant(p.MedianSLADays, p.LowRatingPct, matrix.XThresholdDays, matrix.YThresholdPct)
	}

	ranked := make([]PainPoint, len(matrix.Points))
	copy(ranked, matrix.Points)
	slices.SortFunc(ranked, func(a, b PainPoint) int {
		pa, pb := painIndex(a), painIndex(b)
		if pa != pb {
			return cmp.Compare(pb, pa)
		}
		return cmp.Compare(a.Subtopic, b.Subtopic)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	for i, p := range ranked {
		label := "WATCH"
		if p.Quadrant == QuadrantPriority {
			label = "ACTION REQ"
		} else if p.UrgencyMode == "High" {
			label = "CRITICAL"
		}
		matrix.TopPainful = append(matrix.TopPainful, RankedPainPoint{Rank: i + 1, PainPoint: p, Label: label})
	}
	return matrix
}

func resolveThresholds(points []PainPoint, params PainParams) (x, y float64) {
	if params.XThresholdDays != nil {
		x = *params.XThresholdDays
	} else if len(points) > 0 {
		var slas []float64
		for _, p := range points {
			slas = append(slas, p.MedianSLADays)
		}
		x = Round1(Median(slas))
	} else {
		x = defaultXThresholdDays
	}

	if params.YThresholdPct != nil {
		y = *params.YThresholdPct
	} else if len(points) > 0 {
		var lows []float64
		for _, p := range points {
			lows = append(lows, p.LowRatingPct)
		}
		y = Round1(Median(lows))
	} else {
		y = defaultYThresholdPct
	}
	return x, y
}

func classifyQuadrant(sla, lowPct, x, y float64) string {
	slow := sla >= x
	unhappy := lowPct >= y
	switch {
	case slow && unhappy:
		return QuadrantPriority
	case slow:
		return QuadrantSlowOK
	case unhappy:
		return QuadrantFastUnhappy
	default:
		return QuadrantHealthy
	}
}

func painIndex(p PainPoint) float64 {
	tail := 0.0
	if p.PctOver30d != nil {
		tail = *p.PctOver30d
	}
	return p.MedianSLADays*painWeightDelay + p.LowRatingPct*painWeightRating + tail*painWeightTail
}

// urgencyMode returns the dominant urgency label; High wins exact ties
// because an understated urgency is worse than an overstated one.
func urgencyMode(counts map[string]int) string {
	hu, mu, lu := counts["High"], counts["Medium"], counts["Low"]
	switch {
	case hu >= mu && hu >= lu && hu > 0:
		return "High"
	case mu >= lu && mu > 0:
		return "Medium"
	case lu > 0:
		return "Low"
	default:
		return ""
	}
}
