package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"civic-insight/internal/record"
)

// FullReport bundles every analysis over one filtered slice.
type FullReport struct {
	Filter           Filter            `json:"filter"`
	GeneratedAt      string            `json:"generated_at"`
	Overview         *Overview         `json:"overview,omitempty"`
	RisingSubtopics  *TrendResult      `json:"rising_subtopics,omitempty"`
	WardRisk         *WardRiskResult   `json:"ward_risk,omitempty"`
	ChronicIssues    *ChronicResult    `json:"chronic_issues,omitempty"`
	PainMatrix       *PainMatrix       `json:"pain_matrix,omitempty"`
	Scorecard        *Scorecard        `json:"scorecard,omitempty"`
	DegradedSections map[string]string `json:"_degraded_sections,omitempty"`
}

// BuildFullReport runs the six analyses in parallel over an already-filtered
// slice. Each section recovers from its own failure and reports it in
// DegradedSections; one bad section never sinks the rest of the report.
func BuildFullReport(records []record.Grievance, f Filter, windowDays int, now time.Time) FullReport {
	report := FullReport{
		Filter:      f,
		GeneratedAt: now.Format(time.RFC3339),
	}
	// Sections write disjoint report fields, so they need no locking; failures
	// funnel through a channel and are collected after Wait.
	type failure struct {
		name string
		msg  string
	}
	failCh := make(chan failure, 6)
	safe := func(g *errgroup.Group, name string, run func()) {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("section", name).Interface("panic", r).Msg("Report section failed")
					failCh <- failure{name: name, msg: fmt.Sprintf("%v", r)}
				}
			}()
			run()
			return nil
		})
	}

	var g errgroup.Group
	safe(&g, "overview", func() {
		ov := Aggregate(records, f, OverviewParams{}, now)
		report.Overview = &ov
	})
	safe(&g, "rising_subtopics", func() {
		res := DetectRisingSubtopics(records, f, TrendParams{WindowDays: windowDays})
		report.RisingSubtopics = &res
	})
	safe(&g, "ward_risk", func() {
		res := DetectWardRisk(records, f, WardRiskParams{
			WindowDays: windowDays,
			Thresholds: DefaultWardRiskThresholds(),
		})
		report.WardRisk = &res
	})
	safe(&g, "chronic_issues", func() {
		res := DetectChronicIssues(records, ChronicParams{})
		report.ChronicIssues = &res
	})
	safe(&g, "pain_matrix", func() {
		res := ScorePainMatrix(records, PainParams{})
		report.PainMatrix = &res
	})
	safe(&g, "scorecard", func() {
		sc := ScorecardFromOverview(Aggregate(records, f, OverviewParams{}, now))
		report.Scorecard = &sc
	})
	_ = g.Wait()
	close(failCh)

	failed := make(map[string]string)
	for fl := range failCh {
		failed[fl.name] = fl.msg
	}
	if len(failed) > 0 {
		report.DegradedSections = failed
	}
	return report
}
