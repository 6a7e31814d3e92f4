package rpc

import (
	"context"
	"fmt"
	"time"

	"civic-insight/internal/analytics"
	"civic-insight/internal/explain"
	"civic-insight/internal/record"
)

// defaultRangeDays is the fallback window when the caller specifies no dates.
const defaultRangeDays = 30

func (s *Server) resolveFilter(args map[string]interface{}) (analytics.Filter, error) {
	spec := analytics.FilterSpec{
		Source:     argString(args, "source"),
		Department: argString(args, "department"),
		Category:   argString(args, "category"),
		Wards:      argStringSlice(args, "wards"),
	}
	if t, ok := argDate(args, "start_date"); ok {
		spec.StartDate = &t
	}
	if t, ok := argDate(args, "end_date"); ok {
		spec.EndDate = &t
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(defaultRangeDays - 1))
	return analytics.Resolve(spec, start, end)
}

// filteredRecords resolves the filter, pulls a snapshot, and applies the
// predicate. Every tool goes through here so store failures surface the same
// way everywhere.
func (s *Server) filteredRecords(args map[string]interface{}) ([]record.Grievance, analytics.Filter, error) {
	f, err := s.resolveFilter(args)
	if err != nil {
		return nil, analytics.Filter{}, err
	}

	records, err := s.store.Snapshot(context.Background(), f.Source)
	if err != nil {
		return nil, analytics.Filter{}, fmt.Errorf("%w: %v", analytics.ErrUpstreamUnavailable, err)
	}
	return analytics.Apply(f, records), f, nil
}

func (s *Server) handleListSources() (interface{}, error) {
	sources, err := s.store.Sources(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analytics.ErrUpstreamUnavailable, err)
	}
	return map[string]interface{}{"sources": sources, "count": len(sources)}, nil
}

func (s *Server) handleOverview(args map[string]interface{}) (interface{}, error) {
	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	params := analytics.OverviewParams{TopN: argInt(args, "top_n")}
	return analytics.Aggregate(records, f, params, time.Now().UTC()), nil
}

func (s *Server) handleRisingSubtopics(args map[string]interface{}) (interface{}, error) {
	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	d := s.cfg.Defaults
	params := analytics.TrendParams{
		WindowDays:      intOr(argInt(args, "window_days"), d.WindowDays),
		MinVolume:       intOr(argInt(args, "min_volume"), d.MinVolume),
		GrowthThreshold: floatOr(argFloat(args, "growth_threshold"), d.GrowthThreshold),
		TopN:            argInt(args, "top_n"),
	}
	return analytics.DetectRisingSubtopics(records, f, params), nil
}

func (s *Server) handleWardRisk(args map[string]interface{}) (interface{}, error) {
	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	d := s.cfg.Defaults
	params := analytics.WardRiskParams{
		WindowDays:    intOr(argInt(args, "window_days"), d.WindowDays),
		MinWardVolume: intOr(argInt(args, "min_ward_volume"), d.MinWardVolume),
		Limit:         argInt(args, "limit"),
		Thresholds:    analytics.DefaultWardRiskThresholds(),
	}
	return analytics.DetectWardRisk(records, f, params), nil
}

func (s *Server) handleChronicIssues(args map[string]interface{}) (interface{}, error) {
	records, _, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	d := s.cfg.Defaults
	params := analytics.ChronicParams{
		Period:        argString(args, "period"),
		TopNPerPeriod: intOr(argInt(args, "top_n_per_period"), d.TopNPerPeriod),
		MinPeriods:    intOr(argInt(args, "min_periods"), d.MinPeriods),
		Limit:         argInt(args, "limit"),
	}
	return analytics.DetectChronicIssues(records, params), nil
}

func (s *Server) handlePainMatrix(args map[string]interface{}) (interface{}, error) {
	records, _, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	params := analytics.PainParams{TopN: argInt(args, "top_n")}
	if v, ok := argFloatOK(args, "closure_threshold"); ok {
		params.XThresholdDays = &v
	}
	if v, ok := argFloatOK(args, "low_rating_threshold"); ok {
		params.YThresholdPct = &v
	}
	return analytics.ScorePainMatrix(records, params), nil
}

func (s *Server) handleScorecard(args map[string]interface{}) (interface{}, error) {
	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	ov := analytics.Aggregate(records, f, analytics.OverviewParams{}, time.Now().UTC())
	return analytics.ScorecardFromOverview(ov), nil
}

func (s *Server) handleFullReport(args map[string]interface{}) (interface{}, error) {
	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}
	windowDays := intOr(argInt(args, "window_days"), s.cfg.Defaults.WindowDays)
	return analytics.BuildFullReport(records, f, windowDays, time.Now().UTC()), nil
}

func (s *Server) handleExplainSignal(args map[string]interface{}) (interface{}, error) {
	kind := argString(args, "kind")
	name := argString(args, "name")
	if kind == "" || name == "" {
		return nil, fmt.Errorf("kind and name are required")
	}

	records, f, err := s.filteredRecords(args)
	if err != nil {
		return nil, err
	}

	// Same defaults layering as the detection handlers, so the lookup
	// reruns the exact computation whose row the caller is asking about.
	d := s.cfg.Defaults
	var payload explain.Payload
	found := false

	switch kind {
	case "trend":
		res := analytics.DetectRisingSubtopics(records, f, analytics.TrendParams{
			WindowDays:      intOr(argInt(args, "window_days"), d.WindowDays),
			MinVolume:       intOr(argInt(args, "min_volume"), d.MinVolume),
			GrowthThreshold: floatOr(argFloat(args, "growth_threshold"), d.GrowthThreshold),
		})
		for _, row := range res.Rows {
			if row.Subtopic == name {
				payload = explain.FromTrendRow(row.Subtopic, row.Status, res.WindowDays, row.Previous, row.Recent, row.PctChange)
				found = true
				break
			}
		}
	case "ward_risk":
		res := analytics.DetectWardRisk(records, f, analytics.WardRiskParams{
			WindowDays:    intOr(argInt(args, "window_days"), d.WindowDays),
			MinWardVolume: intOr(argInt(args, "min_ward_volume"), d.MinWardVolume),
			Thresholds:    analytics.DefaultWardRiskThresholds(),
		})
		for _, row := range res.Rows {
			if row.Ward == name {
				payload = explain.FromWardRiskRow(row.Ward, row.Risk, res.WindowDays, row.Previous, row.Recent, row.PctChange)
				found = true
				break
			}
		}
	case "chronic":
		res := analytics.DetectChronicIssues(records, analytics.ChronicParams{
			Period:        argString(args, "period"),
			TopNPerPeriod: intOr(argInt(args, "top_n_per_period"), d.TopNPerPeriod),
			MinPeriods:    intOr(argInt(args, "min_periods"), d.MinPeriods),
		})
		for _, row := range res.Rows {
			if row.Subtopic == name {
				payload = explain.FromChronicRow(row.Subtopic, row.PeriodsActive, row.TotalCount)
				found = true
				break
			}
		}
	default:
		return nil, fmt.Errorf("unknown signal kind %q", kind)
	}

	if !found {
		return nil, fmt.Errorf("no %s signal found for %q in the selected range", kind, name)
	}

	return s.explain.Explain(context.Background(), payload), nil
}
