package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"civic-insight/internal/analytics"
	"civic-insight/internal/explain"
	"civic-insight/internal/record"
)

// defaultRangeDays mirrors the stdio server's fallback window.
const defaultRangeDays = 30

// errBadQuery marks a malformed query parameter; mapped to 400.
var errBadQuery = errors.New("bad query parameter")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.Sources(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "record store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sources": sources, "count": len(sources)})
}

// parseFilter reads the shared filter parameters every analytics route
// accepts. Wards may be passed comma-separated or repeated.
func parseFilter(r *http.Request) (analytics.FilterSpec, error) {
	q := r.URL.Query()
	spec := analytics.FilterSpec{
		Source:     q.Get("source"),
		Department: q.Get("department"),
		Category:   q.Get("category"),
	}
	for _, raw := range q["wards"] {
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				spec.Wards = append(spec.Wards, w)
			}
		}
	}
	t, ok, err := queryDate(r, "start_date")
	if err != nil {
		return spec, err
	}
	if ok {
		spec.StartDate = &t
	}
	t, ok, err = queryDate(r, "end_date")
	if err != nil {
		return spec, err
	}
	if ok {
		spec.EndDate = &t
	}
	return spec, nil
}

func (s *Server) filteredRecords(r *http.Request) ([]record.Grievance, analytics.Filter, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(defaultRangeDays - 1))

	spec, err := parseFilter(r)
	if err != nil {
		return nil, analytics.Filter{}, err
	}
	f, err := analytics.Resolve(spec, start, end)
	if err != nil {
		return nil, analytics.Filter{}, err
	}

	records, err := s.store.Snapshot(r.Context(), f.Source)
	if err != nil {
		return nil, analytics.Filter{}, fmt.Errorf("%w: %v", analytics.ErrUpstreamUnavailable, err)
	}
	return analytics.Apply(f, records), f, nil
}

func writeFilterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidRange), errors.Is(err, errBadQuery):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrUpstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	records, f, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	params := analytics.OverviewParams{TopN: queryInt(r, "top_n")}
	respondJSON(w, http.StatusOK, analytics.Aggregate(records, f, params, time.Now().UTC()))
}

func (s *Server) handleRisingSubtopics(w http.ResponseWriter, r *http.Request) {
	records, f, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	params := analytics.TrendParams{
		WindowDays:      queryInt(r, "window_days"),
		MinVolume:       queryInt(r, "min_volume"),
		GrowthThreshold: queryFloat(r, "growth_threshold"),
		TopN:            queryInt(r, "top_n"),
	}
	respondJSON(w, http.StatusOK, analytics.DetectRisingSubtopics(records, f, params))
}

func (s *Server) handleWardRisk(w http.ResponseWriter, r *http.Request) {
	records, f, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	params := analytics.WardRiskParams{
		WindowDays:    queryInt(r, "window_days"),
		MinWardVolume: queryInt(r, "min_ward_volume"),
		Limit:         queryInt(r, "limit"),
		Thresholds:    analytics.DefaultWardRiskThresholds(),
	}
	respondJSON(w, http.StatusOK, analytics.DetectWardRisk(records, f, params))
}

func (s *Server) handleChronicIssues(w http.ResponseWriter, r *http.Request) {
	records, _, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	params := analytics.ChronicParams{
		Period:        r.URL.Query().Get("period"),
		TopNPerPeriod: queryInt(r, "top_n_per_period"),
		MinPeriods:    queryInt(r, "min_periods"),
		Limit:         queryInt(r, "limit"),
	}
	respondJSON(w, http.StatusOK, analytics.DetectChronicIssues(records, params))
}

func (s *Server) handlePainMatrix(w http.ResponseWriter, r *http.Request) {
	records, _, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	params := analytics.PainParams{TopN: queryInt(r, "top_n")}
	if v, ok := queryFloatOK(r, "closure_threshold"); ok {
		params.XThresholdDays = &v
	}
	if v, ok := queryFloatOK(r, "low_rating_threshold"); ok {
		params.YThresholdPct = &v
	}
	respondJSON(w, http.StatusOK, analytics.ScorePainMatrix(records, params))
}

func (s *Server) handleScorecard(w http.ResponseWriter, r *http.Request) {
	records, f, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	ov := analytics.Aggregate(records, f, analytics.OverviewParams{}, time.Now().UTC())
	respondJSON(w, http.StatusOK, analytics.ScorecardFromOverview(ov))
}

func (s *Server) handleFullReport(w http.ResponseWriter, r *http.Request) {
	records, f, err := s.filteredRecords(r)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	report := analytics.BuildFullReport(records, f, queryInt(r, "window_days"), time.Now().UTC())
	respondJSON(w, http.StatusOK, report)
}

// handleExplain proxies a signal row to the explanation service. The body is
// a pre-built payload; a missing or slow service never fails the request.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind       string  `json:"kind"`
		Name       string  `json:"name"`
		Label      string  `json:"label"`
		WindowDays int     `json:"window_days"`
		Previous   int     `json:"previous"`
		Recent     int     `json:"recent"`
		PctChange  float64 `json:"pct_change"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Kind == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "kind and name are required")
		return
	}

	payload := explain.Payload{
		Kind:       req.Kind,
		Name:       req.Name,
		Label:      req.Label,
		WindowDays: req.WindowDays,
		Previous:   req.Previous,
		Recent:     req.Recent,
		PctChange:  req.PctChange,
	}
	respondJSON(w, http.StatusOK, s.explain.Explain(r.Context(), payload))
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := queryFloatOK(r, key)
	return v
}

func queryFloatOK(r *http.Request, key string) (float64, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryDate parses a YYYY-MM-DD query value. A malformed value is an error,
// never a silent fallback to the default range.
func queryDate(r *http.Request, key string) (time.Time, bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", errBadQuery, key, s)
	}
	return t, true, nil
}
