package analytics

import (
	"reflect"
	"testing"
	"time"

	"civic-insight/internal/record"
)

func TestAggregateTotalsAndCoverage(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	records := []record.Grievance{
		rated(closedAfter(grievanceOn("g1", day(2026, 1, 5), "Potholes"), 3), 5),
		rated(closedAfter(grievanceOn("g2", day(2026, 1, 6), "Potholes"), 33), 1),
		grievanceOn("g3", day(2026, 1, 7), "Garbage Not Collected"),
		grievanceOn("g4", day(2026, 1, 8), ""),
	}
	records[1].Escalated = true
	records[2].Forwarded = true

	ov := Aggregate(records, f, OverviewParams{}, time.Now())
	tot := ov.Totals

	if tot.TotalGrievances != 4 {
		t.Fatalf("total = %d, want 4", tot.TotalGrievances)
	}
	if tot.OpenBacklog != 2 {
		t.Errorf("open_backlog = %d, want 2", tot.OpenBacklog)
	}
	if tot.AvgClosureDays == nil || *tot.AvgClosureDays != 18.0 {
		t.Errorf("avg closure = %v, want 18.0", tot.AvgClosureDays)
	}
	if tot.MedianClosureDays == nil || *tot.MedianClosureDays != 18.0 {
		t.Errorf("median closure = %v, want 18.0", tot.MedianClosureDays)
	}
	if tot.P90ClosureDays == nil || *tot.P90ClosureDays != 33.0 {
		t.Errorf("p90 closure = %v, want 33.0", tot.P90ClosureDays)
	}
	if tot.ClosureCoverage.Known != 2 || tot.ClosureCoverage.Total != 4 || tot.ClosureCoverage.Pct != 50.0 {
		t.Errorf("closure coverage = %+v, want 2/4 (50%%)", tot.ClosureCoverage)
	}
	if tot.AvgRating == nil || *tot.AvgRating != 3.0 {
		t.Errorf("avg rating = %v, want 3.0", tot.AvgRating)
	}
	if tot.RatingCoverage.Known != 2 {
		t.Errorf("rating coverage known = %d, want 2", tot.RatingCoverage.Known)
	}
	// g4 has no subtopic label.
	if tot.AICoverage.Known != 3 || tot.AICoverage.Pct != 75.0 {
		t.Errorf("ai coverage = %+v, want 3/4 (75%%)", tot.AICoverage)
	}
	if tot.EscalatedCount != 1 || tot.EscalationRatePct != 25.0 {
		t.Errorf("escalation = %d (%v%%), want 1 (25%%)", tot.EscalatedCount, tot.EscalationRatePct)
	}
}

func TestAggregateRiskSnapshot(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	records := []record.Grievance{
		closedAfter(grievanceOn("fast", day(2026, 1, 5), "A"), 2),
		closedAfter(grievanceOn("slow", day(2026, 1, 6), "A"), 45),
		rated(grievanceOn("angry", day(2026, 1, 7), "A"), 1),
		grievanceOn("fwd", day(2026, 1, 8), "A"),
	}
	records[3].Forwarded = true

	ov := Aggregate(records, f, OverviewParams{}, time.Now())
	r := ov.Risk

	if r.Within3d.Count != 1 || r.Within3d.Pct != 25.0 {
		t.Errorf("within_3d = %+v, want 1 (25%%)", r.Within3d)
	}
	if r.Over30d.Count != 1 {
		t.Errorf("over_30d = %+v, want 1", r.Over30d)
	}
	if r.Forwarded.Count != 1 {
		t.Errorf("forwarded = %+v, want 1", r.Forwarded)
	}
	if r.LowRating.Count != 1 {
		t.Errorf("low_rating = %+v, want 1", r.LowRating)
	}
}

func TestAggregateEmptySetStaysNil(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	ov := Aggregate(nil, f, OverviewParams{}, time.Now())
	tot := ov.Totals

	if tot.TotalGrievances != 0 || tot.OpenBacklog != 0 {
		t.Errorf("totals = %+v, want zeros", tot)
	}
	if tot.AvgClosureDays != nil || tot.MedianClosureDays != nil || tot.P90ClosureDays != nil {
		t.Errorf("closure stats must stay nil on empty input, got %+v", tot)
	}
	if tot.AvgRating != nil {
		t.Errorf("avg rating must stay nil on empty input, got %v", *tot.AvgRating)
	}
	if tot.ClosureCoverage.Pct != 0 || tot.EscalationRatePct != 0 {
		t.Errorf("ratios must be 0 on empty input, got %+v", tot)
	}
	if len(ov.Insights) == 0 {
		t.Errorf("insights should still render on an empty set")
	}
}

func TestAggregateTopListsDeterministicTieBreak(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	records := []record.Grievance{
		grievanceOn("a1", day(2026, 1, 5), "Bravo"),
		grievanceOn("a2", day(2026, 1, 5), "Alpha"),
		grievanceOn("a3", day(2026, 1, 5), "Alpha"),
		grievanceOn("a4", day(2026, 1, 5), "Bravo"),
	}

	ov := Aggregate(records, f, OverviewParams{}, time.Now())
	if len(ov.TopSubtopics) != 2 {
		t.Fatalf("top subtopics = %+v, want 2 entries", ov.TopSubtopics)
	}
	// Equal counts break alphabetically.
	if ov.TopSubtopics[0].Subtopic != "Alpha" || ov.TopSubtopics[1].Subtopic != "Bravo" {
		t.Errorf("tie-break order wrong: %+v", ov.TopSubtopics)
	}
}

func TestAggregateClosedSeriesHiddenOnLowCoverage(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	records := []record.Grievance{
		closedAfter(grievanceOn("c1", day(2026, 1, 5), "A"), 2),
		grievanceOn("o1", day(2026, 1, 6), "A"),
		grievanceOn("o2", day(2026, 1, 7), "A"),
		grievanceOn("o3", day(2026, 1, 8), "A"),
		grievanceOn("o4", day(2026, 1, 9), "A"),
	}

	// 1/5 closed = 20% coverage, below the 25% default.
	ov := Aggregate(records, f, OverviewParams{}, time.Now())
	if ov.TimeSeries.ShowClosed {
		t.Errorf("closed series should be hidden at 20%% coverage")
	}
	if len(ov.TimeSeries.Rows) == 0 {
		t.Errorf("created series must still be present")
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}
	now := day(2026, 2, 1)

	records := []record.Grievance{
		rated(closedAfter(grievanceOn("i1", day(2026, 1, 5), "Potholes"), 3), 5),
		rated(closedAfter(grievanceOn("i2", day(2026, 1, 6), "Potholes"), 33), 1),
		grievanceOn("i3", day(2026, 1, 7), "Garbage Not Collected"),
		grievanceOn("i4", day(2026, 1, 8), ""),
	}
	records[1].Escalated = true
	records[2].Forwarded = true

	first := Aggregate(records, f, OverviewParams{}, now)
	second := Aggregate(records, f, OverviewParams{}, now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation diverged:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestAggregateTopCategoriesBoundedByTotal(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}

	// Blank categories fold into the shared default bucket; the top list
	// must still never count a record twice.
	records := []record.Grievance{
		grievanceOn("c1", day(2026, 1, 5), "Potholes"),
		grievanceOn("c2", day(2026, 1, 6), "Potholes"),
		grievanceOn("c3", day(2026, 1, 7), "Streetlight Not Working"),
	}
	records[1].Category = ""
	records[2].Category = ""
	records = append(records, record.Grievance{ID: "c4", CreatedDate: day(2026, 1, 8), Ward: "Ward 1"})

	ov := Aggregate(records, f, OverviewParams{TopN: 3}, time.Now())

	sum := 0
	for _, c := range ov.TopCategories {
		if c.Category == "" {
			t.Errorf("blank category leaked into top list: %+v", c)
		}
		sum += c.Count
	}
	if total := ov.Totals.TotalGrievances; sum > total {
		t.Errorf("sum(top_categories.count) = %d, exceeds total %d", sum, total)
	}
}
