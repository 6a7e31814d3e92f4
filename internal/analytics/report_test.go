package analytics

import (
	"testing"
	"time"

	"civic-insight/internal/record"
)

func TestBuildFullReportAllSectionsPresent(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 28)}

	ids := 0
	var records []record.Grievance
	records = append(records, repeatOn(&ids, day(2026, 1, 5), "Potholes", 20)...)
	records = append(records, repeatOn(&ids, day(2026, 1, 20), "Potholes", 40)...)
	for i := range records {
		records[i] = rated(closedAfter(records[i], 8), 4)
	}

	rep := BuildFullReport(records, f, 14, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	if rep.Overview == nil || rep.RisingSubtopics == nil || rep.WardRisk == nil ||
		rep.ChronicIssues == nil || rep.PainMatrix == nil || rep.Scorecard == nil {
		t.Fatalf("expected every section populated: %+v", rep)
	}
	if len(rep.DegradedSections) != 0 {
		t.Errorf("unexpected degraded sections: %v", rep.DegradedSections)
	}
	if rep.Overview.Totals.TotalGrievances != 60 {
		t.Errorf("overview total = %d, want 60", rep.Overview.Totals.TotalGrievances)
	}
	if rep.GeneratedAt == "" {
		t.Errorf("generated_at missing")
	}
}

func TestBuildFullReportEmptyInputStillCompletes(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 28)}

	rep := BuildFullReport(nil, f, 14, time.Now())
	if rep.Overview == nil || rep.Scorecard == nil {
		t.Fatalf("empty input must still produce sections")
	}
	if rep.Overview.Totals.TotalGrievances != 0 {
		t.Errorf("total = %d, want 0", rep.Overview.Totals.TotalGrievances)
	}
	if len(rep.DegradedSections) != 0 {
		t.Errorf("empty input is not a failure: %v", rep.DegradedSections)
	}
}
