package analytics

import (
	"errors"
	"testing"
	"time"

	"civic-insight/internal/record"
)

func TestResolveDefaults(t *testing.T) {
	defStart := day(2026, 1, 1)
	defEnd := day(2026, 1, 31)

	f, err := Resolve(FilterSpec{}, defStart, defEnd)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !f.Start.Equal(defStart) || !f.End.Equal(defEnd) {
		t.Errorf("Resolve() range = %v..%v, want defaults", f.Start, f.End)
	}
	if f.SpanDays() != 31 {
		t.Errorf("SpanDays() = %d, want 31", f.SpanDays())
	}
}

func TestResolveExplicitDatesOverrideDefaults(t *testing.T) {
	start := day(2026, 2, 10)
	end := day(2026, 2, 20)

	f, err := Resolve(FilterSpec{StartDate: &start, EndDate: &end}, day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !f.Start.Equal(start) || !f.End.Equal(end) {
		t.Errorf("Resolve() range = %v..%v, want explicit dates", f.Start, f.End)
	}
}

func TestResolveInvalidRange(t *testing.T) {
	start := day(2026, 3, 10)
	end := day(2026, 3, 1)

	_, err := Resolve(FilterSpec{StartDate: &start, EndDate: &end}, start, start)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Resolve() error = %v, want ErrInvalidRange", err)
	}
}

func TestResolveSingleDayRangeIsValid(t *testing.T) {
	d := day(2026, 3, 10)
	f, err := Resolve(FilterSpec{StartDate: &d, EndDate: &d}, d, d)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if f.SpanDays() != 1 {
		t.Errorf("SpanDays() = %d, want 1", f.SpanDays())
	}
}

func TestResolveWardsDedupAndSort(t *testing.T) {
	f, err := Resolve(FilterSpec{
		Wards: []string{"Ward 9", " Ward 1 ", "Ward 9", "", "Ward 5"},
	}, day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []string{"Ward 1", "Ward 5", "Ward 9"}
	if len(f.Wards) != len(want) {
		t.Fatalf("Wards = %v, want %v", f.Wards, want)
	}
	for i := range want {
		if f.Wards[i] != want[i] {
			t.Errorf("Wards[%d] = %q, want %q", i, f.Wards[i], want[i])
		}
	}
}

func TestApplyDateBoundsInclusive(t *testing.T) {
	f := Filter{Start: day(2026, 1, 10), End: day(2026, 1, 20)}
	records := []record.Grievance{
		grievanceOn("before", day(2026, 1, 9), "A"),
		grievanceOn("onStart", day(2026, 1, 10), "A"),
		grievanceOn("inside", day(2026, 1, 15), "A"),
		grievanceOn("onEnd", day(2026, 1, 20), "A"),
		grievanceOn("after", day(2026, 1, 21), "A"),
	}

	got := Apply(f, records)
	if len(got) != 3 {
		t.Fatalf("Apply() kept %d records, want 3", len(got))
	}
	if got[0].ID != "onStart" || got[2].ID != "onEnd" {
		t.Errorf("Apply() boundary handling wrong: %v", got)
	}
}

func TestApplyEndOfDayTimestampStillMatches(t *testing.T) {
	f := Filter{Start: day(2026, 1, 10), End: day(2026, 1, 10)}
	lateEvening := day(2026, 1, 10).Add(23*time.Hour + 59*time.Minute)

	got := Apply(f, []record.Grievance{grievanceOn("late", lateEvening, "A")})
	if len(got) != 1 {
		t.Fatalf("Apply() dropped a record created late on the end date")
	}
}

func TestApplyWardFilterUsesDefaultKey(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31), Wards: []string{record.DefaultWard}}

	blankWard := grievanceOn("blank", day(2026, 1, 5), "A")
	blankWard.Ward = "  "
	named := grievanceOn("named", day(2026, 1, 5), "A")

	got := Apply(f, []record.Grievance{blankWard, named})
	if len(got) != 1 || got[0].ID != "blank" {
		t.Fatalf("Apply() = %v, want only the blank-ward record under %q", got, record.DefaultWard)
	}
}

func TestApplyDepartmentCaseInsensitive(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31), Department: "water supply"}

	g := grievanceOn("w1", day(2026, 1, 5), "A")
	g.Department = "Water Supply"
	other := grievanceOn("r1", day(2026, 1, 5), "A")
	other.Department = "Roads"

	got := Apply(f, []record.Grievance{g, other})
	if len(got) != 1 || got[0].ID != "w1" {
		t.Fatalf("Apply() department match failed: %v", got)
	}
}

func TestApplySkipsZeroCreatedDate(t *testing.T) {
	f := Filter{Start: day(2026, 1, 1), End: day(2026, 1, 31)}
	g := record.Grievance{ID: "broken", Subtopic: "A"}

	if got := Apply(f, []record.Grievance{g}); len(got) != 0 {
		t.Fatalf("Apply() kept a record with no created date")
	}
}
