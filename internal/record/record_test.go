package record

import (
	"testing"
	"time"
)

func TestClosureDays(t *testing.T) {
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	closed := created.Add(72 * time.Hour)
	g := Grievance{CreatedDate: created, ClosedDate: &closed}
	if d := g.ClosureDays(); d == nil || *d != 3.0 {
		t.Errorf("ClosureDays() = %v, want 3.0", d)
	}

	open := Grievance{CreatedDate: created}
	if d := open.ClosureDays(); d != nil {
		t.Errorf("ClosureDays() on an open record = %v, want nil", *d)
	}

	// Closed before created is inconsistent data, not a negative duration.
	before := created.Add(-24 * time.Hour)
	bad := Grievance{CreatedDate: created, ClosedDate: &before}
	if d := bad.ClosureDays(); d != nil {
		t.Errorf("ClosureDays() with closed<created = %v, want nil", *d)
	}
}

func TestRatingBand(t *testing.T) {
	tests := []struct {
		name   string
		rating *float64
		want   *float64
	}{
		{"Nil", nil, nil},
		{"Valid", fp(4), fp(4)},
		{"LowerBound", fp(1), fp(1)},
		{"UpperBound", fp(5), fp(5)},
		{"BelowBand", fp(0), nil},
		{"AboveBand", fp(9), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grievance{FeedbackRating: tt.rating}
			got := g.Rating()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Rating() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Rating() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestGroupKeysFoldBlanks(t *testing.T) {
	g := Grievance{Subtopic: "  ", Category: "", Ward: "\t"}
	if got := g.SubtopicKey(); got != DefaultSubtopic {
		t.Errorf("SubtopicKey() = %q, want %q", got, DefaultSubtopic)
	}
	if got := g.CategoryKey(); got != DefaultCategory {
		t.Errorf("CategoryKey() = %q, want %q", got, DefaultCategory)
	}
	if got := g.WardKey(); got != DefaultWard {
		t.Errorf("WardKey() = %q, want %q", got, DefaultWard)
	}
	if g.HasSubtopic() {
		t.Errorf("HasSubtopic() = true for a blank label")
	}

	labeled := Grievance{Subtopic: " Potholes "}
	if got := labeled.SubtopicKey(); got != "Potholes" {
		t.Errorf("SubtopicKey() = %q, want trimmed Potholes", got)
	}
	if !labeled.HasSubtopic() {
		t.Errorf("HasSubtopic() = false for a real label")
	}
}

func fp(v float64) *float64 { return &v }
