// Package record defines the immutable grievance fact row consumed by every
// analytics component. Records are owned by the upstream store; nothing in this
// module mutates them.
package record

import (
	"strings"
	"time"
)

// Default group labels used when AI enrichment or ward data is missing.
// These mirror the upstream dataset's coalesce defaults so group keys stay
// comparable across store implementations.
const (
	DefaultSubtopic = "General Civic Issue"
	DefaultCategory = "Other Civic Issues"
	DefaultWard     = "Unknown"
)

// Grievance is a single complaint record. Optional fields are pointers:
// a nil ClosedDate or FeedbackRating means "not known", never zero.
type Grievance struct {
	ID          string     `json:"id"`
	CreatedDate time.Time  `json:"created_date"`
	ClosedDate  *time.Time `json:"closed_date,omitempty"`

	Ward       string `json:"ward"`
	Department string `json:"department"`
	Category   string `json:"category"`
	Subtopic   string `json:"subtopic,omitempty"`

	Urgency   string `json:"urgency,omitempty"`   // Low / Medium / High
	Sentiment string `json:"sentiment,omitempty"` // Negative / Neutral / Positive

	FeedbackRating *float64 `json:"feedback_rating,omitempty"` // 1..5
	Forwarded      bool     `json:"forwarded"`
	Escalated      bool     `json:"escalated"`

	Source string `json:"source"`
}

// ClosureDays returns the number of days between creation and closure.
// Returns nil when the record is still open or the dates are inconsistent
// (closure before creation), so consumers never see a misleading zero.
func (g Grievance) ClosureDays() *float64 {
	if g.ClosedDate == nil || g.CreatedDate.IsZero() {
		return nil
	}
	d := g.ClosedDate.Sub(g.CreatedDate).Hours() / 24.0
	if d < 0 {
		return nil
	}
	return &d
}

// Rating returns the feedback rating if it is present and inside the valid
// 1..5 band, nil otherwise.
func (g Grievance) Rating() *float64 {
	if g.FeedbackRating == nil {
		return nil
	}
	r := *g.FeedbackRating
	if r < 1 || r > 5 {
		return nil
	}
	return &r
}

// SubtopicKey returns the trimmed AI subtopic, folding blanks into the
// shared default label.
func (g Grievance) SubtopicKey() string {
	if s := strings.TrimSpace(g.Subtopic); s != "" {
		return s
	}
	return DefaultSubtopic
}

// CategoryKey returns the trimmed category, folding blanks into the default.
func (g Grievance) CategoryKey() string {
	if c := strings.TrimSpace(g.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// WardKey returns the trimmed ward name, folding blanks into "Unknown".
func (g Grievance) WardKey() string {
	if w := strings.TrimSpace(g.Ward); w != "" {
		return w
	}
	return DefaultWard
}

// HasSubtopic reports whether the record carries a real AI subtopic label,
// i.e. it counts toward AI coverage.
func (g Grievance) HasSubtopic() bool {
	return strings.TrimSpace(g.Subtopic) != ""
}
