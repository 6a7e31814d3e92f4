package analytics

import (
	"fmt"
	"time"

	"civic-insight/internal/record"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// grievanceOn builds a minimal record created on the given day.
func grievanceOn(id string, created time.Time, sub string) record.Grievance {
	return record.Grievance{
		ID:          id,
		CreatedDate: created,
		Subtopic:    sub,
		Category:    "Road Maintenance",
		Ward:        "Ward 1",
	}
}

// closedAfter marks the record closed the given number of days after creation.
func closedAfter(g record.Grievance, days float64) record.Grievance {
	closed := g.CreatedDate.Add(time.Duration(days*24) * time.Hour)
	g.ClosedDate = &closed
	return g
}

func rated(g record.Grievance, rating float64) record.Grievance {
	g.FeedbackRating = &rating
	return g
}

// repeatOn emits n copies of a subtopic created on one day, with unique IDs.
func repeatOn(ids *int, created time.Time, sub string, n int) []record.Grievance {
	out := make([]record.Grievance, 0, n)
	for i := 0; i < n; i++ {
		*ids++
		out = append(out, grievanceOn(fmt.Sprintf("G-%d", *ids), created, sub))
	}
	return out
}
