package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"civic-insight/internal/analytics"
	"civic-insight/internal/record"
	"civic-insight/internal/store"
)

type GeneratorConfig struct {
	Scenario string // "steady", "surge", "chronic"
	Count    int
	Days     int
	Now      time.Time
}

var wards = []string{
	"Ward 12", "Ward 34", "Ward 56", "Ward 71", "Ward 88",
	"Ward 103", "Ward 110", "Ward 145", "Ward 162", "Unknown",
}

var departments = []string{
	"Water Supply", "Solid Waste Management", "Roads", "Street Lighting", "Health",
}

// categoryPool maps each category to its subtopics; the generator draws a
// category first so subtopic volume follows category volume.
var categoryPool = map[string][]string{
	"Water Supply Issues":  {"No Water Supply", "Contaminated Water", "Pipeline Leakage"},
	"Garbage & Sanitation": {"Garbage Not Collected", "Overflowing Bins", "Dead Animal Removal"},
	"Road Maintenance":     {"Potholes", "Broken Footpath", "Waterlogging"},
	"Street Lighting":      {"Streetlight Not Working", "Dark Stretch"},
	"Other Civic Issues":   {"General Civic Issue"},
}

var categories = []string{
	"Water Supply Issues", "Garbage & Sanitation", "Road Maintenance",
	"Street Lighting", "Other Civic Issues",
}

var urgencies = []string{"Low", "Medium", "High"}
var sentiments = []string{"Negative", "Neutral", "Positive"}

// Scenario targets: the surge scenario floods one subtopic in the trailing
// two weeks, the chronic scenario keeps one subtopic prominent every week.
const (
	surgeSubtopic   = "Waterlogging"
	surgeCategory   = "Road Maintenance"
	chronicSubtopic = "Garbage Not Collected"
	chronicCategory = "Garbage & Sanitation"
)

// Generate produces a synthetic grievance set spanning cfg.Days up to cfg.Now.
func Generate(cfg GeneratorConfig) []record.Grievance {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Days <= 0 {
		cfg.Days = 120
	}
	end := cfg.Now.Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(cfg.Days - 1))

	out := make([]record.Grievance, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		g := baseRecord(start, cfg.Days, cfg.Now)

		switch cfg.Scenario {
		case "surge":
			// Concentrate a third of recent volume on one subtopic so the
			// trend detector has something unambiguous to find.
			recentCutoff := end.AddDate(0, 0, -13)
			if !g.CreatedDate.Before(recentCutoff) && rand.Float64() < 0.35 {
				g.Category = surgeCategory
				g.Subtopic = surgeSubtopic
			}
		case "chronic":
			// A steady share keeps the subtopic in every period's top list
			// without ever spiking, plus a pulse early in each week: the
			// weekend backlog surfaces on Monday pickups.
			share := 0.18
			weekStart := analytics.PeriodStart(g.CreatedDate, analytics.PeriodWeek)
			if g.CreatedDate.Sub(weekStart) < 48*time.Hour {
				share = 0.30
			}
			if rand.Float64() < share {
				g.Category = chronicCategory
				g.Subtopic = chronicSubtopic
			}
		}

		out = append(out, g)
	}
	return out
}

func baseRecord(start time.Time, days int, now time.Time) record.Grievance {
	created := start.AddDate(0, 0, rand.Intn(days)).
		Add(time.Duration(rand.Intn(24*60)) * time.Minute)

	category := categories[rand.Intn(len(categories))]
	subs := categoryPool[category]

	g := record.Grievance{
		ID:          uuid.NewString(),
		CreatedDate: created,
		Ward:        wards[rand.Intn(len(wards))],
		Department:  departments[rand.Intn(len(departments))],
		Category:    category,
		Subtopic:    subs[rand.Intn(len(subs))],
		Urgency:     urgencies[rand.Intn(len(urgencies))],
		Sentiment:   sentiments[rand.Intn(len(sentiments))],
		Forwarded:   rand.Float64() < 0.25,
		Source:      "mockgen",
	}

	// Roughly three quarters closed, with a fat tail past 30 days.
	if rand.Float64() < 0.75 {
		closureDays := closureSample()
		closed := created.Add(time.Duration(closureDays*24) * time.Hour)
		if closed.Before(now) {
			g.ClosedDate = &closed
			g.Escalated = closureDays > 30 || rand.Float64() < 0.05
		}
	}

	// Ratings only exist for a subset of closed grievances.
	if g.ClosedDate != nil && rand.Float64() < 0.6 {
		r := float64(1 + rand.Intn(5))
		g.FeedbackRating = &r
	}

	return g
}

// closureSample draws closure durations from a Weibull so most cases resolve
// within two weeks while a realistic tail crosses the 30-day line.
func closureSample() float64 {
	u := rand.Float64()
	if u == 0 {
		u = 0.0001
	}
	k, lambda := 1.4, 12.0
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the generated set through the in-memory store's JSONL codec so
// the output loads back with the exact same ordering rules the server uses.
func Save(outDir, source string, records []record.Grievance) error {
	mem := store.NewMemoryStore()
	mem.Put(source, records)
	if err := mem.Save(outDir, source); err != nil {
		return fmt.Errorf("save %s: %w", source, err)
	}
	return nil
}
