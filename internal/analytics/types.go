package analytics

// Coverage qualifies the reliability of a metric computed over a field that
// may be null in the source data. Known counts the rows where the field was
// present; consumers use it to distinguish "no data" from "zero value".
type Coverage struct {
	Known int     `json:"known"`
	Total int     `json:"total"`
	Pct   float64 `json:"pct"`
}

// NewCoverage builds a coverage pair; Pct is 0 when Total is 0.
func NewCoverage(known, total int) Coverage {
	c := Coverage{Known: known, Total: total}
	if total > 0 {
		c.Pct = Round1(100.0 * float64(known) / float64(total))
	}
	return c
}

// CategoryCount is a group-by row for category volumes.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SubtopicCount is a group-by row for subtopic volumes.
type SubtopicCount struct {
	Subtopic string `json:"subTopic"`
	Count    int    `json:"count"`
}
