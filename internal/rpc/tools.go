package rpc

// filterProps returns the shared filter arguments accepted by every
// analytics tool. Dates are ISO (YYYY-MM-DD); missing dates fall back to
// the trailing 30 days.
func filterProps() map[string]interface{} {
	return map[string]interface{}{
		"source": map[string]interface{}{
			"type":        "string",
			"description": "Dataset source to analyze. Defaults to the full dataset.",
		},
		"start_date": map[string]interface{}{
			"type":        "string",
			"description": "Inclusive range start (YYYY-MM-DD).",
		},
		"end_date": map[string]interface{}{
			"type":        "string",
			"description": "Inclusive range end (YYYY-MM-DD).",
		},
		"wards": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Restrict to these wards.",
		},
		"department": map[string]interface{}{
			"type":        "string",
			"description": "Restrict to a single department (case-insensitive).",
		},
		"category": map[string]interface{}{
			"type":        "string",
			"description": "Restrict to a single category.",
		},
	}
}

func toolSpec(name, description string, extra map[string]interface{}) map[string]interface{} {
	props := filterProps()
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": props,
		},
	}
}

func (s *Server) listTools() map[string]interface{} {
	intArg := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	numArg := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}

	tools := []interface{}{
		map[string]interface{}{
			"name":        "list_sources",
			"description": "List the dataset sources available for analysis.",
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		toolSpec("get_overview",
			"Aggregate grievance totals, closure and rating statistics, daily series, and risk indicators for a filtered slice of the dataset.",
			map[string]interface{}{
				"top_n": intArg("How many top categories and subtopics to return (3-15, default 10)."),
			}),
		toolSpec("detect_rising_subtopics",
			"Compare the recent window against the preceding window of equal length and rank subtopics by volume growth.",
			map[string]interface{}{
				"window_days":      intArg("Window length in days (3-60, default 14)."),
				"min_volume":       intArg("Minimum recent-window volume for a subtopic to qualify (1-2000, default 10)."),
				"growth_threshold": numArg("Fractional growth above which a subtopic is classified rising (default 0.5)."),
				"top_n":            intArg("Maximum rows returned (5-50, default 15)."),
			}),
		toolSpec("detect_ward_risk",
			"Score each ward's recent grievance growth and concentration into HIGH/MEDIUM/LOW risk levels.",
			map[string]interface{}{
				"window_days":     intArg("Window length in days (3-60, default 14)."),
				"min_ward_volume": intArg("Minimum recent-window volume for a ward to qualify (5-20000, default 30)."),
				"limit":           intArg("Maximum rows returned (default 30)."),
			}),
		toolSpec("detect_chronic_issues",
			"Find subtopics that recur across many calendar periods rather than spiking once.",
			map[string]interface{}{
				"period":           map[string]interface{}{"type": "string", "description": "Bucketing period: week or month (default week)."},
				"top_n_per_period": intArg("Rank depth per period, dense-ranked (3-20, default 5)."),
				"min_periods":      intArg("Minimum periods in the top list to qualify as chronic (2-52, default 4)."),
				"limit":            intArg("Maximum rows returned (5-50, default 20)."),
			}),
		toolSpec("get_pain_matrix",
			"Place high-volume subtopics on a resolution-speed vs. satisfaction quadrant and rank the most painful.",
			map[string]interface{}{
				"top_n":                 intArg("How many highest-volume subtopics to place (3-15, default 10)."),
				"closure_threshold":     numArg("Median closure days above which a subtopic counts as slow. Defaults to the dataset median."),
				"low_rating_threshold":  numArg("Low-rating percentage at or above which a subtopic counts as dissatisfied. Defaults to the dataset median."),
			}),
		toolSpec("get_scorecard",
			"Grade the filtered slice on closure speed, escalation rate, citizen rating, and data coverage.",
			nil),
		toolSpec("get_full_report",
			"Run overview, trend, ward-risk, chronic, pain-matrix, and scorecard analyses in one call. Sections degrade independently on failure.",
			map[string]interface{}{
				"window_days": intArg("Window length for the trend sections (3-60, default 14)."),
			}),
		toolSpec("explain_signal",
			"Request a short narrative explanation for a detected signal from the explanation service.",
			map[string]interface{}{
				"kind":  map[string]interface{}{"type": "string", "description": "Signal kind: trend, ward_risk, or chronic."},
				"name":  map[string]interface{}{"type": "string", "description": "Subtopic or ward the signal belongs to."},
			}),
	}

	return map[string]interface{}{"tools": tools}
}
