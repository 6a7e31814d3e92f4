package rpc

import (
	"testing"
)

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"name":    "Potholes",
		"count":   float64(15), // JSON numbers arrive as float64
		"ratio":   0.5,
		"wards":   []interface{}{"Ward 1", "", "Ward 2", 7},
		"when":    "2026-01-15",
		"badDate": "15/01/2026",
	}

	if got := argString(args, "name"); got != "Potholes" {
		t.Errorf("argString = %q", got)
	}
	if got := argString(args, "missing"); got != "" {
		t.Errorf("argString(missing) = %q, want empty", got)
	}
	if got := argInt(args, "count"); got != 15 {
		t.Errorf("argInt = %d, want 15", got)
	}
	if got := argInt(args, "missing"); got != 0 {
		t.Errorf("argInt(missing) = %d, want 0", got)
	}
	if got := argFloat(args, "ratio"); got != 0.5 {
		t.Errorf("argFloat = %v, want 0.5", got)
	}
	if _, ok := argFloatOK(args, "missing"); ok {
		t.Errorf("argFloatOK(missing) ok = true")
	}

	wards := argStringSlice(args, "wards")
	if len(wards) != 2 || wards[0] != "Ward 1" || wards[1] != "Ward 2" {
		t.Errorf("argStringSlice = %v, want [Ward 1 Ward 2]", wards)
	}

	if d, ok := argDate(args, "when"); !ok || d.Year() != 2026 || d.Month() != 1 || d.Day() != 15 {
		t.Errorf("argDate = %v ok=%v", d, ok)
	}
	if _, ok := argDate(args, "badDate"); ok {
		t.Errorf("argDate accepted a non-ISO date")
	}
}
