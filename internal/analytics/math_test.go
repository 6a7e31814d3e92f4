package analytics

import (
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"SingleItem", []float64{5.5}, 5.5},
		{"OddCount", []float64{1.1, 3.3, 2.2, 4.4, 5.5}, 3.3},
		{"EvenCount", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"Unsorted", []float64{10.5, 2.5, 8.5, 4.5, 6.5}, 6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.expected {
				t.Errorf("Median() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median mutated its input: %v", values)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"Empty", []float64{}, 0.9, 0},
		{"SingleItem", []float64{7}, 0.9, 7},
		{"P90OfTen", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.90, 9},
		{"P50", []float64{1, 2, 3, 4, 5}, 0.50, 3},
		{"P100", []float64{1, 2, 3}, 1.0, 3},
		{"P0", []float64{1, 2, 3}, 0.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.values, tt.p); got != tt.expected {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.expected)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{}); got != 0 {
		t.Errorf("Mean(empty) = %v, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Mean() = %v, want 4", got)
	}
}

func TestRounding(t *testing.T) {
	if got := Round1(33.333333); got != 33.3 {
		t.Errorf("Round1() = %v, want 33.3", got)
	}
	if got := Round2(12.346); got != 12.35 {
		t.Errorf("Round2() = %v, want 12.35", got)
	}
	if got := Round2(5.124); got != 5.12 {
		t.Errorf("Round2() = %v, want 5.12", got)
	}
}
