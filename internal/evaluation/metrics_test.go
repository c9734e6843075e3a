package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"all relevant found", []string{"a", "b"}, []string{"a", "b", "c"}, 7, 1.0},
		{"half found", []string{"a", "b", "c", "d"}, []string{"a", "x", "b"}, 7, 0.5},
		{"nothing retrieved", []string{"a"}, nil, 7, 0.0},
		{"no relevant ids", nil, []string{"a"}, 7, 0.0},
		{"cutoff excludes later hits", []string{"a", "b", "c"}, []string{"a", "b", "x", "y", "c"}, 3, 2.0 / 3.0},
		{"duplicates counted once", []string{"a", "b"}, []string{"a", "a", "a"}, 7, 0.5},
		{"negative k means no cutoff", []string{"a", "c"}, []string{"a", "b", "c"}, -1, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.relevant, tt.retrieved, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("RecallAtK() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"first position", []string{"a"}, []string{"a", "b"}, 7, 1.0},
		{"third position", []string{"c"}, []string{"a", "b", "c"}, 7, 1.0 / 3.0},
		{"earliest relevant wins", []string{"b", "c"}, []string{"a", "c", "b"}, 7, 0.5},
		{"beyond cutoff", []string{"c"}, []string{"a", "b", "c"}, 2, 0.0},
		{"no relevant ids", nil, []string{"a"}, 7, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MRRAtK(tt.relevant, tt.retrieved, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("MRRAtK() = %f, want %f", got, tt.want)
			}
		})
	}
}
