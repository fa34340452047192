package calc

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name              string
		downloaded, total int
		want              int
	}{
		{"total_zero", 10, 0, 0},
		{"zero_downloaded", 0, 100, 0},
		{"half", 50, 100, 50},
		{"one_third", 1, 3, 33},
		{"two_thirds", 2, 3, 67},
		{"exact_100", 100, 100, 100},
		{"large_values", 734003200, 1468006400, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Progress(tc.downloaded, tc.total)
			if got != tc.want {
				t.Fatalf("Progress(%d, %d) = %d; want %d", tc.downloaded, tc.total, got, tc.want)
			}
		})
	}
}

func TestETA(t *testing.T) {
	tests := []struct {
		name              string
		downloaded, total int
		elapsed           time.Duration
		wantZero          bool
	}{
		{"total_zero", 10, 0, time.Second, true},
		{"nothing_downloaded", 0, 100, time.Second, true},
		{"half", 50, 100, 2 * time.Second, false},
		{"quarter", 25, 100, 4 * time.Second, false},
	}

	const tolerance = 50 * time.Millisecond

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			started := time.Now().Add(-tc.elapsed)

			got := ETA(tc.downloaded, tc.total, started)

			if tc.wantZero {
				if got != 0 {
					t.Fatalf("expected 0, got %v", got)
				}
				return
			}

			expected := time.Duration(float64(tc.elapsed) * (float64(tc.total)/float64(tc.downloaded) - 1))

			diff := got - expected
			if diff < 0 {
				diff = -diff
			}
			if diff > tolerance {
				t.Fatalf("ETA(%d, %d, -%v) = %v; want approx %v", tc.downloaded, tc.total, tc.elapsed, got, expected)
			}
		})
	}
}
