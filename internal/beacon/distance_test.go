package beacon

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 48.2081, lon1: 16.3713,
			lat2: 48.2081, lon2: 16.3713,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "one degree latitude at equator",
			lat1: 0, lon1: 0,
			lat2: 1, lon2: 0,
			expected:  111194.93,
			tolerance: 0.5,
		},
		{
			name: "one degree longitude at 60 north",
			lat1: 60, lon1: 0,
			lat2: 60, lon2: 1,
			expected:  55597,
			tolerance: 5,
		},
		{
			name: "hundred meter walk in Vienna",
			lat1: 48.2081, lon1: 16.3713,
			lat2: 48.2090, lon2: 16.3713,
			expected:  100.08,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("DistanceMeters() = %.2f, want %.2f (tolerance %.2f)", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	forward := DistanceMeters(48.2081, 16.3713, 48.8566, 2.3522)
	backward := DistanceMeters(48.8566, 2.3522, 48.2081, 16.3713)

	if math.Abs(forward-backward) > 0.001 {
		t.Errorf("DistanceMeters() not symmetric: %.4f vs %.4f", forward, backward)
	}
}
