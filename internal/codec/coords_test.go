package codec

import (
	"math"
	"testing"
)

func TestToAprsDegrees(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{
			name:  "zero",
			input: 0.0,
			want:  0.0,
		},
		{
			name:  "half degree becomes thirty minutes",
			input: 50.5,
			want:  5030.0,
		},
		{
			name:  "negative input ignores sign",
			input: -1.25,
			want:  125.0,
		},
		{
			name:  "vienna latitude",
			input: 48.2081,
			want:  4812.486,
		},
		{
			name:  "sydney longitude",
			input: 151.2093,
			want:  15112.558,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAprsDegrees(tt.input)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ToAprsDegrees(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatLatitude(t *testing.T) {
	tests := []struct {
		name     string
		latitude float64
		want     string
	}{
		{
			name:     "northern hemisphere",
			latitude: 48.2081,
			want:     "4812.49N",
		},
		{
			name:     "southern hemisphere",
			latitude: -34.9285,
			want:     "3455.71S",
		},
		{
			name:     "equator is north",
			latitude: 0.0,
			want:     "0000.00N",
		},
		{
			name:     "single digit degrees zero padded",
			latitude: 1.5,
			want:     "0130.00N",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLatitude(tt.latitude)
			if got != tt.want {
				t.Errorf("FormatLatitude(%v) = %q, want %q", tt.latitude, got, tt.want)
			}
			// Seven characters of digits plus the hemisphere letter.
			if len(got) != 8 {
				t.Errorf("FormatLatitude(%v) length = %d, want 8", tt.latitude, len(got))
			}
		})
	}
}

func TestFormatLongitude(t *testing.T) {
	tests := []struct {
		name      string
		longitude float64
		want      string
	}{
		{
			name:      "eastern hemisphere",
			longitude: 16.3738,
			want:      "01622.43E",
		},
		{
			name:      "western hemisphere",
			longitude: -58.3816,
			want:      "05822.90W",
		},
		{
			name:      "three digit degrees",
			longitude: 151.2093,
			want:      "15112.56E",
		},
		{
			name:      "prime meridian is east",
			longitude: 0.0,
			want:      "00000.00E",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLongitude(tt.longitude)
			if got != tt.want {
				t.Errorf("FormatLongitude(%v) = %q, want %q", tt.longitude, got, tt.want)
			}
			// Eight characters of digits plus the hemisphere letter.
			if len(got) != 9 {
				t.Errorf("FormatLongitude(%v) length = %d, want 9", tt.longitude, len(got))
			}
		})
	}
}

func TestAltitudeToFeet(t *testing.T) {
	tests := []struct {
		name   string
		meters float64
		want   int
	}{
		{
			name:   "zero meters",
			meters: 0.0,
			want:   0,
		},
		{
			name:   "negative clamped to zero",
			meters: -5.0,
			want:   0,
		},
		{
			name:   "one hundred meters",
			meters: 100.0,
			want:   328,
		},
		{
			name:   "rounds to nearest foot",
			meters: 0.5, // 1.64 ft
			want:   2,
		},
		{
			name:   "high altitude",
			meters: 2000.0,
			want:   6562,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AltitudeToFeet(tt.meters)
			if got != tt.want {
				t.Errorf("AltitudeToFeet(%v) = %d, want %d", tt.meters, got, tt.want)
			}
		})
	}
}

func TestFormatAltitude(t *testing.T) {
	tests := []struct {
		name   string
		meters float64
		want   string
	}{
		{
			name:   "zero meters",
			meters: 0.0,
			want:   "/A=000000",
		},
		{
			name:   "negative clamped",
			meters: -5.0,
			want:   "/A=000000",
		},
		{
			name:   "one hundred meters",
			meters: 100.0,
			want:   "/A=000328",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAltitude(tt.meters)
			if got != tt.want {
				t.Errorf("FormatAltitude(%v) = %q, want %q", tt.meters, got, tt.want)
			}
		})
	}
}
