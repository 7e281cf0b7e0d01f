package beacon

import (
	"github.com/dn9apw/meshtrack/internal/protocol/meshcom"
)

// FixSource supplies the current position fix for beaconing.
// Implementations range from a fixed configuration value to a live GPS
// feed.
type FixSource interface {
	// CurrentFix returns the latest known fix. ok is false while no
	// fix is available.
	CurrentFix() (fix meshcom.Fix, ok bool)
}

// StaticSource is a FixSource for fixed installations. The coordinates
// come from configuration and never change.
type StaticSource struct {
	fix meshcom.Fix
}

// NewStaticSource creates a fix source pinned to one coordinate. The
// altitude is optional; pass nil to beacon without one.
func NewStaticSource(latitude, longitude float64, altitudeMeters *float64) *StaticSource {
	lat, lon := latitude, longitude
	fix := meshcom.Fix{
		Latitude:  &lat,
		Longitude: &lon,
	}
	if altitudeMeters != nil {
		alt := *altitudeMeters
		fix.Altitude = &alt
	}
	return &StaticSource{fix: fix}
}

// CurrentFix always reports the configured coordinate.
func (s *StaticSource) CurrentFix() (meshcom.Fix, bool) {
	return s.fix, true
}
