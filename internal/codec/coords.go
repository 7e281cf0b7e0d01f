package codec

import (
	"fmt"
	"math"
)

// feetPerMeter is the conversion factor the MeshCom firmware uses for
// the APRS altitude field.
const feetPerMeter = 3.2808399

// ToAprsDegrees converts a signed decimal-degree coordinate into the
// APRS ddmm.mm representation: whole degrees times 100 plus decimal
// minutes. The sign is discarded; the hemisphere letter is derived
// separately by the caller from the sign of the input.
func ToAprsDegrees(decimalDegrees float64) float64 {
	abs := math.Abs(decimalDegrees)
	degrees := math.Floor(abs)
	minutes := (abs - degrees) * 60.0
	return degrees*100.0 + minutes
}

// FormatLatitude renders a latitude as the fixed-width APRS field
// "ddmm.mmN" or "ddmm.mmS": seven characters before the hemisphere
// letter, two decimal places, zero padded.
func FormatLatitude(latitude float64) string {
	hemisphere := "N"
	if latitude < 0 {
		hemisphere = "S"
	}
	return fmt.Sprintf("%07.2f%s", ToAprsDegrees(latitude), hemisphere)
}

// FormatLongitude renders a longitude as the fixed-width APRS field
// "dddmm.mmE" or "dddmm.mmW": eight characters before the hemisphere
// letter, one more leading digit than latitude (0-180 vs 0-90).
func FormatLongitude(longitude float64) string {
	hemisphere := "E"
	if longitude < 0 {
		hemisphere = "W"
	}
	return fmt.Sprintf("%08.2f%s", ToAprsDegrees(longitude), hemisphere)
}

// AltitudeToFeet converts an altitude in meters to whole feet, rounded
// to the nearest foot. Negative altitudes are clamped to 0 rather than
// rejected; the wire field cannot carry a sign.
func AltitudeToFeet(meters float64) int {
	feet := int(math.Round(meters * feetPerMeter))
	if feet < 0 {
		return 0
	}
	return feet
}

// FormatAltitude renders an altitude in meters as the APRS payload
// suffix "/A=dddddd" with the foot value zero-padded to six digits.
func FormatAltitude(meters float64) string {
	return fmt.Sprintf("/A=%06d", AltitudeToFeet(meters))
}
