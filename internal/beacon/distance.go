package beacon

import "math"

// earthRadiusMeters is the mean Earth radius used for the movement
// check. Beacon distances are tens of meters; the spherical model is
// accurate enough.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two
// coordinates in decimal degrees, using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	a := sinLat*sinLat + math.Cos(lat1*rad)*math.Cos(lat2*rad)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
