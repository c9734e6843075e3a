package geo

import "math"

const (
	// EarthRadiusMiles is the mean Earth radius used for all distance math.
	EarthRadiusMiles = 3958.8
	kmPerMile        = 1.609344
)

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether the pair lies inside the WGS84 range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceMiles calculates the great-circle distance between two points using the haversine formula.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push a slightly outside [0,1] near antipodes
	a = math.Max(0, math.Min(1, a))

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(a))
}

// DistanceKm is DistanceMiles converted to kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceMiles(lat1, lon1, lat2, lon2) * kmPerMile
}

// Between returns the distance in miles between two coordinate pairs.
func Between(from, to Coordinates) float64 {
	return DistanceMiles(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// RoundTenth rounds a distance for presentation.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
