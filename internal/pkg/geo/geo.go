// Package geo holds the small amount of spherical math the service needs
// outside the database: distance checks and bounding boxes for radius searches.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius
const EarthRadiusKm = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm returns the great-circle distance between two points in kilometres
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Box is a longitude/latitude bounding box
type Box struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// BoundingBox returns a box containing every point within radiusKm of the
// centre. Near the poles or the antimeridian it widens to the full longitude range.
func BoundingBox(lat, lon, radiusKm float64) Box {
	angular := radiusKm / EarthRadiusKm
	dLat := angular * 180 / math.Pi
	minLat := math.Max(lat-dLat, -90)
	maxLat := math.Min(lat+dLat, 90)

	ratio := math.Sin(angular) / math.Cos(toRadians(lat))
	if ratio >= 1 || minLat == -90 || maxLat == 90 {
		return Box{MinLon: -180, MinLat: minLat, MaxLon: 180, MaxLat: maxLat}
	}

	dLon := math.Asin(ratio) * 180 / math.Pi
	minLon, maxLon := lon-dLon, lon+dLon
	if minLon < -180 || maxLon > 180 {
		return Box{MinLon: -180, MinLat: minLat, MaxLon: 180, MaxLat: maxLat}
	}
	return Box{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}
