package delivery

import "math"

const earthRadiusKm = 6371.0088

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Origin is the restaurant.
var Origin = Point{Lat: 25.0549998, Lon: 121.5377779}

// Distance is the great-circle distance in kilometres.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
