package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Polyline accumulates the length of a path point by point.
type Polyline struct {
	meters  float64
	lat     float64
	lon     float64
	started bool
}

// Add extends the polyline to (lat, lon).
func (p *Polyline) Add(lat, lon float64) {
	if p.started {
		p.meters += Haversine(p.lat, p.lon, lat, lon)
	}
	p.lat, p.lon, p.started = lat, lon, true
}

// Reset starts a new polyline at (lat, lon).
func (p *Polyline) Reset(lat, lon float64) {
	p.meters = 0
	p.lat, p.lon, p.started = lat, lon, true
}

// Meters returns the accumulated length rounded to whole meters.
// Lengths beyond the uint32 range saturate.
func (p *Polyline) Meters() uint32 {
	m := math.Round(p.meters)
	if m >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(m)
}
