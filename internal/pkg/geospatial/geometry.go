package geospatial

import (
	"math"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
)

const (
	earthRadiusMeters = 6371000.0

	// Planar approximation scale used for segment projection. One degree of
	// latitude is roughly 111 km; longitude is only corrected by cos(lat)
	// where a bounding box is computed. Acceptable error at city scale.
	metersPerDegree = 111000.0
)

// Haversine calculates the great-circle distance in meters between two
// positions.
func Haversine(a, b domain.Position) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// BoundingBox returns a box around a point sized by radiusMeters, with the
// longitude span widened by cos(lat).
func BoundingBox(center domain.Position, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / metersPerDegree
	lonDelta := radiusMeters / (metersPerDegree * math.Cos(toRad(center.Lat)))

	return domain.Bounds{
		South: center.Lat - latDelta,
		West:  center.Lon - lonDelta,
		North: center.Lat + latDelta,
		East:  center.Lon + lonDelta,
	}
}

// ProjectOntoSegment returns the closest point on the closed segment
// [segStart, segEnd] to p, computed by planar projection in degree space.
// The projection parameter is clamped to [0,1], so the result never lies
// beyond an endpoint.
func ProjectOntoSegment(p, segStart, segEnd domain.Position) domain.Position {
	ax, ay := segStart.Lat, segStart.Lon
	cx := segEnd.Lat - ax
	cy := segEnd.Lon - ay

	lenSq := cx*cx + cy*cy
	if lenSq == 0 {
		return segStart
	}

	t := ((p.Lat-ax)*cx + (p.Lon-ay)*cy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return domain.Position{Lat: ax + t*cx, Lon: ay + t*cy}
}

// DistanceToSegment returns the distance in meters from p to the closed
// segment, using the same planar approximation as ProjectOntoSegment.
// A degenerate segment collapses to point distance.
func DistanceToSegment(p, segStart, segEnd domain.Position) float64 {
	proj := ProjectOntoSegment(p, segStart, segEnd)
	dx := p.Lat - proj.Lat
	dy := p.Lon - proj.Lon
	return math.Sqrt(dx*dx+dy*dy) * metersPerDegree
}

// Bearing returns the direction of the start→end vector in degrees
// [0,360), measured in degree space.
func Bearing(start, end domain.Position) float64 {
	dy := end.Lat - start.Lat
	dx := end.Lon - start.Lon
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Midpoint returns the planar midpoint of a segment.
func Midpoint(a, b domain.Position) domain.Position {
	return domain.Position{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
