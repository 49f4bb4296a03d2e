package domain

import "fmt"

// RawWay is an ordered way geometry as returned by the street-data
// provider, before segment decomposition.
type RawWay struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Highway  string     `json:"highway"`
	Geometry []Position `json:"geometry"`
}

// StreetSegment is an atomic straight-line piece of a street way between
// two consecutive geometry points.
type StreetSegment struct {
	ID       string   `json:"id"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
	Explored bool     `json:"explored"`
}

// Street is a named way owning an ordered sequence of segments. Adjacent
// segments share an endpoint.
type Street struct {
	WayID    int64           `json:"way_id"`
	Name     string          `json:"name"`
	Highway  string          `json:"highway"`
	Segments []StreetSegment `json:"segments"`
}

// SegmentID derives the stable identifier for the i-th segment of a way.
// Identity depends only on the way and the ordinal position, so refetching
// the same way from a different bounding box yields matching IDs.
func SegmentID(wayID int64, index int) string {
	return fmt.Sprintf("%d-%d", wayID, index)
}

// DecomposeWay splits a raw way into segments with deterministic IDs.
// A way with fewer than two geometry points yields a street with no
// segments.
func DecomposeWay(way RawWay) Street {
	name := way.Name
	if name == "" {
		name = "Unnamed Road"
	}

	street := Street{
		WayID:   way.ID,
		Name:    name,
		Highway: way.Highway,
	}
	for i := 0; i+1 < len(way.Geometry); i++ {
		street.Segments = append(street.Segments, StreetSegment{
			ID:    SegmentID(way.ID, i),
			Start: way.Geometry[i],
			End:   way.Geometry[i+1],
		})
	}
	return street
}

// DiscoveredSegment is the lightweight geometry record the ledger keeps for
// a discovered segment so it can be redrawn without a live fetch.
type DiscoveredSegment struct {
	ID         string   `json:"id"`
	Start      Position `json:"start"`
	End        Position `json:"end"`
	StreetName string   `json:"street_name"`
}
