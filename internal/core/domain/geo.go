package domain

// Position represents a geographic coordinate (WGS 84).
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether p lies inside the box (inclusive).
func (b Bounds) Contains(p Position) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lon >= b.West && p.Lon <= b.East
}

// BoundingRegion is a cached fetch area together with its buffer factor.
// While a position stays inside the inner buffer rectangle the street data
// cached for the region is considered valid and is not refetched.
type BoundingRegion struct {
	Bounds Bounds  `json:"bounds"`
	Buffer float64 `json:"buffer"` // inner-rectangle fraction of each dimension, e.g. 0.7
}

// InBufferZone reports whether p lies inside the inner buffer rectangle.
// The band between the buffer rectangle and the region edge is still part
// of the region, but a position there no longer counts as "safely inside".
func (r BoundingRegion) InBufferZone(p Position) bool {
	latMargin := (r.Bounds.North - r.Bounds.South) * (1 - r.Buffer) / 2
	lonMargin := (r.Bounds.East - r.Bounds.West) * (1 - r.Buffer) / 2

	return p.Lat >= r.Bounds.South+latMargin &&
		p.Lat <= r.Bounds.North-latMargin &&
		p.Lon >= r.Bounds.West+lonMargin &&
		p.Lon <= r.Bounds.East-lonMargin
}
