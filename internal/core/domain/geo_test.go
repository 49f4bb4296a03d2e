package domain

import "testing"

func TestBoundingRegionBufferZone(t *testing.T) {
	region := BoundingRegion{
		Bounds: Bounds{South: 43.0, West: -3.0, North: 43.2, East: -2.8},
		Buffer: 0.7,
	}

	// Dead center is always inside the buffer.
	if !region.InBufferZone(Position{Lat: 43.1, Lon: -2.9}) {
		t.Errorf("center should be inside the buffer zone")
	}

	// The outer band (inside the region, outside the 70%% inner rectangle)
	// does not count as inside. Margin is 0.2*0.15 = 0.03 degrees.
	edge := Position{Lat: 43.01, Lon: -2.9}
	if region.InBufferZone(edge) {
		t.Errorf("outer band position should not be in the buffer zone")
	}
	if !region.Bounds.Contains(edge) {
		t.Errorf("outer band position is still inside the region itself")
	}

	// Fully outside the region.
	if region.InBufferZone(Position{Lat: 44.0, Lon: -2.9}) {
		t.Errorf("position outside the region cannot be in the buffer zone")
	}
}

func TestSegmentIDDeterministic(t *testing.T) {
	if SegmentID(123456, 3) != "123456-3" {
		t.Errorf("unexpected id %s", SegmentID(123456, 3))
	}

	way := RawWay{
		ID:   42,
		Name: "Gran Vía",
		Geometry: []Position{
			{Lat: 43.26, Lon: -2.93},
			{Lat: 43.261, Lon: -2.931},
			{Lat: 43.262, Lon: -2.932},
		},
	}

	first := DecomposeWay(way)
	second := DecomposeWay(way)

	if len(first.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(first.Segments))
	}
	for i := range first.Segments {
		if first.Segments[i].ID != second.Segments[i].ID {
			t.Errorf("segment %d id not reproducible: %s vs %s",
				i, first.Segments[i].ID, second.Segments[i].ID)
		}
	}
	if first.Segments[0].End != first.Segments[1].Start {
		t.Errorf("adjacent segments must share an endpoint")
	}
}

func TestDecomposeWayUnnamed(t *testing.T) {
	street := DecomposeWay(RawWay{ID: 7, Geometry: []Position{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}})
	if street.Name != "Unnamed Road" {
		t.Errorf("expected Unnamed Road, got %q", street.Name)
	}

	empty := DecomposeWay(RawWay{ID: 8, Geometry: []Position{{Lat: 1, Lon: 1}}})
	if len(empty.Segments) != 0 {
		t.Errorf("single-point way should yield no segments")
	}
}
