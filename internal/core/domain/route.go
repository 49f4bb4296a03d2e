package domain

import "time"

// WaypointKind tags the role a waypoint plays in a suggested route.
type WaypointKind string

const (
	WaypointStart      WaypointKind = "start"
	WaypointWalk       WaypointKind = "walk"
	WaypointFollow     WaypointKind = "follow"
	WaypointTurnaround WaypointKind = "turnaround"
	WaypointReturn     WaypointKind = "return"
)

// Waypoint is an instructed stop along a suggested route.
type Waypoint struct {
	Position    Position     `json:"position"`
	Instruction string       `json:"instruction"`
	Kind        WaypointKind `json:"kind"`
}

// CandidateSegment is an undiscovered segment annotated for route building.
type CandidateSegment struct {
	StreetSegment
	StreetName       string   `json:"street_name"`
	Midpoint         Position `json:"midpoint"`
	DistanceFromUser float64  `json:"distance_from_user"` // meters
	LengthMeters     float64  `json:"length_meters"`
}

// RouteSuggestion is an assembled walking route over undiscovered
// segments. Ephemeral; never persisted.
type RouteSuggestion struct {
	Waypoints       []Waypoint         `json:"waypoints"`
	Segments        []CandidateSegment `json:"segments"`
	TotalDistanceKm float64            `json:"total_distance_km"`
	SegmentCount    int                `json:"segment_count"`
	EstimatedXP     float64            `json:"estimated_xp"`
}

// SavedRoute is a finished tracking session's walked polyline.
type SavedRoute struct {
	ID             string     `json:"id"`
	Points         []Position `json:"points"`
	DistanceMeters float64    `json:"distance_meters"`
	SavedAt        time.Time  `json:"saved_at"`
}
