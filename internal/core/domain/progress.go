package domain

// SegmentMatch is the result of snapping a position onto the nearest
// street segment. Distance is the true (unbiased) distance in meters.
type SegmentMatch struct {
	Segment   StreetSegment `json:"segment"`
	Street    Street        `json:"street"`
	Distance  float64       `json:"distance"`
	SnapPoint Position      `json:"snap_point"`
}

// ExplorationStats summarises ledger and XP progress.
type ExplorationStats struct {
	SegmentsExplored int     `json:"segments_explored"`
	TotalXP          int     `json:"total_xp"`
	SessionXP        int     `json:"session_xp"`
	CurrentLevel     int     `json:"current_level"`
	ExplorationDays  int     `json:"exploration_days"`
	ConsecutiveDays  int     `json:"consecutive_days"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
}

// AchievementCriteria describes the stat an achievement unlocks on.
type AchievementCriteria struct {
	Type   string `json:"type"` // segments_discovered | total_xp | session_xp | level_reached | exploration_days | consecutive_days
	Target int    `json:"target"`
}

// Achievement is a static catalogue entry.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Criteria    AchievementCriteria `json:"criteria"`
	XPReward    int                 `json:"xp_reward"`
}

// AchievementProgress reports how far a user is toward one achievement.
type AchievementProgress struct {
	Achievement Achievement `json:"achievement"`
	Unlocked    bool        `json:"unlocked"`
	Current     int         `json:"current"`
	Progress    float64     `json:"progress"` // 0..1
}

// DiscoveryEvent is published when a segment is discovered for the first
// time.
type DiscoveryEvent struct {
	SegmentID  string   `json:"segment_id"`
	StreetName string   `json:"street_name"`
	Position   Position `json:"position"`
	XPAwarded  int      `json:"xp_awarded"`
	TotalXP    int      `json:"total_xp"`
}

// SnapEvent is published for every processed position sample.
type SnapEvent struct {
	Raw        Position  `json:"raw"`
	Snapped    *Position `json:"snapped,omitempty"`
	SegmentID  string    `json:"segment_id,omitempty"`
	StreetName string    `json:"street_name,omitempty"`
	Distance   float64   `json:"distance"`
	OffRoad    bool      `json:"off_road"`
}
