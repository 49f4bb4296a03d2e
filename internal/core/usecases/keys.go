package usecases

// StateStore keys. Stable across releases; exploration progress persisted
// under them must survive upgrades.
const (
	stateKeyExploredSegments = "wanderlust:explored_segments"
	stateKeyExploredGeometry = "wanderlust:explored_segment_data"
	stateKeyTotalXP          = "wanderlust:xp"
	stateKeyRouteHistory     = "wanderlust:routes"
	stateKeyAchievements     = "wanderlust:achievements"
	stateKeyExplorationDays  = "wanderlust:exploration_days"
)
