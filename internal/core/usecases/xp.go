package usecases

import "math"

// DefaultXPPerMeter converts discovered street meters into XP.
const DefaultXPPerMeter = 0.2

// XPForLength converts a discovered segment length into whole XP.
func XPForLength(lengthMeters, xpPerMeter float64) int {
	return int(math.Round(lengthMeters * xpPerMeter))
}

// LevelForXP maps cumulative XP onto a level. The curve is quadratic:
// level n starts at 250*(n-1)^2 XP, so early levels come quickly and
// later ones take sustained exploration.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(totalXP)/250))
}
