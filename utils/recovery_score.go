package utils

import "math"

func CalculateRecoveryScore(longestStreak, smokeFreeDays, milestonesUnlocked int) float64 {
	streakScore := math.Pow(float64(longestStreak), 2) * 0.3
	daysScore := float64(smokeFreeDays) * 0.05
	milestoneScore := float64(milestonesUnlocked) * 1.0

	return streakScore + daysScore + milestoneScore
}
