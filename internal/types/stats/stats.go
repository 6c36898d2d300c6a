package stats

import "quitPathAPI/internal/types/badge"

// Snapshot is the aggregate view the badge predicates and the stats endpoint
// are computed from. It spans all challenge instances of a user, including
// cancelled ones.
type Snapshot struct {
	SmokeFreeDays           int `json:"smoke_free_days"`
	CurrentStreakDays       int `json:"current_streak_days"`
	LongestStreakDays       int `json:"longest_streak_days"`
	TotalObservations       int `json:"total_observations"`
	CompletedQuestionnaires int `json:"completed_questionnaires"`
	UnlockedMilestones      int `json:"unlocked_milestones"`
	PointsBalance           int `json:"points_balance"`
}

type UserStats struct {
	Snapshot
	Badges        []badge.Badge `json:"badges"`
	RecoveryScore float64       `json:"recovery_score"`
}
