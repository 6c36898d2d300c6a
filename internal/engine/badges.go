package engine

import (
	"quitPathAPI/internal/types/badge"
	"quitPathAPI/internal/types/icon"
	"quitPathAPI/internal/types/stats"
)

type badgeRule struct {
	badge badge.Badge
	holds func(stats.Snapshot) bool
}

// Keep IDs stable; clients persist them.
var badgeRules = []badgeRule{
	{
		badge: badge.Badge{ID: "first_week", Label: "First Week", Description: "Seven smoke-free days", Icon: icon.IconLeaf},
		holds: func(s stats.Snapshot) bool { return s.SmokeFreeDays >= 7 },
	},
	{
		badge: badge.Badge{ID: "first_month", Label: "One Month Strong", Description: "Thirty smoke-free days", Icon: icon.IconShield},
		holds: func(s stats.Snapshot) bool { return s.SmokeFreeDays >= 30 },
	},
	{
		badge: badge.Badge{ID: "streak_14", Label: "Fortnight Streak", Description: "A fourteen-day streak", Icon: icon.IconFlame},
		holds: func(s stats.Snapshot) bool { return s.LongestStreakDays >= 14 },
	},
	{
		badge: badge.Badge{ID: "health_aware", Label: "Health Aware", Description: "Three completed questionnaires", Icon: icon.IconStethoscope},
		holds: func(s stats.Snapshot) bool { return s.CompletedQuestionnaires >= 3 },
	},
	{
		badge: badge.Badge{ID: "points_500", Label: "Point Collector", Description: "Five hundred points earned", Icon: icon.IconStar},
		holds: func(s stats.Snapshot) bool { return s.PointsBalance >= 500 },
	},
	{
		badge: badge.Badge{ID: "milestone_hunter", Label: "Milestone Hunter", Description: "Five milestones unlocked", Icon: icon.IconTrophy},
		holds: func(s stats.Snapshot) bool { return s.UnlockedMilestones >= 5 },
	},
}

// Badges evaluates every badge predicate against a stats snapshot. Badges are
// derived on each call, never stored, so they reflect whatever the snapshot
// says right now.
func Badges(s stats.Snapshot) []badge.Badge {
	var unlocked []badge.Badge
	for _, rule := range badgeRules {
		if rule.holds(s) {
			unlocked = append(unlocked, rule.badge)
		}
	}
	return unlocked
}
