package engine

import (
	"testing"

	"quitPathAPI/internal/types/stats"
)

func TestBadgesDerivedFromSnapshot(t *testing.T) {
	none := Badges(stats.Snapshot{})
	if len(none) != 0 {
		t.Fatalf("fresh snapshot unlocked %d badges", len(none))
	}

	s := stats.Snapshot{
		SmokeFreeDays:           31,
		LongestStreakDays:       14,
		CompletedQuestionnaires: 3,
		PointsBalance:           120,
		UnlockedMilestones:      2,
	}
	got := map[string]bool{}
	for _, b := range Badges(s) {
		got[b.ID] = true
	}
	for _, want := range []string{"first_week", "first_month", "streak_14", "health_aware"} {
		if !got[want] {
			t.Errorf("badge %s not derived", want)
		}
	}
	if got["points_500"] || got["milestone_hunter"] {
		t.Errorf("unexpected badges in %v", got)
	}
}
