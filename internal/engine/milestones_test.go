package engine

import (
	"testing"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

func TestMilestoneUnlocksExactlyAtThreshold(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	// daysSmokeFree progressing 0,1,2,3: m_day3 fires only at the last step.
	for _, days := range []int{0, 1, 2} {
		var events []Event
		ch, events = UnlockMilestones(ch, ct, days, day(days))
		if ch.HasMilestone("m_day3") {
			t.Fatalf("m_day3 unlocked early at %d days", days)
		}
		for _, ev := range events {
			if ev.MilestoneID == "m_day3" {
				t.Fatalf("m_day3 event at %d days", days)
			}
		}
	}

	ch, events := UnlockMilestones(ch, ct, 3, day(3))
	if !ch.HasMilestone("m_day3") {
		t.Fatal("m_day3 not unlocked at 3 days")
	}
	found := false
	for _, ev := range events {
		if ev.Type == EventMilestoneUnlocked && ev.MilestoneID == "m_day3" {
			found = true
			if ev.Points != 30 {
				t.Errorf("points = %d, want 30", ev.Points)
			}
		}
	}
	if !found {
		t.Fatal("no MilestoneUnlocked event for m_day3")
	}
}

func TestUnlockingIsMonotonicAndIdempotent(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	ch, events := UnlockMilestones(ch, ct, 7, day(7))
	if len(events) != 3 {
		t.Fatalf("expected 3 unlocks at 7 days, got %d", len(events))
	}

	// Re-evaluating with the same or even a smaller day count must neither
	// revoke nor re-emit anything.
	again, events := UnlockMilestones(ch, ct, 7, day(7))
	if len(events) != 0 {
		t.Errorf("re-evaluation emitted %d events", len(events))
	}
	if len(again.UnlockedMilestones) != 3 {
		t.Errorf("unlocked set shrank: %v", again.UnlockedMilestones)
	}
	smaller, events := UnlockMilestones(again, ct, 1, day(8))
	if len(events) != 0 || len(smaller.UnlockedMilestones) != 3 {
		t.Error("unlocked milestones must never be revoked")
	}
}

func TestNoUnlocksOutsideQuittingMode(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeReduction)

	ch, events := UnlockMilestones(ch, ct, 30, day(30))
	if len(events) != 0 || len(ch.UnlockedMilestones) != 0 {
		t.Errorf("reduction mode unlocked milestones: %v", ch.UnlockedMilestones)
	}
}

func TestNextMilestone(t *testing.T) {
	ct := quitSmokingType()

	next := NextMilestone(ct, 0)
	if next == nil || next.ID != "m_day1" {
		t.Fatalf("NextMilestone(0) = %+v, want m_day1", next)
	}
	next = NextMilestone(ct, 3)
	if next == nil || next.ID != "m_week" {
		t.Fatalf("NextMilestone(3) = %+v, want m_week (strictly greater)", next)
	}
	if NextMilestone(ct, 7) != nil {
		t.Error("no milestone beyond the ladder, want nil")
	}
}

func TestNextMilestoneTieBrokenByID(t *testing.T) {
	ct := &challengetype.ChallengeType{
		ID:    "tie",
		Modes: []userchallenge.Mode{userchallenge.ModeQuitting},
		Milestones: []challengetype.Milestone{
			{ID: "m_b", DaysRequired: 5},
			{ID: "m_a", DaysRequired: 5},
		},
	}
	next := NextMilestone(ct, 2)
	if next == nil || next.ID != "m_a" {
		t.Fatalf("NextMilestone tie = %+v, want m_a", next)
	}
}
