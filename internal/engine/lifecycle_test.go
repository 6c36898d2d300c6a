package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func quitSmokingType() *challengetype.ChallengeType {
	return &challengetype.ChallengeType{
		ID:   "quit_smoking",
		Name: "Quit Smoking",
		Modes: []userchallenge.Mode{
			userchallenge.ModeQuitting,
			userchallenge.ModeReduction,
		},
		Milestones: []challengetype.Milestone{
			{ID: "m_day1", DaysRequired: 1, Name: "First Day", PointsAwarded: 10},
			{ID: "m_day3", DaysRequired: 3, Name: "Three Days", PointsAwarded: 30},
			{ID: "m_week", DaysRequired: 7, Name: "One Week", PointsAwarded: 70},
		},
		HealthRisks: []challengetype.HealthRisk{
			{ID: "r_stroke", Name: "Stroke", FadeStartDays: 14, FadeEndDays: 365},
		},
		ShowHealthRisks: true,
	}
}

func mustJoin(t *testing.T, ct *challengetype.ChallengeType, mode userchallenge.Mode) userchallenge.UserChallenge {
	t.Helper()
	ch, ev, err := Join(ct, uuid.New(), mode, nil, t0)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if ev.Type != EventChallengeStateChanged || ev.To != userchallenge.StatusActive {
		t.Fatalf("unexpected join event: %+v", ev)
	}
	return ch
}

func TestJoinRejectsUnsupportedMode(t *testing.T) {
	ct := quitSmokingType()
	_, _, err := Join(ct, uuid.New(), userchallenge.ModeTracking, nil, t0)
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestJoinRejectsDuplicateActive(t *testing.T) {
	ct := quitSmokingType()
	existing := mustJoin(t, ct, userchallenge.ModeQuitting)

	_, _, err := Join(ct, existing.UserID, userchallenge.ModeQuitting, &existing, t0.Add(time.Hour))
	if !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	cancelled, _, err := Cancel(existing, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, _, err := Join(ct, existing.UserID, userchallenge.ModeQuitting, &cancelled, t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("join after cancel should succeed, got %v", err)
	}
}

func TestPauseResumeCancelTransitions(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	if _, _, err := Resume(ch, t0.Add(time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("resume while active: expected ErrInvalidTransition, got %v", err)
	}

	paused, ev, err := Pause(ch, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if ev.From != userchallenge.StatusActive || ev.To != userchallenge.StatusPaused {
		t.Errorf("unexpected pause event: %+v", ev)
	}
	if paused.PausedAt == nil {
		t.Fatal("PausedAt not recorded")
	}

	if _, _, err := Pause(paused, t0.Add(2*time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double pause: expected ErrInvalidTransition, got %v", err)
	}

	resumed, _, err := Resume(paused, t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed.PausedAt != nil {
		t.Error("PausedAt not cleared on resume")
	}
	if resumed.TotalPaused != 2*time.Hour {
		t.Errorf("TotalPaused = %v, want 2h", resumed.TotalPaused)
	}

	cancelled, _, err := Cancel(resumed, t0.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("CancelledAt not recorded")
	}
	if _, _, err := Cancel(cancelled, t0.Add(5*time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel after cancel: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelWhilePausedFoldsPausedTime(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	paused, _, err := Pause(ch, t0.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	cancelled, _, err := Cancel(paused, t0.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	// Two active days; the paused day must not count.
	if got := DaysSmokeFree(cancelled, t0.Add(1000*time.Hour)); got != 2 {
		t.Errorf("DaysSmokeFree after cancel = %d, want 2", got)
	}
}

func TestRestartResetsCleanly(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)
	ch.CurrentStreakDays = 4
	ch.LongestStreakDays = 9
	ch.UnlockedMilestones = []string{"m_day1", "m_day3"}

	now := t0.Add(10 * 24 * time.Hour)
	prev, fresh, events, err := Restart(ct, ch.UserID, userchallenge.ModeQuitting, &ch, now)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if prev == nil || prev.Status != userchallenge.StatusCancelled {
		t.Fatalf("prior instance not cancelled: %+v", prev)
	}
	if len(prev.UnlockedMilestones) != 2 {
		t.Error("history of prior instance must be preserved")
	}
	if fresh.ID == ch.ID {
		t.Error("restart must create a new instance, not mutate the old one")
	}
	if !fresh.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", fresh.StartedAt, now)
	}
	if len(fresh.UnlockedMilestones) != 0 || fresh.CurrentStreakDays != 0 {
		t.Errorf("counters not reset: %+v", fresh)
	}
	if fresh.LongestStreakDays != 9 {
		t.Errorf("LongestStreakDays = %d, want 9 (carried across restart)", fresh.LongestStreakDays)
	}
	if len(events) != 2 {
		t.Fatalf("expected cancel + join events, got %d", len(events))
	}
}

func TestRestartWithoutExistingInstance(t *testing.T) {
	ct := quitSmokingType()
	prev, fresh, events, err := Restart(ct, uuid.New(), userchallenge.ModeReduction, nil, t0)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if prev != nil {
		t.Errorf("expected no prior instance, got %+v", prev)
	}
	if fresh.Mode != userchallenge.ModeReduction || len(events) != 1 {
		t.Errorf("unexpected restart result: %+v events=%d", fresh, len(events))
	}
}
