package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/types/observation"
	"quitPathAPI/internal/types/userchallenge"
)

func day(n int) time.Time { return t0.Add(time.Duration(n) * 24 * time.Hour) }

func floatPtr(v float64) *float64 { return &v }

func TestDaysSmokeFreeBasics(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"at start", t0, 0},
		{"almost a day", t0.Add(23 * time.Hour), 0},
		{"one day", day(1), 1},
		{"five and a half days", t0.Add(132 * time.Hour), 5},
		{"clock before start clamps to zero", t0.Add(-time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysSmokeFree(ch, tc.now); got != tc.want {
				t.Errorf("DaysSmokeFree = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPausedTimeDoesNotCount(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	// Pause at day 5, sit paused for 10 real days, resume.
	paused, _, err := Pause(ch, day(5))
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	// While paused the count freezes at the pause instant.
	if got := DaysSmokeFree(paused, day(12)); got != 5 {
		t.Errorf("DaysSmokeFree while paused = %d, want 5", got)
	}

	resumed, _, err := Resume(paused, day(15))
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if got := DaysSmokeFree(resumed, day(15)); got != 5 {
		t.Errorf("DaysSmokeFree right after resume = %d, want 5", got)
	}
	// Accrual continues from where it left off.
	if got := DaysSmokeFree(resumed, day(18)); got != 8 {
		t.Errorf("DaysSmokeFree three days after resume = %d, want 8", got)
	}
}

func TestUpdateStreakAccrualAndReset(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	ch, events := UpdateStreak(ch, false, day(3))
	if len(events) != 0 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if ch.CurrentStreakDays != 3 || ch.LongestStreakDays != 3 {
		t.Fatalf("after 3 clean days: current=%d longest=%d", ch.CurrentStreakDays, ch.LongestStreakDays)
	}

	// Smoked on day 5: the two newly completed days still count first, then
	// the streak resets and the ratchet keeps the maximum ever seen.
	ch, events = UpdateStreak(ch, true, day(5))
	if len(events) != 1 || events[0].Type != EventStreakReset {
		t.Fatalf("expected one StreakReset event, got %+v", events)
	}
	if events[0].PreviousStreakDays != 5 {
		t.Errorf("PreviousStreakDays = %d, want 5", events[0].PreviousStreakDays)
	}
	if ch.CurrentStreakDays != 0 {
		t.Errorf("CurrentStreakDays = %d, want 0 after reset", ch.CurrentStreakDays)
	}
	if ch.LongestStreakDays != 5 {
		t.Errorf("LongestStreakDays = %d, want 5", ch.LongestStreakDays)
	}

	// Streak rebuilds from the reset point, longest never decreases.
	ch, _ = UpdateStreak(ch, false, day(7))
	if ch.CurrentStreakDays != 2 || ch.LongestStreakDays != 5 {
		t.Errorf("after rebuild: current=%d longest=%d, want 2/5", ch.CurrentStreakDays, ch.LongestStreakDays)
	}
}

func TestUpdateStreakRecordsPeakWhenAccrualAndBreakCoincide(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	// First update ever already carries both four accrued days and the
	// disqualifying observation. The peak must be ratcheted before the reset.
	ch, events := UpdateStreak(ch, true, day(4))
	if ch.CurrentStreakDays != 0 {
		t.Errorf("CurrentStreakDays = %d, want 0 after reset", ch.CurrentStreakDays)
	}
	if ch.LongestStreakDays != 4 {
		t.Errorf("LongestStreakDays = %d, want 4 (peak before reset)", ch.LongestStreakDays)
	}
	if len(events) != 1 || events[0].PreviousStreakDays != 4 {
		t.Fatalf("expected StreakReset with PreviousStreakDays=4, got %+v", events)
	}
	if ch.LongestStreakDays != events[0].PreviousStreakDays {
		t.Error("longest streak and the reset event disagree about the peak")
	}
}

func TestUpdateStreakIdempotentForSameInstant(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)

	once, _ := UpdateStreak(ch, false, day(4))
	twice, events := UpdateStreak(once, false, day(4))
	if len(events) != 0 {
		t.Fatalf("re-running at the same instant produced events: %+v", events)
	}
	if twice.CurrentStreakDays != once.CurrentStreakDays || twice.LongestStreakDays != once.LongestStreakDays {
		t.Errorf("recompute changed counters: %+v vs %+v", twice, once)
	}
}

func TestBreaksStreakByMode(t *testing.T) {
	ct := quitSmokingType()
	threshold := 5
	ct.ReductionResetThreshold = &threshold

	obs := func(category string, v *float64) observation.Observation {
		return observation.Observation{Category: category, NumericValue: v}
	}

	cases := []struct {
		name string
		mode userchallenge.Mode
		obs  observation.Observation
		want bool
	}{
		{"quitting zero count", userchallenge.ModeQuitting, obs(observation.CategoryCigaretteCount, floatPtr(0)), false},
		{"quitting one cigarette", userchallenge.ModeQuitting, obs(observation.CategoryCigaretteCount, floatPtr(1)), true},
		{"quitting craving level irrelevant", userchallenge.ModeQuitting, obs(observation.CategoryCravingLevel, floatPtr(9)), false},
		{"reduction under threshold", userchallenge.ModeReduction, obs(observation.CategoryCigaretteCount, floatPtr(5)), false},
		{"reduction over threshold", userchallenge.ModeReduction, obs(observation.CategoryCigaretteCount, floatPtr(6)), true},
		{"tracking never breaks", userchallenge.ModeTracking, obs(observation.CategoryCigaretteCount, floatPtr(40)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BreaksStreak(ct, tc.mode, tc.obs); got != tc.want {
				t.Errorf("BreaksStreak = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("reduction without threshold never breaks", func(t *testing.T) {
		ct.ReductionResetThreshold = nil
		if BreaksStreak(ct, userchallenge.ModeReduction, obs(observation.CategoryCigaretteCount, floatPtr(40))) {
			t.Error("nil threshold must mean the count never breaks the streak")
		}
	})
}

func TestValidateObservation(t *testing.T) {
	ct := quitSmokingType()
	ch := mustJoin(t, ct, userchallenge.ModeQuitting)
	now := day(10)

	cases := []struct {
		name    string
		cat     string
		date    time.Time
		numeric *float64
		wantErr bool
	}{
		{"ok today", observation.CategoryCigaretteCount, now, floatPtr(0), false},
		{"ok backdated", observation.CategoryCravingLevel, day(2), floatPtr(3), false},
		{"missing category", "", now, nil, true},
		{"negative value", observation.CategoryWeight, now, floatPtr(-1), true},
		{"future date", observation.CategoryCigaretteCount, day(11), floatPtr(0), true},
		{"before challenge start", observation.CategoryCigaretteCount, t0.Add(-48 * time.Hour), floatPtr(0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateObservation(ch, tc.cat, tc.date, tc.numeric, now)
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLatestByCategorySupersedes(t *testing.T) {
	mk := func(date time.Time, created time.Time, v float64) observation.Observation {
		return observation.Observation{
			ID:              uuid.New(),
			Category:        observation.CategoryCigaretteCount,
			ObservationDate: date,
			NumericValue:    floatPtr(v),
			CreatedAt:       created,
		}
	}
	obsList := []observation.Observation{
		mk(day(1), day(1).Add(9*time.Hour), 4),
		mk(day(2), day(2).Add(9*time.Hour), 3),
		// Same date logged later: supersedes the earlier entry.
		mk(day(2), day(2).Add(20*time.Hour), 1),
	}

	got := LatestCigaretteCount(obsList)
	if got == nil || *got != 1 {
		t.Fatalf("LatestCigaretteCount = %v, want 1", got)
	}
	if LatestCigaretteCount(nil) != nil {
		t.Error("empty log must yield nil")
	}
}
