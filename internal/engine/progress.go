package engine

import (
	"fmt"
	"time"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/observation"
	"quitPathAPI/internal/types/userchallenge"
)

// referenceTime is the instant accrual stops being counted: now while active,
// the pause instant while paused, the cancellation instant once cancelled.
func referenceTime(ch userchallenge.UserChallenge, now time.Time) time.Time {
	switch ch.Status {
	case userchallenge.StatusPaused:
		if ch.PausedAt != nil {
			return *ch.PausedAt
		}
	case userchallenge.StatusCancelled:
		if ch.CancelledAt != nil {
			return *ch.CancelledAt
		}
	}
	return now
}

// DaysSmokeFree returns whole elapsed days since the challenge started,
// excluding paused time. Deterministic for fixed inputs and never negative.
func DaysSmokeFree(ch userchallenge.UserChallenge, now time.Time) int {
	elapsed := referenceTime(ch, now).Sub(ch.StartedAt) - ch.TotalPaused
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// ValidateObservation rejects malformed measurements before anything is
// persisted: negative numeric values, dates after today, and dates before the
// challenge started.
func ValidateObservation(ch userchallenge.UserChallenge, category string, date time.Time, numeric *float64, now time.Time) error {
	if category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if numeric != nil && *numeric < 0 {
		return fmt.Errorf("%w: numeric value must not be negative", ErrValidation)
	}
	day := date.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	if day.After(today) {
		return fmt.Errorf("%w: observation date is in the future", ErrValidation)
	}
	if day.Before(ch.StartedAt.Truncate(24 * time.Hour)) {
		return fmt.Errorf("%w: observation date precedes challenge start", ErrValidation)
	}
	return nil
}

// BreaksStreak reports whether the observation disqualifies the current
// streak. Quitting mode breaks on any smoked cigarette; reduction mode breaks
// only above the per-type threshold when one is configured.
func BreaksStreak(ct *challengetype.ChallengeType, mode userchallenge.Mode, obs observation.Observation) bool {
	if obs.Category != observation.CategoryCigaretteCount || obs.NumericValue == nil {
		return false
	}
	switch mode {
	case userchallenge.ModeQuitting:
		return *obs.NumericValue > 0
	case userchallenge.ModeReduction:
		if ct.ReductionResetThreshold == nil {
			return false
		}
		return *obs.NumericValue > float64(*ct.ReductionResetThreshold)
	default:
		return false
	}
}

// UpdateStreak advances the streak counters to now. Newly completed days
// since the last update are added to the current streak; a disqualifying
// event zeroes it and emits StreakReset. The longest streak only ratchets up.
func UpdateStreak(ch userchallenge.UserChallenge, disqualified bool, now time.Time) (userchallenge.UserChallenge, []Event) {
	out := ch.Clone()
	days := DaysSmokeFree(out, now)

	var events []Event
	if newly := days - out.LastCountedDays; newly > 0 {
		out.CurrentStreakDays += newly
	}
	out.LastCountedDays = days

	// Ratchet before any reset so the pre-reset peak is recorded even when
	// accrual and the disqualifying observation land in the same update.
	if out.CurrentStreakDays > out.LongestStreakDays {
		out.LongestStreakDays = out.CurrentStreakDays
	}

	if disqualified && out.CurrentStreakDays > 0 {
		events = append(events, Event{
			Type:               EventStreakReset,
			ChallengeID:        out.ID,
			UserID:             out.UserID,
			At:                 now,
			PreviousStreakDays: out.CurrentStreakDays,
		})
		out.CurrentStreakDays = 0
	}
	out.UpdatedAt = now
	return out, events
}

// LatestByCategory picks the display value for a category: latest observation
// date wins, same-day entries are superseded by the most recently created.
func LatestByCategory(observations []observation.Observation, category string) *observation.Observation {
	var latest *observation.Observation
	for i := range observations {
		obs := &observations[i]
		if obs.Category != category {
			continue
		}
		if latest == nil ||
			obs.ObservationDate.After(latest.ObservationDate) ||
			(obs.ObservationDate.Equal(latest.ObservationDate) && obs.CreatedAt.After(latest.CreatedAt)) {
			latest = obs
		}
	}
	return latest
}

// LatestCigaretteCount is the reduction-mode main metric. Nil when the user
// has not logged a count yet.
func LatestCigaretteCount(observations []observation.Observation) *float64 {
	obs := LatestByCategory(observations, observation.CategoryCigaretteCount)
	if obs == nil {
		return nil
	}
	return obs.NumericValue
}
