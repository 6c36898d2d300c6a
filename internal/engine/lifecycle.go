package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

// The lifecycle functions are pure: they take value snapshots plus a caller
// supplied now, and return the post-transition snapshot with the events it
// produced. Nothing here touches storage, the clock, or the HTTP layer, so
// the whole state machine is testable on its own.

// Join creates a fresh active instance. existing is the user's current
// non-cancelled instance of this type, nil if there is none.
func Join(ct *challengetype.ChallengeType, userID uuid.UUID, mode userchallenge.Mode, existing *userchallenge.UserChallenge, now time.Time) (userchallenge.UserChallenge, Event, error) {
	if !ct.OffersMode(mode) {
		return userchallenge.UserChallenge{}, Event{}, fmt.Errorf("%w: %q for challenge type %s", ErrInvalidMode, mode, ct.ID)
	}
	if existing != nil && existing.Status != userchallenge.StatusCancelled {
		return userchallenge.UserChallenge{}, Event{}, fmt.Errorf("%w: challenge type %s", ErrAlreadyActive, ct.ID)
	}

	ch := userchallenge.UserChallenge{
		ID:                 uuid.New(),
		UserID:             userID,
		ChallengeTypeID:    ct.ID,
		Status:             userchallenge.StatusActive,
		Mode:               mode,
		StartedAt:          now,
		UnlockedMilestones: []string{},
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return ch, stateChanged(ch, "", userchallenge.StatusActive, now), nil
}

// Pause stops accrual. Time spent paused never counts toward smoke-free days
// or milestone eligibility.
func Pause(ch userchallenge.UserChallenge, now time.Time) (userchallenge.UserChallenge, Event, error) {
	if ch.Status != userchallenge.StatusActive {
		return ch, Event{}, fmt.Errorf("%w: pause from %q", ErrInvalidTransition, ch.Status)
	}
	out := ch.Clone()
	out.Status = userchallenge.StatusPaused
	out.PausedAt = &now
	out.UpdatedAt = now
	return out, stateChanged(out, userchallenge.StatusActive, userchallenge.StatusPaused, now), nil
}

// Resume folds the paused interval into TotalPaused and reactivates.
func Resume(ch userchallenge.UserChallenge, now time.Time) (userchallenge.UserChallenge, Event, error) {
	if ch.Status != userchallenge.StatusPaused || ch.PausedAt == nil {
		return ch, Event{}, fmt.Errorf("%w: resume from %q", ErrInvalidTransition, ch.Status)
	}
	out := ch.Clone()
	paused := now.Sub(*out.PausedAt)
	if paused < 0 {
		paused = 0
	}
	out.TotalPaused += paused
	out.PausedAt = nil
	out.Status = userchallenge.StatusActive
	out.UpdatedAt = now
	return out, stateChanged(out, userchallenge.StatusPaused, userchallenge.StatusActive, now), nil
}

// Cancel is terminal for the instance. Observations and unlocked milestones
// are kept for history; nothing accrues afterwards.
func Cancel(ch userchallenge.UserChallenge, now time.Time) (userchallenge.UserChallenge, Event, error) {
	if ch.Status == userchallenge.StatusCancelled {
		return ch, Event{}, fmt.Errorf("%w: cancel from %q", ErrInvalidTransition, ch.Status)
	}
	from := ch.Status
	out := ch.Clone()
	if out.Status == userchallenge.StatusPaused && out.PausedAt != nil {
		paused := now.Sub(*out.PausedAt)
		if paused > 0 {
			out.TotalPaused += paused
		}
		out.PausedAt = nil
	}
	out.Status = userchallenge.StatusCancelled
	out.CancelledAt = &now
	out.UpdatedAt = now
	return out, stateChanged(out, from, userchallenge.StatusCancelled, now), nil
}

// Restart cancels the current instance (when one exists and is not already
// cancelled) and creates a new one. The longest streak carries over for
// display; everything else starts from zero. Returns the cancelled prior
// instance (nil if there was none to cancel), the new instance, and the
// events in order.
func Restart(ct *challengetype.ChallengeType, userID uuid.UUID, mode userchallenge.Mode, existing *userchallenge.UserChallenge, now time.Time) (*userchallenge.UserChallenge, userchallenge.UserChallenge, []Event, error) {
	if !ct.OffersMode(mode) {
		return nil, userchallenge.UserChallenge{}, nil, fmt.Errorf("%w: %q for challenge type %s", ErrInvalidMode, mode, ct.ID)
	}

	var events []Event
	var cancelled *userchallenge.UserChallenge
	longest := 0
	if existing != nil {
		longest = existing.LongestStreakDays
		if existing.Status != userchallenge.StatusCancelled {
			prev, ev, err := Cancel(*existing, now)
			if err != nil {
				return nil, userchallenge.UserChallenge{}, nil, err
			}
			cancelled = &prev
			events = append(events, ev)
		}
	}

	fresh, ev, err := Join(ct, userID, mode, nil, now)
	if err != nil {
		return nil, userchallenge.UserChallenge{}, nil, err
	}
	fresh.LongestStreakDays = longest
	events = append(events, ev)
	return cancelled, fresh, events, nil
}
