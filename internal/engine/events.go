package engine

import (
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/types/userchallenge"
)

type EventType string

const (
	EventMilestoneUnlocked     EventType = "milestone_unlocked"
	EventStreakReset           EventType = "streak_reset"
	EventChallengeStateChanged EventType = "challenge_state_changed"
)

// Event is emitted by engine operations and consumed by the dispatcher for
// notifications and points crediting. Events are facts about a transition
// that already happened; consumers must tolerate losing them.
type Event struct {
	Type        EventType `json:"type"`
	ChallengeID uuid.UUID `json:"challenge_id"`
	UserID      uuid.UUID `json:"user_id"`
	At          time.Time `json:"at"`

	// milestone_unlocked
	MilestoneID   string `json:"milestone_id,omitempty"`
	MilestoneName string `json:"milestone_name,omitempty"`
	Points        int    `json:"points,omitempty"`

	// streak_reset
	PreviousStreakDays int `json:"previous_streak_days,omitempty"`

	// challenge_state_changed
	From userchallenge.Status `json:"from,omitempty"`
	To   userchallenge.Status `json:"to,omitempty"`
}

func stateChanged(ch userchallenge.UserChallenge, from, to userchallenge.Status, at time.Time) Event {
	return Event{
		Type:        EventChallengeStateChanged,
		ChallengeID: ch.ID,
		UserID:      ch.UserID,
		At:          at,
		From:        from,
		To:          to,
	}
}
