package userchallenge

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

type Mode string

const (
	ModeQuitting  Mode = "quitting"
	ModeReduction Mode = "reduction"
	ModeTracking  Mode = "tracking"
)

// UserChallenge is one user's instance of a challenge type. All fields are
// value-copied through the engine; only the persistence layer mutates rows,
// and every write is guarded by Version.
type UserChallenge struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	UserID          uuid.UUID     `json:"user_id" db:"user_id"`
	ChallengeTypeID string        `json:"challenge_type_id" db:"challenge_type_id"`
	Status          Status        `json:"status" db:"status"`
	Mode            Mode          `json:"mode" db:"mode"`
	StartedAt       time.Time     `json:"started_at" db:"started_at"`
	PausedAt        *time.Time    `json:"paused_at,omitempty" db:"paused_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	TotalPaused     time.Duration `json:"total_paused_seconds" db:"total_paused_seconds"`

	CurrentStreakDays int `json:"current_streak_days" db:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days" db:"longest_streak_days"`
	// LastCountedDays is the days-smoke-free value at the moment the streak
	// counters were last advanced. Newly completed days are the difference
	// between the current value and this one.
	LastCountedDays    int      `json:"last_counted_days" db:"last_counted_days"`
	UnlockedMilestones []string `json:"unlocked_milestones" db:"unlocked_milestones"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasMilestone reports whether the milestone id is already unlocked.
func (c *UserChallenge) HasMilestone(id string) bool {
	for _, m := range c.UnlockedMilestones {
		if m == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to the engine.
func (c UserChallenge) Clone() UserChallenge {
	out := c
	out.UnlockedMilestones = append([]string(nil), c.UnlockedMilestones...)
	if c.PausedAt != nil {
		t := *c.PausedAt
		out.PausedAt = &t
	}
	if c.CancelledAt != nil {
		t := *c.CancelledAt
		out.CancelledAt = &t
	}
	return out
}
