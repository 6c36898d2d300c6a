package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationMilestoneUnlocked NotificationType = "milestone_unlocked"
	NotificationStreakReset       NotificationType = "streak_reset"
	NotificationStreakRisk        NotificationType = "streak_risk"
	NotificationChallengeState    NotificationType = "challenge_state"
	NotificationQuestionnaire     NotificationType = "questionnaire_completed"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID        uuid.UUID            `json:"id" db:"id"`
	UserID    uuid.UUID            `json:"user_id" db:"user_id"`
	Type      NotificationType     `json:"type" db:"type"`
	Priority  NotificationPriority `json:"priority" db:"priority"`
	Status    NotificationStatus   `json:"status" db:"status"`
	Title     string               `json:"title" db:"title"`
	Body      string               `json:"body" db:"body"`
	Data      map[string]any       `json:"data" db:"data"`
	SentAt    *time.Time           `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt    *time.Time           `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
	ExpiresAt time.Time            `json:"expires_at" db:"expires_at"`
}

type DeviceToken struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
}

type NotificationPreferences struct {
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	PushEnabled  bool            `json:"push_enabled" db:"push_enabled"`
	EnabledTypes map[string]bool `json:"enabled_types" db:"enabled_types"`
}
