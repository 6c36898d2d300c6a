package points

import (
	"time"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonMilestoneUnlocked      Reason = "milestone_unlocked"
	ReasonQuestionnaireCompleted Reason = "questionnaire_completed"
	ReasonAdminAdjustment        Reason = "admin_adjustment"
)

// Entry is one append-only points-ledger row. Balances are never stored,
// always summed from the ledger.
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Delta     int       `json:"delta" db:"delta"`
	Reason    Reason    `json:"reason" db:"reason"`
	RefID     *string   `json:"ref_id,omitempty" db:"ref_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Balance struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int       `json:"balance"`
}
