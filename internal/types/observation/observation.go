package observation

import (
	"time"

	"github.com/google/uuid"
)

// Well-known observation categories. The set is open: challenge types may
// require additional categories declared in the catalog.
const (
	CategoryCigaretteCount    = "cigarette_count"
	CategoryCravingLevel      = "craving_level"
	CategoryWeight            = "weight"
	CategoryResistedLighting  = "resisted_lighting"
	CategoryQuestionnaireDone = "questionnaire_completed"
)

// Observation is a single dated measurement. Rows are append-only: a later
// entry for the same category and date supersedes earlier ones for display,
// but nothing is ever updated or deleted.
type Observation struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	UserChallengeID *uuid.UUID `json:"user_challenge_id,omitempty" db:"user_challenge_id"`
	Category        string     `json:"category" db:"category"`
	ObservationDate time.Time  `json:"observation_date" db:"observation_date"`
	NumericValue    *float64   `json:"numeric_value,omitempty" db:"numeric_value"`
	TextValue       *string    `json:"text_value,omitempty" db:"text_value"`
	Note            *string    `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type LogObservationRequest struct {
	ChallengeTypeID string   `json:"challengeTypeId"`
	Category        string   `json:"category"`
	Date            string   `json:"date"` // YYYY-MM-DD, defaults to today
	NumericValue    *float64 `json:"numericValue,omitempty"`
	TextValue       *string  `json:"textValue,omitempty"`
	Note            *string  `json:"note,omitempty"`
}
