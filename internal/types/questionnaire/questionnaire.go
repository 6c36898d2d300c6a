package questionnaire

import "time"

// CompletionSignal is what the embedded third-party survey widget posts when
// the user finishes a questionnaire. SessionID scopes deduplication: the same
// questionnaire may be credited again in a later session, never twice within
// one.
type CompletionSignal struct {
	SessionID       string `json:"sessionId"`
	QuestionnaireID string `json:"questionnaireId"`
}

type CompletionResult struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	Credited        bool      `json:"credited"`
	PointsAwarded   int       `json:"points_awarded"`
	CompletedAt     time.Time `json:"completed_at"`
}
