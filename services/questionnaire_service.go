package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/notification"
	"quitPathAPI/internal/types/observation"
	"quitPathAPI/internal/types/points"
	"quitPathAPI/internal/types/questionnaire"
)

const questionnairePoints = 25

// sessionState tracks which questionnaires have already been credited within
// one widget session. The state belongs to the service, not to a package
// level cell: it is created unset and wiped whenever the session id changes.
type sessionState struct {
	sessionID string
	seen      map[string]bool
}

// QuestionnaireService applies completion signals from the embedded survey
// widget at most once per questionnaire per session.
type QuestionnaireService struct {
	db       *pgxpool.Pool
	points   PointsCreditor
	notifier NotificationCreator

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionState
}

func NewQuestionnaireService(db *pgxpool.Pool, pointsSvc PointsCreditor, notifier NotificationCreator) *QuestionnaireService {
	return &QuestionnaireService{
		db:       db,
		points:   pointsSvc,
		notifier: notifier,
		sessions: make(map[uuid.UUID]*sessionState),
	}
}

// markCompleted returns false when the questionnaire was already credited in
// this session. A new session id resets the per-user dedup state.
func (s *QuestionnaireService) markCompleted(userID uuid.UUID, sessionID, questionnaireID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[userID]
	if !ok || state.sessionID != sessionID {
		state = &sessionState{sessionID: sessionID, seen: make(map[string]bool)}
		s.sessions[userID] = state
	}
	if state.seen[questionnaireID] {
		return false
	}
	state.seen[questionnaireID] = true
	return true
}

// Complete handles a widget completion signal. Duplicates within the session
// are acknowledged without side effects; the first signal records an
// observation, credits points, and notifies.
func (s *QuestionnaireService) Complete(ctx context.Context, clerkID string, signal questionnaire.CompletionSignal) (*questionnaire.CompletionResult, error) {
	if signal.SessionID == "" || signal.QuestionnaireID == "" {
		return nil, fmt.Errorf("%w: sessionId and questionnaireId are required", engine.ErrValidation)
	}

	userID, err := lookupUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !s.markCompleted(userID, signal.SessionID, signal.QuestionnaireID) {
		return &questionnaire.CompletionResult{
			QuestionnaireID: signal.QuestionnaireID,
			Credited:        false,
			CompletedAt:     now,
		}, nil
	}

	qID := signal.QuestionnaireID
	obsQuery := `
	INSERT INTO observations (id, user_id, category, observation_date, text_value, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.Exec(ctx, obsQuery, uuid.New(), userID,
		observation.CategoryQuestionnaireDone, now.Truncate(24*time.Hour), qID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record questionnaire completion: %w", err)
	}

	if err := s.points.Credit(ctx, userID, questionnairePoints, points.ReasonQuestionnaireCompleted, &qID); err != nil {
		// The completion stands; points are credited best-effort.
		log.Printf("Failed to credit questionnaire points for user %s: %v", userID, err)
	}
	if s.notifier != nil {
		_, err := s.notifier.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.NotificationQuestionnaire,
			Priority: notification.PriorityLow,
			Data: map[string]any{
				"questionnaire_id": qID,
				"points":           fmt.Sprintf("%d", questionnairePoints),
			},
		})
		if err != nil {
			log.Printf("Failed to notify questionnaire completion for user %s: %v", userID, err)
		}
	}

	return &questionnaire.CompletionResult{
		QuestionnaireID: qID,
		Credited:        true,
		PointsAwarded:   questionnairePoints,
		CompletedAt:     now,
	}, nil
}
