package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestQuestionnaireDedupPerSession(t *testing.T) {
	svc := &QuestionnaireService{sessions: map[uuid.UUID]*sessionState{}}
	user := uuid.New()

	if !svc.markCompleted(user, "sess-1", "q-health") {
		t.Fatal("first completion must be credited")
	}
	if svc.markCompleted(user, "sess-1", "q-health") {
		t.Fatal("duplicate within session must not be credited")
	}
	if !svc.markCompleted(user, "sess-1", "q-mood") {
		t.Fatal("different questionnaire in same session must be credited")
	}

	// A fresh session resets the tracked state.
	if !svc.markCompleted(user, "sess-2", "q-health") {
		t.Fatal("new session must credit the questionnaire again")
	}
	if svc.markCompleted(user, "sess-2", "q-health") {
		t.Fatal("dedup must hold within the new session too")
	}
}

func TestQuestionnaireDedupIsPerUser(t *testing.T) {
	svc := &QuestionnaireService{sessions: map[uuid.UUID]*sessionState{}}
	a, b := uuid.New(), uuid.New()

	if !svc.markCompleted(a, "sess-1", "q-health") {
		t.Fatal("first completion for user a must be credited")
	}
	if !svc.markCompleted(b, "sess-1", "q-health") {
		t.Fatal("user b is independent of user a")
	}
}
