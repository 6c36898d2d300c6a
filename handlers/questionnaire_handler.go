package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"quitPathAPI/internal/types/questionnaire"
	"quitPathAPI/middleware"
	"quitPathAPI/services"
)

type QuestionnaireHandler struct {
	questionnaireService *services.QuestionnaireService
}

func NewQuestionnaireHandler(questionnaireService *services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaireService: questionnaireService,
	}
}

// Complete records a questionnaire completion signal. Repeated signals for
// the same questionnaire within one app session respond 200 with
// credited=false instead of an error, so flaky clients can retry freely.
func (h *QuestionnaireHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var signal questionnaire.CompletionSignal
	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.questionnaireService.Complete(ctx, clerkID, signal)
	if err != nil {
		respondWithEngineError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
