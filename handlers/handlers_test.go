package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quitPathAPI/internal/engine"
)

func TestRespondWithEngineError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("challenge x: %w", engine.ErrNotFound), http.StatusNotFound},
		{engine.ErrValidation, http.StatusBadRequest},
		{engine.ErrInvalidMode, http.StatusBadRequest},
		{engine.ErrInvalidTransition, http.StatusConflict},
		{engine.ErrAlreadyActive, http.StatusConflict},
		{engine.ErrConcurrentModification, http.StatusConflict},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		respondWithEngineError(rr, tc.err)
		if rr.Code != tc.want {
			t.Errorf("respondWithEngineError(%v) = %d, want %d", tc.err, rr.Code, tc.want)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	}
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusCreated, map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("Code = %d, want 201", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("Body = %s, missing payload", rr.Body.String())
	}
}
