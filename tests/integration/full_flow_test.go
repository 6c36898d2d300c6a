package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"quitPathAPI/handlers"
	"quitPathAPI/internal/types/userchallenge"
	modelUser "quitPathAPI/internal/user"
	"quitPathAPI/middleware"
	"quitPathAPI/services"
	"quitPathAPI/tests/helpers"
)

func withMuxVar(r *http.Request, key, value string) *http.Request {
	return mux.SetURLVars(r, map[string]string{key: value})
}

// TestFullChallengeFlow walks one user from signup through joining the
// quit-smoking challenge, logging an observation and reading the widget.
func TestFullChallengeFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	catalog, err := services.NewCatalogService("../../config/challenge_catalog.yaml")
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	userService := services.NewUserService(pool)
	dispatcher := services.NewEventDispatcher()
	defer dispatcher.Stop()
	challengeService := services.NewChallengeService(pool, catalog, dispatcher)

	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Signup arrives via the Clerk webhook.
	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload)))
	if rr.Code != http.StatusOK {
		t.Fatalf("Webhook returned %d: %s", rr.Code, rr.Body.String())
	}

	ctx := context.Background()
	u, err := userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		t.Fatalf("User not created: %v", err)
	}
	if u.Email != "test.user@example.com" {
		t.Errorf("Email = %q, want test.user@example.com", u.Email)
	}

	authed := func(r *http.Request) *http.Request {
		return r.WithContext(context.WithValue(r.Context(), middleware.ClerkIDKey, clerkID))
	}

	// Profile is readable with the Clerk ID in context.
	rr = httptest.NewRecorder()
	userHandler.GetProfile(rr, authed(httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("GetProfile returned %d: %s", rr.Code, rr.Body.String())
	}
	var profile modelUser.User
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode profile: %v", err)
	}

	// Join the quit-smoking challenge.
	ch, err := challengeService.Join(ctx, clerkID, "quit_smoking", userchallenge.ModeQuitting)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if ch.Status != userchallenge.StatusActive {
		t.Errorf("Status = %q, want active", ch.Status)
	}

	// A second join must conflict.
	if _, err := challengeService.Join(ctx, clerkID, "quit_smoking", userchallenge.ModeQuitting); err == nil {
		t.Error("Second Join should fail while a challenge is active")
	}

	// Log a clean day through the HTTP surface.
	body := strings.NewReader(`{"challenge_type_id": "quit_smoking", "category": "cigarette_count", "numeric_value": 0}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/observations", body))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	challengeHandler.LogObservation(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("LogObservation returned %d: %s", rr.Code, rr.Body.String())
	}

	// The widget reflects the joined challenge.
	req = authed(httptest.NewRequest(http.MethodGet, "/api/v1/challenges/quit_smoking/widget", nil))
	req = withMuxVar(req, "typeId", "quit_smoking")
	rr = httptest.NewRecorder()
	challengeHandler.GetWidget(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GetWidget returned %d: %s", rr.Code, rr.Body.String())
	}
	var widget services.ChallengeWidget
	if err := json.Unmarshal(rr.Body.Bytes(), &widget); err != nil {
		t.Fatalf("Failed to decode widget: %v", err)
	}
	if widget.Challenge == nil || widget.Challenge.ID != ch.ID {
		t.Error("Widget does not reference the joined challenge")
	}

	// Pause, resume and cancel round-trip.
	if _, err := challengeService.Pause(ctx, clerkID, "quit_smoking"); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if _, err := challengeService.Resume(ctx, clerkID, "quit_smoking"); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	cancelled, err := challengeService.Cancel(ctx, clerkID, "quit_smoking")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != userchallenge.StatusCancelled {
		t.Errorf("Status = %q, want cancelled", cancelled.Status)
	}
}
