package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/observation"
	"quitPathAPI/internal/types/userchallenge"
)

type ChallengeService struct {
	db      *pgxpool.Pool
	catalog *CatalogService
	events  *EventDispatcher
}

func NewChallengeService(db *pgxpool.Pool, catalog *CatalogService, events *EventDispatcher) *ChallengeService {
	return &ChallengeService{db: db, catalog: catalog, events: events}
}

// pgxExecutor is satisfied by both the pool and a transaction, so writes
// that must commit together can share the insert/update helpers.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const challengeColumns = `
	id, user_id, challenge_type_id, status, mode, started_at, paused_at,
	cancelled_at, total_paused_seconds, current_streak_days,
	longest_streak_days, last_counted_days, unlocked_milestones, version,
	created_at, updated_at`

// lookupUserID resolves a Clerk ID to the internal user UUID. Only a
// missing row maps to ErrNotFound; connection failures stay what they are.
func lookupUserID(ctx context.Context, db *pgxpool.Pool, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: user for clerk_id %s", engine.ErrNotFound, clerkID)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *ChallengeService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	return lookupUserID(ctx, s.db, clerkID)
}

func scanChallenge(row pgx.Row) (*userchallenge.UserChallenge, error) {
	ch := &userchallenge.UserChallenge{}
	var pausedSeconds int64
	err := row.Scan(
		&ch.ID,
		&ch.UserID,
		&ch.ChallengeTypeID,
		&ch.Status,
		&ch.Mode,
		&ch.StartedAt,
		&ch.PausedAt,
		&ch.CancelledAt,
		&pausedSeconds,
		&ch.CurrentStreakDays,
		&ch.LongestStreakDays,
		&ch.LastCountedDays,
		&ch.UnlockedMilestones,
		&ch.Version,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ch.TotalPaused = time.Duration(pausedSeconds) * time.Second
	return ch, nil
}

// loadLatest returns the user's most recent instance of a challenge type,
// whatever its status. Restarted challenges leave their cancelled ancestors
// behind; the newest row is the live one.
func (s *ChallengeService) loadLatest(ctx context.Context, userID uuid.UUID, challengeTypeID string) (*userchallenge.UserChallenge, error) {
	query := `SELECT ` + challengeColumns + `
		FROM user_challenges
		WHERE user_id = $1 AND challenge_type_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	ch, err := scanChallenge(s.db.QueryRow(ctx, query, userID, challengeTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: challenge %s for user", engine.ErrNotFound, challengeTypeID)
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	return ch, nil
}

func (s *ChallengeService) insertChallenge(ctx context.Context, db pgxExecutor, ch userchallenge.UserChallenge) error {
	query := `
	INSERT INTO user_challenges (
		id, user_id, challenge_type_id, status, mode, started_at, paused_at,
		cancelled_at, total_paused_seconds, current_streak_days,
		longest_streak_days, last_counted_days, unlocked_milestones, version,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := db.Exec(ctx, query,
		ch.ID, ch.UserID, ch.ChallengeTypeID, ch.Status, ch.Mode, ch.StartedAt,
		ch.PausedAt, ch.CancelledAt, int64(ch.TotalPaused/time.Second),
		ch.CurrentStreakDays, ch.LongestStreakDays, ch.LastCountedDays,
		ch.UnlockedMilestones, ch.Version, ch.CreatedAt, ch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

// saveTransition writes the full post-transition snapshot guarded by the
// version the caller read. Exactly one of two concurrent writers wins; the
// loser sees ErrConcurrentModification and must re-fetch.
func (s *ChallengeService) saveTransition(ctx context.Context, db pgxExecutor, ch userchallenge.UserChallenge, expectedVersion int) (*userchallenge.UserChallenge, error) {
	query := `
	UPDATE user_challenges SET
		status = $3, mode = $4, paused_at = $5, cancelled_at = $6,
		total_paused_seconds = $7, current_streak_days = $8,
		longest_streak_days = $9, last_counted_days = $10,
		unlocked_milestones = $11, version = version + 1, updated_at = $12
	WHERE id = $1 AND version = $2
	`
	result, err := db.Exec(ctx, query,
		ch.ID, expectedVersion, ch.Status, ch.Mode, ch.PausedAt, ch.CancelledAt,
		int64(ch.TotalPaused/time.Second), ch.CurrentStreakDays,
		ch.LongestStreakDays, ch.LastCountedDays, ch.UnlockedMilestones,
		ch.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save transition: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_challenges WHERE id = $1)`, ch.ID).Scan(&exists); err == nil && !exists {
			return nil, fmt.Errorf("%w: challenge %s", engine.ErrNotFound, ch.ID)
		}
		transitionConflictsTotal.Inc()
		return nil, fmt.Errorf("%w: challenge %s version %d", engine.ErrConcurrentModification, ch.ID, expectedVersion)
	}
	out := ch.Clone()
	out.Version = expectedVersion + 1
	return &out, nil
}

// Join creates a new active instance of the challenge type for the user.
func (s *ChallengeService) Join(ctx context.Context, clerkID, challengeTypeID string, mode userchallenge.Mode) (*userchallenge.UserChallenge, error) {
	ct, err := s.catalog.GetChallengeType(challengeTypeID)
	if err != nil {
		return nil, err
	}
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadLatest(ctx, userID, ct.ID)
	if err != nil && !errors.Is(err, engine.ErrNotFound) {
		return nil, err
	}

	ch, ev, err := engine.Join(ct, userID, mode, existing, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.insertChallenge(ctx, s.db, ch); err != nil {
		return nil, err
	}

	s.events.Publish(ev)
	log.Printf("User %s joined challenge %s in %s mode", clerkID, ct.ID, mode)
	return &ch, nil
}

func (s *ChallengeService) Pause(ctx context.Context, clerkID, challengeTypeID string) (*userchallenge.UserChallenge, error) {
	return s.transition(ctx, clerkID, challengeTypeID, engine.Pause)
}

func (s *ChallengeService) Resume(ctx context.Context, clerkID, challengeTypeID string) (*userchallenge.UserChallenge, error) {
	return s.transition(ctx, clerkID, challengeTypeID, engine.Resume)
}

func (s *ChallengeService) Cancel(ctx context.Context, clerkID, challengeTypeID string) (*userchallenge.UserChallenge, error) {
	return s.transition(ctx, clerkID, challengeTypeID, engine.Cancel)
}

func (s *ChallengeService) transition(ctx context.Context, clerkID, challengeTypeID string, op func(userchallenge.UserChallenge, time.Time) (userchallenge.UserChallenge, engine.Event, error)) (*userchallenge.UserChallenge, error) {
	ct, err := s.catalog.GetChallengeType(challengeTypeID)
	if err != nil {
		return nil, err
	}
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadLatest(ctx, userID, ct.ID)
	if err != nil {
		return nil, err
	}

	next, ev, err := op(*ch, time.Now())
	if err != nil {
		return nil, err
	}
	saved, err := s.saveTransition(ctx, s.db, next, ch.Version)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ev)
	return saved, nil
}

// Restart cancels the current instance (if any, and not already cancelled)
// and starts a fresh one. The old rows stay in place as history.
func (s *ChallengeService) Restart(ctx context.Context, clerkID, challengeTypeID string, mode userchallenge.Mode) (*userchallenge.UserChallenge, error) {
	ct, err := s.catalog.GetChallengeType(challengeTypeID)
	if err != nil {
		return nil, err
	}
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadLatest(ctx, userID, ct.ID)
	if err != nil && !errors.Is(err, engine.ErrNotFound) {
		return nil, err
	}

	cancelled, fresh, events, err := engine.Restart(ct, userID, mode, existing, time.Now())
	if err != nil {
		return nil, err
	}

	// Cancelling the old instance and inserting the fresh one must land
	// together: a failure mid-way would strand the user without a challenge.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin restart: %w", err)
	}
	defer tx.Rollback(ctx)

	if cancelled != nil {
		if _, err := s.saveTransition(ctx, tx, *cancelled, existing.Version); err != nil {
			return nil, err
		}
	}
	if err := s.insertChallenge(ctx, tx, fresh); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit restart: %w", err)
	}

	s.events.Publish(events...)
	log.Printf("User %s restarted challenge %s", clerkID, ct.ID)
	return &fresh, nil
}

// LogObservation appends a measurement and, when it belongs to a live
// challenge, rolls streaks and milestone unlocks forward in one guarded
// write.
func (s *ChallengeService) LogObservation(ctx context.Context, clerkID string, req *observation.LogObservationRequest) (*observation.Observation, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	date, err := parseObservationDate(req.Date, now)
	if err != nil {
		return nil, err
	}

	obs := observation.Observation{
		ID:              uuid.New(),
		UserID:          userID,
		Category:        req.Category,
		ObservationDate: date,
		NumericValue:    req.NumericValue,
		TextValue:       req.TextValue,
		Note:            req.Note,
		CreatedAt:       now,
	}

	// An observation without a challenge type is a generic log entry; it
	// still gets basic validation.
	if req.ChallengeTypeID == "" {
		if req.Category == "" {
			return nil, fmt.Errorf("%w: category is required", engine.ErrValidation)
		}
		if req.NumericValue != nil && *req.NumericValue < 0 {
			return nil, fmt.Errorf("%w: numeric value must not be negative", engine.ErrValidation)
		}
		if date.After(now) {
			return nil, fmt.Errorf("%w: observation date is in the future", engine.ErrValidation)
		}
		return &obs, s.insertObservation(ctx, obs)
	}

	ct, err := s.catalog.GetChallengeType(req.ChallengeTypeID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadLatest(ctx, userID, ct.ID)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateObservation(*ch, req.Category, date, req.NumericValue, now); err != nil {
		return nil, err
	}
	obs.UserChallengeID = &ch.ID

	if err := s.insertObservation(ctx, obs); err != nil {
		return nil, err
	}

	// A cancelled or paused challenge keeps accepting history but no longer
	// accrues progress.
	if ch.Status != userchallenge.StatusActive {
		return &obs, nil
	}

	disqualified := engine.BreaksStreak(ct, ch.Mode, obs)
	next, events := engine.UpdateStreak(*ch, disqualified, now)
	days := engine.DaysSmokeFree(next, now)
	next, unlockEvents := engine.UnlockMilestones(next, ct, days, now)
	events = append(events, unlockEvents...)

	if _, err := s.saveTransition(ctx, s.db, next, ch.Version); err != nil {
		return nil, err
	}

	for _, ev := range events {
		switch ev.Type {
		case engine.EventMilestoneUnlocked:
			milestonesUnlockedTotal.Inc()
		case engine.EventStreakReset:
			streaksResetTotal.Inc()
		}
	}
	s.events.Publish(events...)
	return &obs, nil
}

func (s *ChallengeService) insertObservation(ctx context.Context, obs observation.Observation) error {
	query := `
	INSERT INTO observations (
		id, user_id, user_challenge_id, category, observation_date,
		numeric_value, text_value, note, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query,
		obs.ID, obs.UserID, obs.UserChallengeID, obs.Category,
		obs.ObservationDate, obs.NumericValue, obs.TextValue, obs.Note,
		obs.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log observation: %w", err)
	}
	return nil
}

// ListObservations returns the display view of the log: one entry per
// category per date, the latest write superseding earlier ones.
func (s *ChallengeService) ListObservations(ctx context.Context, clerkID, challengeTypeID string, from, to time.Time) ([]observation.Observation, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT DISTINCT ON (category, observation_date)
		id, user_id, user_challenge_id, category, observation_date,
		numeric_value, text_value, note, created_at
	FROM observations
	WHERE user_id = $1
		AND observation_date >= $2 AND observation_date <= $3
		AND ($4 = '' OR user_challenge_id IN (
			SELECT id FROM user_challenges WHERE user_id = $1 AND challenge_type_id = $4
		))
	ORDER BY category, observation_date DESC, created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, from, to, challengeTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	var out []observation.Observation
	for rows.Next() {
		var obs observation.Observation
		err := rows.Scan(
			&obs.ID, &obs.UserID, &obs.UserChallengeID, &obs.Category,
			&obs.ObservationDate, &obs.NumericValue, &obs.TextValue, &obs.Note,
			&obs.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []observation.Observation{}
	}
	return out, nil
}

// ChallengeWidget is the progress payload the client widget renders.
type ChallengeWidget struct {
	Challenge          *userchallenge.UserChallenge `json:"challenge"`
	DaysSmokeFree      int                          `json:"days_smoke_free"`
	CurrentStreakDays  int                          `json:"current_streak_days"`
	LongestStreakDays  int                          `json:"longest_streak_days"`
	NextMilestone      *challengetype.Milestone     `json:"next_milestone,omitempty"`
	UnlockedMilestones []challengetype.Milestone    `json:"unlocked_milestones"`
	HealthRisks        []engine.RiskFade            `json:"health_risks,omitempty"`
	LatestCigarettes   *float64                     `json:"latest_cigarette_count,omitempty"`
}

// GetWidget assembles the full progress view for one challenge.
func (s *ChallengeService) GetWidget(ctx context.Context, clerkID, challengeTypeID string) (*ChallengeWidget, error) {
	ct, err := s.catalog.GetChallengeType(challengeTypeID)
	if err != nil {
		return nil, err
	}
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	ch, err := s.loadLatest(ctx, userID, ct.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	days := engine.DaysSmokeFree(*ch, now)

	widget := &ChallengeWidget{
		Challenge:          ch,
		DaysSmokeFree:      days,
		CurrentStreakDays:  ch.CurrentStreakDays,
		LongestStreakDays:  ch.LongestStreakDays,
		UnlockedMilestones: []challengetype.Milestone{},
	}
	for _, id := range ch.UnlockedMilestones {
		if m := ct.MilestoneByID(id); m != nil {
			widget.UnlockedMilestones = append(widget.UnlockedMilestones, *m)
		}
	}
	if ch.Mode == userchallenge.ModeQuitting {
		widget.NextMilestone = engine.NextMilestone(ct, days)
	}
	if ct.ShowHealthRisks {
		widget.HealthRisks = engine.Fades(ct, ch.Mode, days)
	}
	if ch.Mode == userchallenge.ModeReduction {
		obsList, err := s.ListObservations(ctx, clerkID, ct.ID, ch.StartedAt.AddDate(0, 0, -1), now)
		if err != nil {
			return nil, err
		}
		widget.LatestCigarettes = engine.LatestCigaretteCount(obsList)
	}
	return widget, nil
}

// RollForward advances streaks and milestone unlocks for one active quitting
// challenge without a user write. Used by the nightly worker so day-boundary
// unlocks don't wait for the next observation.
func (s *ChallengeService) RollForward(ctx context.Context, ch *userchallenge.UserChallenge) error {
	ct, err := s.catalog.GetChallengeType(ch.ChallengeTypeID)
	if err != nil {
		return err
	}
	now := time.Now()

	next, events := engine.UpdateStreak(*ch, false, now)
	days := engine.DaysSmokeFree(next, now)
	next, unlockEvents := engine.UnlockMilestones(next, ct, days, now)
	events = append(events, unlockEvents...)
	if len(events) == 0 && next.CurrentStreakDays == ch.CurrentStreakDays {
		return nil
	}

	if _, err := s.saveTransition(ctx, s.db, next, ch.Version); err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Type == engine.EventMilestoneUnlocked {
			milestonesUnlockedTotal.Inc()
		}
	}
	s.events.Publish(events...)
	return nil
}

// ListActiveQuitting feeds the nightly roll.
func (s *ChallengeService) ListActiveQuitting(ctx context.Context) ([]*userchallenge.UserChallenge, error) {
	query := `SELECT ` + challengeColumns + `
		FROM user_challenges
		WHERE status = 'active' AND mode = 'quitting'`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}
	defer rows.Close()

	var out []*userchallenge.UserChallenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// ObservedOn reports whether the user logged anything for the given day.
// The evening reminder worker uses it to skip users who already checked in.
func (s *ChallengeService) ObservedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM observations WHERE user_id = $1 AND observation_date = $2)`,
		userID, date.Truncate(24*time.Hour)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check observations: %w", err)
	}
	return exists, nil
}

func parseObservationDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", engine.ErrValidation)
	}
	return date, nil
}
