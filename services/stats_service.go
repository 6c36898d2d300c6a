package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/observation"
	"quitPathAPI/internal/types/stats"
	"quitPathAPI/internal/types/userchallenge"
	"quitPathAPI/utils"
)

// StatsService assembles the per-user aggregate snapshot the badge
// predicates and the profile screen read. The snapshot spans every challenge
// instance, cancelled ones included.
type StatsService struct {
	db      *pgxpool.Pool
	catalog *CatalogService
}

func NewStatsService(db *pgxpool.Pool, catalog *CatalogService) *StatsService {
	return &StatsService{db: db, catalog: catalog}
}

func (s *StatsService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	userID, err := lookupUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		COALESCE(MAX(uc.current_streak_days) FILTER (WHERE uc.status != 'cancelled'), 0) AS current_streak,
		COALESCE(MAX(uc.longest_streak_days), 0) AS longest_streak,
		COALESCE(SUM(COALESCE(array_length(uc.unlocked_milestones, 1), 0)), 0) AS unlocked_milestones,
		(SELECT COUNT(*) FROM observations o WHERE o.user_id = $1) AS total_observations,
		(SELECT COUNT(*) FROM observations o WHERE o.user_id = $1 AND o.category = $2) AS completed_questionnaires,
		(SELECT COALESCE(SUM(delta), 0) FROM points_ledger p WHERE p.user_id = $1) AS points_balance
	FROM user_challenges uc
	WHERE uc.user_id = $1
	`

	snapshot := stats.Snapshot{}
	err = s.db.QueryRow(ctx, query, userID, observation.CategoryQuestionnaireDone).Scan(
		&snapshot.CurrentStreakDays,
		&snapshot.LongestStreakDays,
		&snapshot.UnlockedMilestones,
		&snapshot.TotalObservations,
		&snapshot.CompletedQuestionnaires,
		&snapshot.PointsBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	snapshot.SmokeFreeDays, err = s.smokeFreeDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &stats.UserStats{
		Snapshot: snapshot,
		Badges:   engine.Badges(snapshot),
		RecoveryScore: utils.CalculateRecoveryScore(
			snapshot.LongestStreakDays,
			snapshot.SmokeFreeDays,
			snapshot.UnlockedMilestones,
		),
	}, nil
}

// smokeFreeDays sums the accrued days over all quitting instances. The
// per-instance arithmetic lives in the engine; this only fetches snapshots.
func (s *StatsService) smokeFreeDays(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT ` + challengeColumns + `
		FROM user_challenges
		WHERE user_id = $1 AND mode = 'quitting'`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load quitting challenges: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	total := 0
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return 0, fmt.Errorf("failed to scan challenge: %w", err)
		}
		total += engine.DaysSmokeFree(*ch, now)
	}
	return total, rows.Err()
}

// ActiveChallengeSummaries lists the user's live instances for the profile
// header.
func (s *StatsService) ActiveChallengeSummaries(ctx context.Context, clerkID string) ([]*userchallenge.UserChallenge, error) {
	userID, err := lookupUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + challengeColumns + `
		FROM user_challenges
		WHERE user_id = $1 AND status != 'cancelled'
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
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
	if out == nil {
		out = []*userchallenge.UserChallenge{}
	}
	return out, rows.Err()
}
