package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quitPathAPI/internal/types/points"
)

// PointsService keeps the append-only rewards ledger. Balances are summed
// from the ledger on every read, never cached in a column.
type PointsService struct {
	db *pgxpool.Pool
}

func NewPointsService(db *pgxpool.Pool) *PointsService {
	return &PointsService{db: db}
}

func (s *PointsService) Credit(ctx context.Context, userID uuid.UUID, delta int, reason points.Reason, refID *string) error {
	query := `
	INSERT INTO points_ledger (id, user_id, delta, reason, ref_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.Exec(ctx, query, uuid.New(), userID, delta, reason, refID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	return nil
}

func (s *PointsService) GetBalance(ctx context.Context, clerkID string) (*points.Balance, error) {
	userID, err := lookupUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	balance := &points.Balance{UserID: userID}
	query := `SELECT COALESCE(SUM(delta), 0) FROM points_ledger WHERE user_id = $1`
	if err := s.db.QueryRow(ctx, query, userID).Scan(&balance.Balance); err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return balance, nil
}

func (s *PointsService) ListLedger(ctx context.Context, clerkID string, limit int) ([]points.Entry, error) {
	userID, err := lookupUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
	SELECT id, user_id, delta, reason, ref_id, created_at
	FROM points_ledger
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	defer rows.Close()

	var entries []points.Entry
	for rows.Next() {
		var e points.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Reason, &e.RefID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if entries == nil {
		entries = []points.Entry{}
	}
	return entries, rows.Err()
}
