package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, clerk_id, email, username, first_name, last_name, image_url,
	quit_date, cigarettes_per_day, pack_price, currency, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.QuitDate, &u.CigarettesPerDay, &u.PackPrice, &u.Currency,
		&u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	query := `
		INSERT INTO users (clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (clerk_id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		req.ClerkID, req.Email, req.Username, req.FirstName, req.LastName, req.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User created/updated: %s (%s)", u.Username, u.ClerkID)
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", clerkID, engine.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
		UPDATE users SET
			username = COALESCE($2, username),
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			image_url = COALESCE($5, image_url),
			quit_date = COALESCE($6, quit_date),
			cigarettes_per_day = COALESCE($7, cigarettes_per_day),
			pack_price = COALESCE($8, pack_price),
			currency = COALESCE($9, currency),
			updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID,
		req.Username, req.FirstName, req.LastName, req.ImageURL,
		req.QuitDate, req.CigarettesPerDay, req.PackPrice, req.Currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", clerkID, engine.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", clerkID, engine.ErrNotFound)
	}

	log.Printf("User deleted: %s", clerkID)
	return nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET is_verified = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, verified)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	return nil
}

// TouchLastSeen records app activity, used by the streak-risk worker to
// decide who still needs a reminder for today.
func (s *UserService) TouchLastSeen(ctx context.Context, clerkID string) {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET last_seen_at = NOW() WHERE clerk_id = $1`, clerkID)
	if err != nil {
		log.Printf("Failed to touch last_seen for %s: %v", clerkID, err)
	}
}

func (s *UserService) ResolveUserID(ctx context.Context, clerkID string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("user %s: %w", clerkID, engine.ErrNotFound)
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}
