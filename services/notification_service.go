package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/notification"
)

const notificationTTL = 7 * 24 * time.Hour

// template renders the user-facing text for a notification type from its
// data payload.
type template struct {
	title string
	body  func(data map[string]any) string
}

var templates = map[notification.NotificationType]template{
	notification.NotificationMilestoneUnlocked: {
		title: "Milestone unlocked!",
		body: func(data map[string]any) string {
			return fmt.Sprintf("You reached %v. Keep going!", data["milestone"])
		},
	},
	notification.NotificationStreakReset: {
		title: "Streak reset",
		body: func(data map[string]any) string {
			return fmt.Sprintf("Your %v-day streak ended. Today is a new day one.", data["previous_days"])
		},
	},
	notification.NotificationStreakRisk: {
		title: "Don't lose your streak",
		body: func(data map[string]any) string {
			return fmt.Sprintf("You're on a %v-day streak. Log today to keep it alive.", data["streak_days"])
		},
	},
	notification.NotificationChallengeState: {
		title: "Challenge updated",
		body: func(data map[string]any) string {
			return fmt.Sprintf("Your challenge moved from %v to %v.", data["from"], data["to"])
		},
	},
	notification.NotificationQuestionnaire: {
		title: "Check-in complete",
		body: func(data map[string]any) string {
			return fmt.Sprintf("Health check-in recorded, +%v points.", data["points"])
		},
	},
}

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetDispatcher wires the push pipeline; without it notifications are
// stored in-app only.
func (s *NotificationService) SetDispatcher(d *NotificationDispatcher) {
	s.dispatcher = d
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	tmpl, ok := templates[req.Type]
	if !ok {
		return nil, fmt.Errorf("unknown notification type %q: %w", req.Type, engine.ErrValidation)
	}

	prefs, err := s.GetPreferences(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if enabled, found := prefs.EnabledTypes[string(req.Type)]; found && !enabled {
		log.Printf("Notification %s suppressed by preferences for user %s", req.Type, req.UserID)
		return nil, nil
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	n := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Priority:  priority,
		Status:    notification.StatusPending,
		Title:     tmpl.title,
		Body:      tmpl.body(req.Data),
		Data:      req.Data,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(notificationTTL),
	}

	query := `
		INSERT INTO notifications (id, user_id, type, priority, status, title, body, data, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Priority, n.Status, n.Title, n.Body, n.Data, n.CreatedAt, n.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.dispatcher != nil && prefs.PushEnabled {
		s.dispatcher.Enqueue(n.ID)
	}
	return n, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := `
		SELECT id, user_id, type, priority, status, title, body, data, sent_at, read_at, created_at, expires_at
		FROM notifications
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Status,
			&n.Title, &n.Body, &n.Data, &n.SentAt, &n.ReadAt, &n.CreatedAt, &n.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	var total, unread int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE read_at IS NULL)
		FROM notifications
		WHERE user_id = $1 AND expires_at > NOW()`, userID).Scan(&total, &unread)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		TotalCount:    total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, engine.ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, engine.ErrNotFound)
	}
	return nil
}

// GetPreferences returns stored preferences, falling back to
// everything-enabled defaults for users who never touched them.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	var p notification.NotificationPreferences
	err := s.db.QueryRow(ctx,
		`SELECT user_id, push_enabled, enabled_types FROM notification_preferences WHERE user_id = $1`,
		userID).Scan(&p.UserID, &p.PushEnabled, &p.EnabledTypes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &notification.NotificationPreferences{
				UserID:       userID,
				PushEnabled:  true,
				EnabledTypes: map[string]bool{},
			}, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if p.EnabledTypes == nil {
		p.EnabledTypes = map[string]bool{}
	}
	return &p, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.PushEnabled != nil {
		current.PushEnabled = *req.PushEnabled
	}
	for typ, enabled := range req.EnabledTypes {
		current.EnabledTypes[typ] = enabled
	}

	query := `
		INSERT INTO notification_preferences (user_id, push_enabled, enabled_types, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			push_enabled = EXCLUDED.push_enabled,
			enabled_types = EXCLUDED.enabled_types,
			updated_at = NOW()`

	if _, err := s.db.Exec(ctx, query, userID, current.PushEnabled, current.EnabledTypes); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return current, nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	query := `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform`

	if _, err := s.db.Exec(ctx, query, userID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id, token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (s *NotificationService) GetNotificationByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, type, priority, status, title, body, data, sent_at, read_at, created_at, expires_at
		FROM notifications WHERE id = $1`, id).
		Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Status,
			&n.Title, &n.Body, &n.Data, &n.SentAt, &n.ReadAt, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", id, engine.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationService) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET status = $2, sent_at = NOW() WHERE id = $1`,
		id, notification.StatusSent)
	return err
}

func (s *NotificationService) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET status = $2 WHERE id = $1`,
		id, notification.StatusFailed)
	return err
}

// DeleteExpired is run by the hourly cleanup worker.
func (s *NotificationService) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
