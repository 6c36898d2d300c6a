package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"quitPathAPI/internal/types/notification"
	"quitPathAPI/services"
)

// Scheduler owns the background jobs: the nightly streak roll, the
// evening streak-risk reminder and notification cleanup.
type Scheduler struct {
	sched         gocron.Scheduler
	challenges    *services.ChallengeService
	notifications *services.NotificationService
}

func Start(challenges *services.ChallengeService, notifications *services.NotificationService) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		sched:         sched,
		challenges:    challenges,
		notifications: notifications,
	}

	// Shortly after midnight: advance streaks and unlock day-boundary
	// milestones for users who didn't open the app.
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 10, 0))),
		gocron.NewTask(s.rollForward),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule nightly roll: %w", err)
	}

	// Evening: remind users with a live streak who haven't logged today.
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(20, 0, 0))),
		gocron.NewTask(s.streakRiskReminders),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule streak reminders: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(s.cleanupNotifications),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule notification cleanup: %w", err)
	}

	sched.Start()
	log.Println("Background scheduler started")
	return s, nil
}

func (s *Scheduler) Stop() {
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
}

func (s *Scheduler) rollForward() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	challenges, err := s.challenges.ListActiveQuitting(ctx)
	if err != nil {
		log.Printf("Nightly roll: %v", err)
		return
	}

	rolled := 0
	for _, ch := range challenges {
		if err := s.challenges.RollForward(ctx, ch); err != nil {
			log.Printf("Nightly roll: challenge %s: %v", ch.ID, err)
			continue
		}
		rolled++
	}
	log.Printf("Nightly roll: processed %d challenges", rolled)
}

func (s *Scheduler) streakRiskReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	challenges, err := s.challenges.ListActiveQuitting(ctx)
	if err != nil {
		log.Printf("Streak reminders: %v", err)
		return
	}

	today := time.Now().UTC()
	sent := 0
	for _, ch := range challenges {
		if ch.CurrentStreakDays == 0 {
			continue
		}
		logged, err := s.challenges.ObservedOn(ctx, ch.UserID, today)
		if err != nil {
			log.Printf("Streak reminders: user %s: %v", ch.UserID, err)
			continue
		}
		if logged {
			continue
		}

		_, err = s.notifications.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:   ch.UserID,
			Type:     notification.NotificationStreakRisk,
			Priority: notification.PriorityNormal,
			Data: map[string]any{
				"streak_days":       fmt.Sprintf("%d", ch.CurrentStreakDays),
				"challenge_type_id": ch.ChallengeTypeID,
			},
		})
		if err != nil {
			log.Printf("Streak reminders: user %s: %v", ch.UserID, err)
			continue
		}
		sent++
	}
	log.Printf("Streak reminders: sent %d", sent)
}

func (s *Scheduler) cleanupNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.notifications.DeleteExpired(ctx)
	if err != nil {
		log.Printf("Notification cleanup: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Notification cleanup: removed %d expired", deleted)
	}
}
