package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/engine"
	"quitPathAPI/internal/types/notification"
	"quitPathAPI/internal/types/points"
)

// PointsCreditor is the slice of the points service the dispatcher needs.
type PointsCreditor interface {
	Credit(ctx context.Context, userID uuid.UUID, delta int, reason points.Reason, refID *string) error
}

// NotificationCreator is the slice of the notification service the dispatcher needs.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// EventDispatcher fans engine events out to the points ledger and the
// notification pipeline. Delivery is fire-and-forget: a consumer failure is
// logged and dropped, it never reaches the user-facing flow that produced
// the event.
type EventDispatcher struct {
	workers  int
	jobQueue chan engine.Event
	stopChan chan struct{}
	wg       sync.WaitGroup

	points   PointsCreditor
	notifier NotificationCreator
}

func NewEventDispatcher() *EventDispatcher {
	d := &EventDispatcher{
		workers:  3,
		jobQueue: make(chan engine.Event, 256),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

// Consumers are injected from main after construction.
func (d *EventDispatcher) SetPointsCreditor(p PointsCreditor)           { d.points = p }
func (d *EventDispatcher) SetNotificationCreator(n NotificationCreator) { d.notifier = n }

// Publish enqueues events without blocking the caller. A full queue drops
// the event; engine events are advisory, the stored state is the truth.
func (d *EventDispatcher) Publish(events ...engine.Event) {
	for _, ev := range events {
		select {
		case d.jobQueue <- ev:
		default:
			log.Printf("Event queue full, dropping %s for challenge %s", ev.Type, ev.ChallengeID)
		}
	}
}

func (d *EventDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

func (d *EventDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *EventDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.jobQueue:
			d.handle(ev)
		case <-d.stopChan:
			return
		}
	}
}

func (d *EventDispatcher) handle(ev engine.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.Type {
	case engine.EventMilestoneUnlocked:
		if d.points != nil && ev.Points > 0 {
			refID := ev.MilestoneID
			if err := d.points.Credit(ctx, ev.UserID, ev.Points, points.ReasonMilestoneUnlocked, &refID); err != nil {
				log.Printf("Failed to credit %d points for milestone %s: %v", ev.Points, ev.MilestoneID, err)
			}
		}
		d.notify(ctx, ev.UserID, notification.NotificationMilestoneUnlocked, notification.PriorityHigh, map[string]any{
			"milestone_id": ev.MilestoneID,
			"milestone":    ev.MilestoneName,
			"points":       fmt.Sprintf("%d", ev.Points),
		})

	case engine.EventStreakReset:
		d.notify(ctx, ev.UserID, notification.NotificationStreakReset, notification.PriorityNormal, map[string]any{
			"previous_days": fmt.Sprintf("%d", ev.PreviousStreakDays),
		})

	case engine.EventChallengeStateChanged:
		d.notify(ctx, ev.UserID, notification.NotificationChallengeState, notification.PriorityLow, map[string]any{
			"from": string(ev.From),
			"to":   string(ev.To),
		})
	}
}

func (d *EventDispatcher) notify(ctx context.Context, userID uuid.UUID, typ notification.NotificationType, prio notification.NotificationPriority, data map[string]any) {
	if d.notifier == nil {
		return
	}
	_, err := d.notifier.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     typ,
		Priority: prio,
		Data:     data,
	})
	if err != nil {
		log.Printf("Failed to create %s notification for user %s: %v", typ, userID, err)
	}
}
