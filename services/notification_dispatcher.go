package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quitPathAPI/internal/types/notification"
)

// PushSender is the slice of the FCM client the dispatcher needs.
type PushSender interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications to user devices on a
// small worker pool, so a slow FCM round-trip never blocks the request
// that created the notification.
type NotificationDispatcher struct {
	service *NotificationService
	sender  PushSender

	workers  int
	jobQueue chan uuid.UUID
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(service *NotificationService, sender PushSender) *NotificationDispatcher {
	d := &NotificationDispatcher{
		service:  service,
		sender:   sender,
		workers:  3,
		jobQueue: make(chan uuid.UUID, 256),
		stopChan: make(chan struct{}),
	}
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules a push without blocking. A full queue leaves the
// notification in-app only, with status still pending.
func (d *NotificationDispatcher) Enqueue(id uuid.UUID) {
	select {
	case d.jobQueue <- id:
	default:
		log.Printf("Push queue full, skipping push for notification %s", id)
	}
}

func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case id := <-d.jobQueue:
			d.push(id)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) push(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	n, err := d.service.GetNotificationByID(ctx, id)
	if err != nil {
		log.Printf("Push: failed to load notification %s: %v", id, err)
		return
	}

	tokens, err := d.service.GetDeviceTokens(ctx, n.UserID)
	if err != nil {
		log.Printf("Push: failed to load tokens for user %s: %v", n.UserID, err)
		return
	}
	if len(tokens) == 0 {
		// Nothing to push to; the in-app notification stands.
		if err := d.service.MarkSent(ctx, id); err != nil {
			log.Printf("Push: failed to mark %s sent: %v", id, err)
		}
		return
	}

	if err := d.sender.SendPush(ctx, tokens, n.Title, n.Body, n.Data); err != nil {
		log.Printf("Push: delivery failed for notification %s: %v", id, err)
		if err := d.service.MarkFailed(ctx, id); err != nil {
			log.Printf("Push: failed to mark %s failed: %v", id, err)
		}
		return
	}

	if err := d.service.MarkSent(ctx, id); err != nil {
		log.Printf("Push: failed to mark %s sent: %v", id, err)
	}
}
