package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/model"
	"partyroom-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is a finished day waiting to be pushed to its player.
type Job struct {
	UserID string
	Stats  game.DailyStats
}

// Payload is the JSON body the service worker receives.
type Payload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Stats game.DailyStats `json:"stats"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     *logrus.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs store.SubscriptionStore, webpushOptions *webpush.Options, log *logrus.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.WithField("worker", id).Debug("notification worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.sendDayEnd(ctx, job)
		case <-ctx.Done():
			wp.log.WithField("worker", id).Debug("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues a job, dropping it when the queue is full.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.log.WithField("user_id", job.UserID).Warn("notification queue full, dropping day-end summary")
		return false
	}
}

// NotifyDayEnd queues the summary of a finished day.
func (wp *WorkerPool) NotifyDayEnd(userID string, stats game.DailyStats) {
	wp.Dispatch(Job{UserID: userID, Stats: stats})
}

// BuildPayload renders the day-end summary text.
func BuildPayload(stats game.DailyStats) Payload {
	return Payload{
		Title: fmt.Sprintf("第 %d 天結算", stats.Day),
		Body: fmt.Sprintf("完成 %d 筆預約，營收 $%d，支出 $%d，利潤 $%d",
			stats.BookingsCompleted, stats.Revenue, stats.Expenses, stats.Profit),
		Stats: stats,
	}
}

func (wp *WorkerPool) sendDayEnd(ctx context.Context, job Job) {
	logger := wp.log.WithFields(logrus.Fields{"user_id": job.UserID, "day": job.Stats.Day})

	subscriptions, err := wp.subs.SubscriptionsForUser(ctx, job.UserID)
	if err != nil {
		logger.WithError(err).Error("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(BuildPayload(job.Stats))
	if err != nil {
		logger.WithError(err).Error("failed to encode payload")
		return
	}

	logger.WithField("count", len(subscriptions)).Debug("sending day-end notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.WithField("endpoint", sub.Endpoint).WithError(err).Warn("failed to send notification")
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		wp.log.WithField("endpoint", sub.Endpoint).Info("subscription expired, deleting")
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.WithField("endpoint", sub.Endpoint).WithError(err).Warn("failed to delete expired subscription")
		}
	}
}
