package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"babyday-backend/internal/model"
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

// Job announces that a baby's day has been materialized.
type Job struct {
	BabyID string
	Date   string
}

// Payload is the JSON body delivered to the service worker.
type Payload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	BabyID string `json:"babyId"`
	Date   string `json:"date"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForBaby(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job, blocking while the queue is full.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// NotifyScheduleReady queues a job without blocking. The job is dropped when the queue is full.
func (wp *WorkerPool) NotifyScheduleReady(babyID, dateISO string) {
	select {
	case wp.jobs <- Job{BabyID: babyID, Date: dateISO}:
	default:
		wp.logger.Warn("notification queue full, dropping job",
			zap.String("babyId", babyID),
			zap.String("date", dateISO))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForBaby(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).
		Where("baby_id = ?", job.BabyID).
		Find(&subscriptions).Error; err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.String("babyId", job.BabyID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(Payload{
		Title:  "Schedule ready",
		Body:   fmt.Sprintf("The plan for %s is ready to review.", job.Date),
		BabyID: job.BabyID,
		Date:   job.Date,
	})
	if err != nil {
		wp.logger.Error("failed to encode payload", zap.Error(err))
		return
	}

	wp.logger.Info("sending schedule notifications",
		zap.String("babyId", job.BabyID),
		zap.String("date", job.Date),
		zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

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
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
