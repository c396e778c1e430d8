package notifier

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/queue"
	"github.com/tdnguyen/tripledger/pkg/logger"
)

// WebhookDeliverer is what the processor needs from the webhook client.
type WebhookDeliverer interface {
	Deliver(ctx context.Context, notification *model.Notification) error
}

// WebhookProcessor posts queued notifications to the configured webhook. A
// malformed payload is acked straight away since retrying cannot fix it; a
// delivery failure is returned so the queue retries and eventually dead
// letters the message.
type WebhookProcessor struct {
	client WebhookDeliverer
	dedupe *DedupeService
}

func NewWebhookProcessor(client WebhookDeliverer, dedupe *DedupeService) *WebhookProcessor {
	return &WebhookProcessor{client: client, dedupe: dedupe}
}

func (p *WebhookProcessor) GetType() string {
	return "webhook"
}

func (p *WebhookProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var notification model.Notification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		logger.Error("unparseable notification, dropping", "message_id", msg.ID, "error", err)
		return nil
	}

	lock, err := p.dedupe.Acquire(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyDelivered) {
			return nil
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return err
		}
		return err
	}
	defer p.dedupe.Release(ctx, lock)

	if err := p.client.Deliver(ctx, &notification); err != nil {
		logger.Error("notification delivery failed",
			"message_id", msg.ID,
			"kind", notification.Kind,
			"trip_id", notification.TripID,
			"attempts", msg.Attempts,
			"error", err)
		return err
	}

	if err := p.dedupe.MarkDelivered(ctx, lock); err != nil {
		// Delivery succeeded; a missing marker only risks a duplicate.
		logger.Warn("delivered marker write failed", "message_id", msg.ID, "error", err)
	}

	logger.Info("notification delivered",
		"message_id", msg.ID,
		"kind", notification.Kind,
		"trip_id", notification.TripID,
		"debtor", notification.DebtorUserID,
		"creditor", notification.CreditorUserID)
	return nil
}
