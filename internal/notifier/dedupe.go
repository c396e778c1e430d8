package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/redis"
)

var (
	ErrAlreadyDelivered  = errors.New("notification already delivered")
	ErrLockAcquireFailed = errors.New("failed to acquire delivery lock")
)

// DedupeConfig controls the redis markers that keep at-least-once stream
// delivery from turning into duplicate webhook calls. Retry counting lives in
// the stream itself, so the dedupe layer only tracks locks and completions.
type DedupeConfig struct {
	LockTTL      time.Duration
	DeliveredTTL time.Duration

	LockKeyPrefix      string
	DeliveredKeyPrefix string
}

func DefaultDedupeConfig() DedupeConfig {
	return DedupeConfig{
		LockTTL:            30 * time.Second,
		DeliveredTTL:       24 * time.Hour,
		LockKeyPrefix:      "notify:lock:",
		DeliveredKeyPrefix: "notify:done:",
	}
}

type DedupeService struct {
	redis  redis.RedisAdapter
	config DedupeConfig
}

func NewDedupeService(adapter redis.RedisAdapter, config DedupeConfig) *DedupeService {
	return &DedupeService{redis: adapter, config: config}
}

// DeliveryLock is held while one consumer posts a notification. Release it on
// failure so a retry can pick the message up; MarkDelivered releases it along
// with setting the long-term marker.
type DeliveryLock struct {
	MessageID string
	held      bool
	service   *DedupeService
}

func (s *DedupeService) Acquire(ctx context.Context, messageID string) (*DeliveryLock, error) {
	deliveredKey := s.config.DeliveredKeyPrefix + messageID
	exists, err := s.redis.Exist(deliveredKey)
	if err != nil {
		// A failed check risks a duplicate, which beats blocking delivery.
		logger.Warn("delivered marker check failed", "message_id", messageID, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyDelivered
	}

	lockKey := s.config.LockKeyPrefix + messageID
	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := s.redis.SetNX(lockKey, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &DeliveryLock{MessageID: messageID, held: true, service: s}, nil
}

func (s *DedupeService) MarkDelivered(ctx context.Context, lock *DeliveryLock) error {
	deliveredKey := s.config.DeliveredKeyPrefix + lock.MessageID
	if err := s.redis.Set(deliveredKey, []byte("1"), s.config.DeliveredTTL); err != nil {
		return fmt.Errorf("set delivered marker: %w", err)
	}
	s.Release(ctx, lock)
	return nil
}

func (s *DedupeService) Release(ctx context.Context, lock *DeliveryLock) {
	if lock == nil || !lock.held {
		return
	}
	lockKey := s.config.LockKeyPrefix + lock.MessageID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("delivery lock release failed", "message_id", lock.MessageID, "error", err)
		return
	}
	lock.held = false
}
