// Package notifier drains the notification queue and posts each message to
// the configured webhook through a worker pool. Delivery is at-least-once;
// a redis dedupe marker keeps retries from double-posting.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tdnguyen/tripledger/internal/config"
	"github.com/tdnguyen/tripledger/internal/queue"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/redis"
	"github.com/tdnguyen/tripledger/pkg/worker"
)

const (
	DeliveryTimeout = 10 * time.Second
	HealthInterval  = 30 * time.Second
	ShutdownTimeout = time.Minute

	consumerCount = 4
	workerCount   = 32
	workerBuffer  = 1024
)

// Processor handles one queue message kind.
type Processor interface {
	Process(ctx context.Context, msg *queue.Message) error
	GetType() string
}

type Service struct {
	adapter   redis.RedisAdapter
	queues    []*queue.Queue
	processor Processor
	stats     *DeliveryStats
	worker    *worker.WorkerManager
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(adapter redis.RedisAdapter) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		adapter: adapter,
		queues:  make([]*queue.Queue, 0, consumerCount),
		stats:   NewDeliveryStats(),
		worker:  worker.NewWorkerManager(workerBuffer, workerCount, nil),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Service) RegisterProcessor(p Processor) {
	s.processor = p
	logger.Info("registered notification processor", "type", p.GetType())
}

func (s *Service) Start() error {
	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < consumerCount; i++ {
		cfg := queue.Config{
			Name:              config.Get().QueueName,
			ConsumerGroup:     config.Get().QueueConsumerGroup,
			ConsumerName:      fmt.Sprintf("%s-%d", config.Get().QueueConsumerName, i),
			MaxRetries:        config.Get().QueueMaxRetries,
			VisibilityTimeout: config.Get().QueueVisibilityTimeout,
			PollInterval:      config.Get().QueuePollInterval,
			BatchSize:         config.Get().QueueBatchSize,
			MaxLen:            config.Get().QueueMaxLen,
			EnableDLQ:         config.Get().QueueEnableDLQ,
		}

		q, err := queue.New(s.adapter, cfg)
		if err != nil {
			return fmt.Errorf("create consumer %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.statsReporter()
	go s.healthChecker()

	logger.Info("notifier started", "consumers", len(s.queues), "workers", workerCount)
	return nil
}

type deliveryJob struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler bridges the queue consumer to the worker pool and blocks
// until the worker reports a result, so the ack decision stays with the
// queue.
func (s *Service) messageHandler(ctx context.Context, msg *queue.Message) error {
	resultChan := make(chan error, 1)
	msgCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout+time.Second)
	defer cancel()

	s.worker.Enqueue(&deliveryJob{msg: msg, resultChan: resultChan, ctx: msgCtx})

	select {
	case err := <-resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timed out waiting for delivery worker: %w", msgCtx.Err())
	}
}

func (s *Service) workerHandler(workerIndex int, job interface{}) {
	delivery, ok := job.(*deliveryJob)
	if !ok {
		logger.Error("unexpected job type in worker", "worker", workerIndex)
		return
	}

	select {
	case <-delivery.ctx.Done():
		return
	default:
	}

	start := time.Now()
	var resultErr error
	if s.processor == nil {
		// No processor can ever succeed on retry. Ack and count the loss.
		s.stats.RecordFailure()
		resultErr = nil
	} else if err := s.processor.Process(delivery.ctx, delivery.msg); err != nil {
		s.stats.RecordFailure()
		resultErr = err
	} else {
		s.stats.RecordSuccess(time.Since(start))
		resultErr = nil
	}

	select {
	case delivery.resultChan <- resultErr:
	case <-delivery.ctx.Done():
		logger.Warn("message handler gave up before worker finished", "worker", workerIndex)
	}
}

func (s *Service) statsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportStats()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportStats() {
	stats := s.stats.Snapshot()
	logger.Info("delivery stats",
		"delivered", stats["delivered"],
		"failed", stats["failed"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"],
		"uptime_seconds", stats["uptime_seconds"])

	for i, q := range s.queues {
		if qStats, err := q.GetStats(); err == nil {
			logger.Info("queue stats", "consumer", i, "total", qStats.TotalMessages, "pending", qStats.PendingMessages)
		}
	}
}

func (s *Service) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkHealth()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) checkHealth() {
	if err := s.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("health check failed: redis unreachable", "error", err)
		return
	}
	for i, q := range s.queues {
		stats, err := q.GetStats()
		if err != nil {
			logger.Warn("health check: queue stats unavailable", "consumer", i, "error", err)
			continue
		}
		if stats.PendingMessages > 10000 {
			logger.Warn("health check: high queue lag", "consumer", i, "pending", stats.PendingMessages)
		}
	}
}

// Stop drains consumers, stops the worker pool, and reports final stats.
func (s *Service) Stop() {
	logger.Info("stopping notifier..")
	s.cancel()

	stopChan := make(chan struct{}, len(s.queues))
	for i, q := range s.queues {
		go func(index int, q *queue.Queue) {
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("consumer stop failed", "consumer", index, "error", err)
			}
			stopChan <- struct{}{}
		}(i, q)
	}
	for range s.queues {
		select {
		case <-stopChan:
		case <-time.After(ShutdownTimeout + 5*time.Second):
			logger.Warn("timed out waiting for consumers to stop")
		}
	}

	s.worker.Exit()
	s.wg.Wait()
	s.reportStats()
	logger.Info("notifier stopped")
}
