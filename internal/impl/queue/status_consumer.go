package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// JobUpdater applies a worker's status report.
type JobUpdater interface {
	UpdateJob(ctx context.Context, update entities.JobUpdate) (*entities.Job, error)
}

const (
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// StatusConsumer reads job status reports from the status topic.
type StatusConsumer struct {
	reader     messageReader
	updater    JobUpdater
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewStatusConsumer(brokers []string, topic, groupID string, updater JobUpdater, logger *zap.Logger) *StatusConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &StatusConsumer{reader: reader, updater: updater, logger: logger, retryDelay: defaultRetryDelay}
}

// Run consumes until ctx is done. Every fetched message is committed,
// including reports that fail to apply. Fetch failures back off
// exponentially up to maxRetryDelay.
func (c *StatusConsumer) Run(ctx context.Context) {
	base := c.retryDelay
	if base <= 0 {
		base = defaultRetryDelay
	}
	delay := base
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping job status consumer")
				return
			}
			c.logger.Error("Error fetching job status from Kafka", zap.Duration("retry_in", delay), zap.Error(err))
			if !sleep(ctx, delay) {
				c.logger.Info("Stopping job status consumer")
				return
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = base

		if err := c.handle(ctx, msg); err != nil {
			c.logger.Error("Error handling job status",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("Failed to commit Kafka message", zap.Error(err))
		}
	}
}

// sleep waits for d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *StatusConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var update entities.JobUpdate
	if err := json.Unmarshal(msg.Value, &update); err != nil {
		return fmt.Errorf("invalid job status message: %w", err)
	}
	if update.JobID == "" {
		update.JobID = string(msg.Key)
	}
	_, err := c.updater.UpdateJob(ctx, update)
	return err
}

func (c *StatusConsumer) Close() error {
	return c.reader.Close()
}
