// Package queue hands scheduled jobs to workers and feeds their status
// reports back to the job service.
package queue

import (
	"context"
	"encoding/json"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes each scheduled job, keyed by job id, to the
// job topic.
type KafkaDispatcher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewKafkaDispatcher(brokers []string, topic string, logger *zap.Logger) *KafkaDispatcher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaDispatcher{writer: writer, topic: topic, logger: logger}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, job *entities.Job) error {
	value, err := json.Marshal(job)
	if err != nil {
		return errs.InternalErrorf("failed to marshal job %s: %v", job.ID, err)
	}
	if err := d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(job.ID), Value: value}); err != nil {
		d.logger.Error("Failed to write job to Kafka", zap.String("topic", d.topic), zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	d.logger.Debug("Job published", zap.String("topic", d.topic), zap.String("job_id", job.ID), zap.String("type", job.Type))
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}

var _ interfaces.JobDispatcher = (*KafkaDispatcher)(nil)
