package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/iurii2002/CoursesManager/internal/course"

	"github.com/IBM/sarama"
)

// KafkaProducer publishes course events to one topic keyed by course id, so
// events of a course keep their order within a partition.
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.ClientID = "course-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewKafkaProducerWith(producer, topic, logger), nil
}

// NewKafkaProducerWith wraps an existing sarama producer (useful for testing).
func NewKafkaProducerWith(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *KafkaProducer) Publish(ctx context.Context, event course.CourseEvent) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal course event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.Itoa(event.ID)),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte(EventTypeHeader), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send course event to kafka", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "course event sent to kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"id", event.ID,
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
