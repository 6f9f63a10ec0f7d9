package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// mailEvent is the payload a mail relay consumes from the topic.
type mailEvent struct {
	Message
	QueuedAt time.Time `json:"queuedAt"`
}

// KafkaSender hands messages to a relay through a topic keyed by recipient.
type KafkaSender struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewKafkaSender(producer sarama.SyncProducer, topic string) *KafkaSender {
	return &KafkaSender{producer: producer, topic: topic, now: time.Now}
}

// NewKafkaProducer builds an idempotent sync producer for brokers.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_7_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) (*Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(mailEvent{Message: msg, QueuedAt: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal mail event: %w", err)
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(msg.To),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("kafka publish failed: %w", err)
	}
	return &Delivery{}, nil
}

func (s *KafkaSender) Close() error {
	return s.producer.Close()
}
