package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// Producer wraps a Sarama sync producer for JSON payloads.
type Producer struct {
	sp sarama.SyncProducer
}

// NewProducer creates a new Kafka producer. Returns nil when Kafka is not
// configured; a nil producer drops messages silently.
func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sp: sp}, nil
}

// PublishJSON marshals v and publishes it to the topic under the given key.
func (p *Producer) PublishJSON(topic, key string, v any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kafka: marshal message: %w", err)
	}
	_, _, err = p.sp.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", topic, err)
	}
	return nil
}

// Close shuts the producer down
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.sp.Close()
}
