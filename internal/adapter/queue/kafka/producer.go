package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// Producer publishes processed-order messages to the downstream topic.
// Implements domain.QueuePublisher.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects a producer and ensures the downstream topic
// exists.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name cannot be empty")
	}

	slog.Info("creating kafka producer",
		slog.Any("brokers", brokers),
		slog.String("topic", topic))

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		KotelHooks(),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1_000_000),
		kgo.DialTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := EnsureTopic(ctx, client, topic, defaultPartitions, defaultReplicationFactor); err != nil {
		slog.Warn("ensure downstream topic", slog.String("topic", topic), slog.Any("error", err))
	}

	return &Producer{client: client, topic: topic}, nil
}

// Publish sends one message keyed for partition affinity. The pipeline
// trace rides on the record headers.
func (p *Producer) Publish(ctx domain.Context, key string, payload []byte) error {
	record := &kgo.Record{
		Topic:   p.topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: TraceHeaders(ctx),
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=kafka.publish: %w: %v", domain.ErrPublishFailed, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
