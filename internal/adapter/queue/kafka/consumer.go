// Package kafka is the franz-go driver for the pipeline: a
// manual-commit group consumer feeding the event handler, a producer
// for processed orders, and topic bootstrap.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// EventHandler is the per-record entry point the consumer drives. A nil
// return commits the record.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.OrderEvent) error
}

// recordsCommitter is the slice of kgo.Client the record path needs.
type recordsCommitter interface {
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// Consumer polls the input topic and walks each record through the
// handler. Auto-commit is disabled: a record commits only after a nil
// handler return, so every failure path ends in redelivery. Records of
// one partition are handled in order.
type Consumer struct {
	client  *kgo.Client
	commits recordsCommitter
	handler EventHandler
	poison  domain.DeadLetterSink
	topic   string
	groupID string
}

// NewConsumer builds the group consumer and ensures the input topic
// exists.
func NewConsumer(brokers []string, groupID, topic string, handler EventHandler, poison domain.DeadLetterSink) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("event handler is required")
	}
	if poison == nil {
		return nil, fmt.Errorf("dead-letter sink is required")
	}

	slog.Info("creating kafka consumer",
		slog.Any("brokers", brokers),
		slog.String("group_id", groupID),
		slog.String("topic", topic))

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		KotelHooks(),
		kgo.DialTimeout(10*time.Second),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.FetchMaxWait(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := EnsureTopic(ctx, client, topic, defaultPartitions, defaultReplicationFactor); err != nil {
		slog.Warn("ensure input topic", slog.String("topic", topic), slog.Any("error", err))
	}

	return &Consumer{
		client:  client,
		commits: client,
		handler: handler,
		poison:  poison,
		topic:   topic,
		groupID: groupID,
	}, nil
}

// Run polls until the context ends or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	lg := slog.Default().With(
		slog.String("topic", c.topic),
		slog.String("group_id", c.groupID))
	lg.Info("consumer loop started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			lg.Info("consumer client closed")
			return nil
		}
		if err := ctx.Err(); err != nil {
			lg.Info("consumer loop stopped", slog.Any("error", err))
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			lg.Error("fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			for _, record := range p.Records {
				if ctx.Err() != nil {
					return
				}
				c.handleRecord(ctx, record)
			}
		})
	}
}

// handleRecord runs one record through the pipeline and commits it on
// success. Unparseable payloads are poison: dead-lettered and committed
// instead of redelivered forever.
func (c *Consumer) handleRecord(ctx context.Context, record *kgo.Record) {
	ctx = observability.ContextWithTrace(ctx, traceFromRecord(record))
	lg := observability.LoggerWithTrace(ctx).With(
		slog.String("topic", record.Topic),
		slog.Int("partition", int(record.Partition)),
		slog.Int64("offset", record.Offset),
	)
	ctx = observability.ContextWithLogger(ctx, lg)

	var ev domain.OrderEvent
	if err := json.Unmarshal(record.Value, &ev); err != nil {
		cause := fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
		lg.Error("malformed event payload",
			slog.String("payload_preview", preview(record.Value)),
			slog.Any("error", err))
		if sinkErr := c.poison.SendPoisonEvent(ctx, record.Value, cause); sinkErr != nil {
			lg.Error("poison event sink failed, leaving record uncommitted", slog.Any("error", sinkErr))
			return
		}
		c.commit(ctx, lg, record)
		return
	}

	if ev.EventID == "" {
		// Events arriving without an id get one minted at entry so
		// logs and dead-letter records still correlate.
		ev.EventID = newEventID()
	}

	if err := c.handler.HandleEvent(ctx, ev); err != nil {
		lg.Error("event handling failed, leaving record uncommitted", slog.Any("error", err))
		return
	}
	c.commit(ctx, lg, record)
}

var eventIDEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Weak random is sufficient for ULID entropy.

func newEventID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), eventIDEntropy)
	if err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return id.String()
}

func (c *Consumer) commit(ctx context.Context, lg *slog.Logger, record *kgo.Record) {
	if err := c.commits.CommitRecords(ctx, record); err != nil {
		lg.Error("commit record", slog.Any("error", err))
	}
}

// Client exposes the underlying kgo client for readiness pings.
func (c *Consumer) Client() *kgo.Client {
	return c.client
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
