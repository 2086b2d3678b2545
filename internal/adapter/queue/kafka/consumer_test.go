package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain/mocks"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

type stubHandler struct {
	events []domain.OrderEvent
	ctxs   []context.Context
	err    error
}

func (s *stubHandler) HandleEvent(ctx context.Context, ev domain.OrderEvent) error {
	s.ctxs = append(s.ctxs, ctx)
	s.events = append(s.events, ev)
	return s.err
}

type stubCommitter struct {
	committed []*kgo.Record
	err       error
}

func (s *stubCommitter) CommitRecords(_ context.Context, rs ...*kgo.Record) error {
	s.committed = append(s.committed, rs...)
	return s.err
}

func newTestConsumer(handler EventHandler, poison domain.DeadLetterSink) (*Consumer, *stubCommitter) {
	commits := &stubCommitter{}
	return &Consumer{
		commits: commits,
		handler: handler,
		poison:  poison,
		topic:   "order-events",
		groupID: "order-pipeline",
	}, commits
}

func eventRecord(t *testing.T, ev domain.OrderEvent, headers ...kgo.RecordHeader) *kgo.Record {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return &kgo.Record{Topic: "order-events", Partition: 2, Offset: 7, Value: b, Headers: headers}
}

func TestHandleRecord_CommitsOnSuccess(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	c, commits := newTestConsumer(handler, mocks.NewMockDeadLetterSink(t))

	ev := domain.OrderEvent{
		EventID:            "EVT-1",
		EventType:          "BULK_ORDER",
		TradingPartnerName: "ACME",
		BusinessUnitName:   "NORTH",
	}
	c.handleRecord(context.Background(), eventRecord(t, ev))

	require.Len(t, handler.events, 1)
	assert.Equal(t, ev, handler.events[0])
	require.Len(t, commits.committed, 1)
	assert.Equal(t, int64(7), commits.committed[0].Offset)
}

func TestHandleRecord_MintsMissingEventID(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	c, _ := newTestConsumer(handler, mocks.NewMockDeadLetterSink(t))

	c.handleRecord(context.Background(), eventRecord(t, domain.OrderEvent{EventType: "BULK_ORDER"}))
	c.handleRecord(context.Background(), eventRecord(t, domain.OrderEvent{EventType: "BULK_ORDER"}))

	require.Len(t, handler.events, 2)
	assert.NotEmpty(t, handler.events[0].EventID)
	assert.NotEqual(t, handler.events[0].EventID, handler.events[1].EventID)
}

func TestHandleRecord_HandlerErrorSkipsCommit(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{err: errors.New("fetch failed")}
	c, commits := newTestConsumer(handler, mocks.NewMockDeadLetterSink(t))

	c.handleRecord(context.Background(), eventRecord(t, domain.OrderEvent{EventID: "EVT-1"}))

	require.Len(t, handler.events, 1)
	assert.Empty(t, commits.committed)
}

func TestHandleRecord_PoisonPayloadDeadLettersAndCommits(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	poison := mocks.NewMockDeadLetterSink(t)
	c, commits := newTestConsumer(handler, poison)

	raw := []byte(`{"eventId": not-json`)
	poison.On("SendPoisonEvent", mock.Anything, raw, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrInvalidEvent)
	})).Return(nil).Once()

	c.handleRecord(context.Background(), &kgo.Record{Topic: "order-events", Value: raw})

	assert.Empty(t, handler.events)
	assert.Len(t, commits.committed, 1)
}

func TestHandleRecord_PoisonSinkFailureLeavesUncommitted(t *testing.T) {
	t.Parallel()
	poison := mocks.NewMockDeadLetterSink(t)
	c, commits := newTestConsumer(&stubHandler{}, poison)

	poison.On("SendPoisonEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dlq unavailable")).Once()

	c.handleRecord(context.Background(), &kgo.Record{Topic: "order-events", Value: []byte("not json")})

	assert.Empty(t, commits.committed)
}

func TestHandleRecord_ContinuesUpstreamTrace(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	c, _ := newTestConsumer(handler, mocks.NewMockDeadLetterSink(t))

	upstream := "0123456789abcdef0123456789abcdef"
	rec := eventRecord(t, domain.OrderEvent{EventID: "EVT-1"},
		kgo.RecordHeader{Key: HeaderTraceID, Value: []byte(upstream)},
		kgo.RecordHeader{Key: HeaderSpanID, Value: []byte("feedfacefeedface")},
	)
	c.handleRecord(context.Background(), rec)

	require.Len(t, handler.ctxs, 1)
	tc, ok := observability.TraceFromContext(handler.ctxs[0])
	require.True(t, ok)
	assert.Equal(t, upstream, tc.TraceID)
	// The consumer opens its own span under the upstream trace.
	assert.Len(t, tc.SpanID, 16)
	assert.NotEqual(t, "feedfacefeedface", tc.SpanID)
}

func TestHandleRecord_GeneratesTraceWithoutHeaders(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	c, _ := newTestConsumer(handler, mocks.NewMockDeadLetterSink(t))

	c.handleRecord(context.Background(), eventRecord(t, domain.OrderEvent{EventID: "EVT-1"}))

	require.Len(t, handler.ctxs, 1)
	tc, ok := observability.TraceFromContext(handler.ctxs[0])
	require.True(t, ok)
	assert.Len(t, tc.TraceID, 32)
	assert.Len(t, tc.SpanID, 16)
}

func TestNewConsumer_Validation(t *testing.T) {
	t.Parallel()
	handler := &stubHandler{}
	poison := mocks.NewMockDeadLetterSink(t)

	_, err := NewConsumer(nil, "order-pipeline", "order-events", handler, poison)
	assert.ErrorContains(t, err, "no seed brokers")

	_, err = NewConsumer([]string{"localhost:9092"}, "", "order-events", handler, poison)
	assert.ErrorContains(t, err, "group ID")

	_, err = NewConsumer([]string{"localhost:9092"}, "order-pipeline", "", handler, poison)
	assert.ErrorContains(t, err, "topic")

	_, err = NewConsumer([]string{"localhost:9092"}, "order-pipeline", "order-events", nil, poison)
	assert.ErrorContains(t, err, "handler")

	_, err = NewConsumer([]string{"localhost:9092"}, "order-pipeline", "order-events", handler, nil)
	assert.ErrorContains(t, err, "dead-letter")
}

func TestNewProducer_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil, "processed-orders")
	assert.ErrorContains(t, err, "no seed brokers")

	_, err = NewProducer([]string{"localhost:9092"}, "")
	assert.ErrorContains(t, err, "topic")
}

func TestLogProducer_Publish(t *testing.T) {
	t.Parallel()
	var p LogProducer
	err := p.Publish(context.Background(), "O1", []byte(`{"orderId":"O1"}`))
	assert.NoError(t, err)
}
