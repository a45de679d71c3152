package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"k9harmony/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	err     error
	written []kafka.Message
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("R-20260305-ABC123").
		WithEventType("reservation.confirmed").
		WithCorrelationID("").
		WithValue(map[string]string{"id": "r1"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "R-20260305-ABC123", msg.Key)
	assert.Equal(t, "reservation.confirmed", msg.GetEventType())
	assert.NotEmpty(t, msg.GetEventID())
	assert.Empty(t, msg.GetCorrelationID())
	assert.JSONEq(t, `{"id":"r1"}`, string(msg.Value))

	_, err = NewMessage().WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestMessage_RetryCount(t *testing.T) {
	var msg Message
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("bad payload")))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrPermanentFailure))
	assert.False(t, ShouldRetry(errors.New("timeout"), 3, 3))
}

func TestProducer_PublishAndMiddleware(t *testing.T) {
	w := &fakeWriter{}
	p := newProducerWithWriters("booking-events", w, nil, logger.Discard())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("k").WithValue("v").WithEventType("t").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.written, 1)
	assert.Equal(t, "k", string(w.written[0].Key))
	assert.Equal(t, "t", header(w.written[0], HeaderEventType))
	assert.Equal(t, []string{"booking-events"}, seen)
}

func TestProducer_RejectsInvalidAndClosed(t *testing.T) {
	p := newProducerWithWriters("t", &fakeWriter{}, nil, logger.Discard())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestProducer_DivertsToDLQ(t *testing.T) {
	boom := errors.New("leader not available")
	w := &fakeWriter{err: boom}
	dlq := &fakeWriter{}
	p := newProducerWithWriters("booking-events", w, dlq, logger.Discard())

	msg := Message{Key: "k", Value: []byte(`{}`), Headers: map[string]string{HeaderEventType: "x"}}
	err := p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, boom)

	require.Len(t, dlq.written, 1)
	assert.Equal(t, "booking-events", header(dlq.written[0], HeaderOriginalTopic))
	assert.Equal(t, boom.Error(), header(dlq.written[0], HeaderDLQError))
	assert.NotContains(t, msg.Headers, HeaderDLQError, "caller headers untouched")
}

func TestConsumer_ProcessRetriesThenDeadLetters(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	c := &Consumer{
		topic:      "booking-reconciliation",
		groupID:    "g",
		maxRetries: 2,
		dlqWriter:  dlq,
		log:        logger.Discard(),
		handler: func(context.Context, Message) error {
			calls++
			return errors.New("connection reset by peer")
		},
	}

	err := c.process(context.Background(), Message{Key: "k", Value: []byte("v"), Headers: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "2", header(dlq.written[0], HeaderRetryCount))
	assert.Equal(t, "g", header(dlq.written[0], "dlq-consumer-group"))
}

func TestConsumer_PermanentErrorSkipsRetry(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 5,
		log:        logger.Discard(),
		handler: func(context.Context, Message) error {
			calls++
			return ErrPermanentFailure
		},
	}
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		return next(ctx, msg)
	})

	assert.ErrorIs(t, c.process(context.Background(), Message{Headers: map[string]string{}}), ErrPermanentFailure)
	assert.Equal(t, 1, calls)
}
