package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	topic   string
	key     string
	data    interface{}
	headers map[string]string
}

type fakeProducer struct {
	messages []capturedMessage
	err      error
}

func (f *fakeProducer) ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	f.messages = append(f.messages, capturedMessage{topic, key, data, headers})
	return f.err
}

func TestKafkaDLQPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaDLQPublisher(producer, "ticket-mailer", "")

	msg := &DLQMessage{
		OriginalTopic: "ticketing.order.paid",
		OriginalKey:   "order-1",
		Error:         "smtp timeout",
		Attempts:      4,
		Headers:       map[string]string{"event_type": "order.paid"},
	}
	require.NoError(t, pub.PublishToDLQ(context.Background(), msg))

	require.Len(t, producer.messages, 1)
	got := producer.messages[0]
	assert.Equal(t, "ticketing.order.paid.dlq", got.topic)
	assert.Equal(t, "order-1", got.key)
	assert.Equal(t, "4", got.headers["attempts"])
	assert.Equal(t, "order.paid", got.headers["original_event_type"])
	assert.Equal(t, "ticket-mailer", msg.Source)
	assert.False(t, msg.MovedToDLQAt.IsZero())
}

func TestKafkaDLQPublisher_NilMessage(t *testing.T) {
	pub := NewKafkaDLQPublisher(&fakeProducer{}, "svc", ".dead")
	assert.Error(t, pub.PublishToDLQ(context.Background(), nil))
	assert.Equal(t, "orders.dead", pub.Topic("orders"))
}

func TestDLQHandler_SuccessDoesNotPublish(t *testing.T) {
	producer := &fakeProducer{}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, "svc", ""), fastConfig(2), "svc", nil)

	err := h.ProcessWithDLQ(context.Background(), &MessageContext{Topic: "t"}, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Empty(t, producer.messages)
}

func TestDLQHandler_FailureMovesToDLQ(t *testing.T) {
	producer := &fakeProducer{}
	var parked *DLQMessage
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, "svc", ""), fastConfig(1), "svc", func(m *DLQMessage) {
		parked = m
	})

	sendErr := errors.New("mailbox unavailable")
	err := h.ProcessWithDLQ(context.Background(), &MessageContext{ID: "m1", Topic: "ticketing.order.paid", Key: "o1"}, func(ctx context.Context) error {
		return sendErr
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	require.NotNil(t, parked)
	assert.Equal(t, "mailbox unavailable", parked.Error)
	assert.Equal(t, 2, parked.Attempts)
	require.Len(t, producer.messages, 1)
	assert.Equal(t, "ticketing.order.paid.dlq", producer.messages[0].topic)
}

func TestDLQHandler_PublishFailure(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, "svc", ""), fastConfig(0), "svc", nil)

	err := h.ProcessWithDLQ(context.Background(), &MessageContext{Topic: "t"}, func(ctx context.Context) error {
		return Permanent(errors.New("bad payload"))
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDLQPublish)
	assert.Contains(t, err.Error(), "broker down")
	assert.Contains(t, err.Error(), "bad payload")
}
