package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("broker down")}

	err := Fanout{bad, ok}.Publish(context.Background(), New(InvoiceCreated, 1, 10, nil))

	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, ok.got, 1)
	assert.Len(t, bad.got, 1)
}

func TestEmit_SwallowsErrors(t *testing.T) {
	bad := &recorder{err: errors.New("nope")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), bad, New(BookingCreated, 1, 1, nil))
		Emit(context.Background(), nil, New(BookingCreated, 1, 1, nil))
	})
	assert.Len(t, bad.got, 1)
}

func TestKafkaMessage_TopicAndKey(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "bookings", "invoices")
	t.Cleanup(func() { _ = p.Close() })

	msg, err := p.message(New(BookingCheckedIn, 3, 42, map[string]string{"status": "Confirmed"}))
	require.NoError(t, err)
	assert.Equal(t, "bookings", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, BookingCheckedIn, decoded.Type)
	assert.Equal(t, int64(3), decoded.BranchID)

	msg, err = p.message(New(OrderConfirmed, 3, 7, nil))
	require.NoError(t, err)
	assert.Equal(t, "invoices", msg.Topic)
}

func TestKafkaPublisher_WritesAsynchronously(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "bookings", "invoices")
	t.Cleanup(func() { _ = p.Close() })

	assert.True(t, p.writer.Async)
	require.NotNil(t, p.writer.Completion)

	assert.NotPanics(t, func() {
		logDelivery([]kafka.Message{{Topic: "bookings", Key: []byte("1")}}, errors.New("broker down"))
		logDelivery(nil, nil)
	})
}
