package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer        *kafka.Writer
	bookingsTopic string
	invoicesTopic string
}

func NewKafkaPublisher(brokers []string, bookingsTopic, invoicesTopic string) *KafkaPublisher {
	// Async: requests never wait on the broker; delivery errors surface in logDelivery.
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			Async:                  true,
			Completion:             logDelivery,
		},
		bookingsTopic: bookingsTopic,
		invoicesTopic: invoicesTopic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := p.message(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", ev.Type, err)
	}
	return nil
}

// message keys by entity id so all events of one booking or invoice stay ordered.
func (p *KafkaPublisher) message(ev Event) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Topic: p.topicFor(ev),
		Key:   []byte(strconv.FormatInt(ev.EntityID, 10)),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}, nil
}

func (p *KafkaPublisher) topicFor(ev Event) string {
	if ev.IsBooking() {
		return p.bookingsTopic
	}
	return p.invoicesTopic
}

func logDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		log.Warn().Err(err).
			Str("topic", m.Topic).
			Str("key", string(m.Key)).
			Msg("kafka delivery failed")
	}
}

// Close flushes queued messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
