package sinks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
)

// HeaderMessageID carries a unique id per notification for consumer-side deduplication.
const HeaderMessageID = "message-id"

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes one message per refreshed snapshot, keyed by kind so all
// notifications of a kind land on the same partition in order.
type KafkaNotifier struct {
	writer MessageWriter
}

// NewKafkaWriter creates a writer for topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaNotifier creates a notifier writing through writer.
func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// Name identifies the sink in logs.
func (n *KafkaNotifier) Name() string {
	return "kafka"
}

// Publish writes the notification form of payload.
func (n *KafkaNotifier) Publish(ctx context.Context, payload Payload) error {
	value, err := wire.Marshal(payload.Notification())
	if err != nil {
		return fmt.Errorf("encoding %s notification: %w", payload.Kind, err)
	}

	messageID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(payload.Kind),
		Value:   value,
		Headers: []kafka.Header{{Key: HeaderMessageID, Value: []byte(messageID.String())}},
	}

	if err = n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s notification: %w", payload.Kind, err)
	}

	return nil
}
