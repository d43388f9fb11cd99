// internal/events/events.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Event describes a gallery mutation for downstream consumers (search
// indexers, CDN purgers). ImageIDs is empty for owner-level events.
type Event struct {
	Action    string  `json:"action"` // added, deleted, reordered, updated
	OwnerType string  `json:"owner_type"`
	OwnerID   string  `json:"owner_id"`
	ImageIDs  []int64 `json:"image_ids,omitempty"`
}

// Notifier publishes mutation events to Kafka. A nil Notifier is valid and
// publishes nothing, so eventing stays optional.
type Notifier struct {
	writer *kafka.Writer
}

func NewNotifier(broker, topic string) *Notifier {
	if broker == "" || topic == "" {
		return nil
	}
	return &Notifier{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: []string{broker},
			Topic:   topic,
		}),
	}
}

func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	const op = "events.Publish"

	if n == nil {
		return nil
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}

	key := []byte(ev.OwnerType + ":" + ev.OwnerID)
	if err := n.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}

	logrus.WithFields(logrus.Fields{
		"action":     ev.Action,
		"owner_type": ev.OwnerType,
		"owner_id":   ev.OwnerID,
	}).Debug("gallery event published")

	return nil
}

func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.writer.Close()
}
