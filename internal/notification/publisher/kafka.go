package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"motorcover/internal/notification/models"
)

// wireEvent is the JSON shape published to Kafka. The certificate bytes
// stay out of the stream; consumers that need the document fetch it from
// the document store.
type wireEvent struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	CreatedAt   string `json:"created_at"`
}

// Kafka publishes lifecycle events to a topic so downstream systems
// (analytics, partner integrations) can react without polling the API.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka builds a publisher over an existing client. The caller owns the
// client lifecycle.
func NewKafka(client *kgo.Client, topic string) *Kafka {
	return &Kafka{client: client, topic: topic}
}

// NewClient dials the given brokers with the settings the publisher needs.
func NewClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return client, nil
}

// Publish produces one event synchronously, keyed by recipient so events
// for one user stay ordered within a partition.
func (k *Kafka) Publish(ctx context.Context, event *models.Event) error {
	payload, err := json.Marshal(wireEvent{
		ID:          event.ID.String(),
		Type:        string(event.Type),
		RecipientID: event.RecipientID.String(),
		Subject:     event.Subject,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.RecipientID.String()),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event %s: %w", event.ID, err)
	}
	return nil
}
