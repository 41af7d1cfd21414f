// Package events publishes domain events emitted after a scoring record is
// saved.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// TypePartnerScored is the event-type header value.
const TypePartnerScored = "partner.scored"

// PartnerScored is emitted once per saved ScoringRecord.
type PartnerScored struct {
	PartnerID uuid.UUID `json:"partnerId"`
	RecordID  uuid.UUID `json:"recordId"`
	Score     int       `json:"score"`
	RiskLevel string    `json:"riskLevel"`
	ScoredBy  string    `json:"scoredBy"`
	ScoredAt  time.Time `json:"scoredAt"`
}

// Publisher sends PartnerScored events. Implementations must be safe to call
// concurrently.
type Publisher interface {
	PublishPartnerScored(ctx context.Context, e PartnerScored) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishPartnerScored(context.Context, PartnerScored) error { return nil }
func (Nop) Close() error                                            { return nil }

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes events to one topic keyed by partner id, so one
// partner's events stay ordered within a partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaPublisher returns a publisher for brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}, topic)
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: w, topic: topic}
}

// PublishPartnerScored encodes e as JSON and writes it synchronously.
func (p *KafkaPublisher) PublishPartnerScored(ctx context.Context, e PartnerScored) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal partner scored: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(e.PartnerID.String()),
		Value: body,
		Time:  e.ScoredAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(TypePartnerScored)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if err := p.w.Close(); err != nil {
		return fmt.Errorf("events: close writer: %w", err)
	}
	return nil
}
