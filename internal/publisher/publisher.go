package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/pubsub"
	"github.com/chainvoice/chainvoice/internal/types"
)

// Event is the envelope for every domain event placed on the bus.
type Event struct {
	ID        string      `json:"id"`
	Topic     string      `json:"topic"`
	CompanyID string      `json:"company_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventPublisher produces ledger domain events. Delivery is best-effort;
// issuance and sweep outcomes never depend on it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, companyID string, payload interface{}) error
	Close() error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	logger *logger.Logger
}

func NewEventPublisher(pubSub pubsub.PubSub, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, topic string, companyID string, payload interface{}) error {
	event := &Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		Topic:     topic,
		CompanyID: companyID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("company_id", companyID)
	msg.Metadata.Set("topic", topic)

	if err := p.pubSub.Publish(ctx, topic, msg); err != nil {
		p.logger.Errorw("failed to publish event",
			"error", err,
			"event_id", event.ID,
			"topic", topic,
			"company_id", companyID,
		)
		return err
	}

	p.logger.Debugw("published event",
		"event_id", event.ID,
		"topic", topic,
		"company_id", companyID,
	)
	return nil
}

func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}
