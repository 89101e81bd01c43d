package testutil

import (
	"context"
	"sync"

	"github.com/chainvoice/chainvoice/internal/publisher"
)

// PublishedEvent is one event recorded by the in-memory publisher
type PublishedEvent struct {
	Topic     string
	CompanyID string
	Payload   interface{}
}

// InMemoryEventPublisher records published events for assertions
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, topic string, companyID string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, PublishedEvent{
		Topic:     topic,
		CompanyID: companyID,
		Payload:   payload,
	})
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// EventsOnTopic returns all recorded events for the given topic
func (p *InMemoryEventPublisher) EventsOnTopic(topic string) []PublishedEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []PublishedEvent
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
