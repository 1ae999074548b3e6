package memory

import (
	"context"
	"sync"

	"petradar/internal/ports/events"
)

// Publisher acumula los eventos en memoria. Sirve para dev sin broker y
// para asserts en tests.
type Publisher struct {
	mu        sync.Mutex
	Found     []events.MatchFound
	Confirmed []events.MatchConfirmed
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishMatchFound(ctx context.Context, ev events.MatchFound) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Found = append(p.Found, ev)
	return nil
}

func (p *Publisher) PublishMatchConfirmed(ctx context.Context, ev events.MatchConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirmed = append(p.Confirmed, ev)
	return nil
}

func (p *Publisher) FoundEvents() []events.MatchFound {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.MatchFound, len(p.Found))
	copy(out, p.Found)
	return out
}
