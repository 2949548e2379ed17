package shared

import "context"

// EventHandler reacts to published events, e.g. counting generated documents
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the accepted event types; empty accepts all
	EventTypes() []string
}

// EventPublisher is what the document service depends on. Publishing never
// rolls back a stored document.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers. Explicit eventTypes override the
// handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is started once at boot and stopped on shutdown
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
