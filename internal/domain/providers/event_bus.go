package providers

import (
	"context"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.CorpusEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is done or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CorpusEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelCorpusUpdates carries CorpusEvent notifications.
const EventChannelCorpusUpdates = "carefinder:corpus:updates"
