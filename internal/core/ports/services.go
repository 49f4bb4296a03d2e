package ports

import (
	"context"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
)

// EventPublisher publishes walk events to a message broker.
type EventPublisher interface {
	PublishDiscovery(ctx context.Context, event *domain.DiscoveryEvent) error
	PublishSnap(ctx context.Context, event *domain.SnapEvent) error
	PublishRouteSuggested(ctx context.Context, route *domain.RouteSuggestion) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to inbound position samples from a message
// broker. The handler is invoked once per sample; returning an error naks
// the message for redelivery.
type EventSubscriber interface {
	SubscribePositions(ctx context.Context, handler func(ctx context.Context, p domain.Position) error) error
}

// CacheService provides read-through caching with TTLs.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
