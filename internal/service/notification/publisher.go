// internal/service/notification/publisher.go
package notification

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"softmarket-service/internal/domain/notification"
)

// EventsChannel carries notification events from the worker process to
// the API process, which forwards them over websockets.
const EventsChannel = "notifications:events"

// RedisPublisher implements EventPublisher over redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event *notification.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, EventsChannel, raw).Err()
}
