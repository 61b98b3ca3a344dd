// internal/ws/bridge.go
package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/notification"
	notifsvc "softmarket-service/internal/service/notification"
)

// Bridge subscribes to the notification events channel and forwards each
// event to the hub. It is the consuming end of the worker's redis
// publisher; running it in the API process lets the two processes share
// one websocket fan-out path.
type Bridge struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewBridge(client *redis.Client, hub *Hub, logger *zap.Logger) *Bridge {
	return &Bridge{client: client, hub: hub, logger: logger}
}

// Run blocks until ctx is cancelled. Malformed events are logged and
// skipped.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, notifsvc.EventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event notification.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("malformed notification event", zap.Error(err))
				continue
			}
			b.hub.SendToUser(event.UserID, &event)
		}
	}
}
