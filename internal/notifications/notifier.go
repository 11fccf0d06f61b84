package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"neighborly/internal/middleware"
	"neighborly/internal/models"
)

// Notifier publishes feed events into Redis channels so connected clients
// can refresh without polling.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// BuildingChannel derives the Redis channel name for a building's feed.
func BuildingChannel(building string) string {
	return "feed:building:" + building
}

// PublishFeedEvent announces new content on the building's channel.
func (n *Notifier) PublishFeedEvent(ctx context.Context, building string, content models.ContentItem) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload := map[string]any{
		"type":     string(content.Kind),
		"category": string(content.Category()),
	}
	if content.Kind == models.KindPoll {
		payload["id"] = content.Poll.ID
	} else {
		payload["id"] = content.Post.ID
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	return n.rdb.Publish(ctx, BuildingChannel(building), string(raw)).Err()
}

// StartFeedSubscriber subscribes to every building feed channel and calls
// onMessage for each incoming event.
func (n *Notifier) StartFeedSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "feed:building:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in feed subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
