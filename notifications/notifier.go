// Package notifications fans room lifecycle and membership events out to
// websocket subscribers via Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"murmur/models"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish room events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRoomEvent sends an event payload to a room's channel.
func (n *Notifier) PublishRoomEvent(ctx context.Context, event models.RoomEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("rooms:room:%s", event.RoomID)
	return n.rdb.Publish(ctx, channel, string(payload)).Err()
}

// StartPatternSubscriber subscribes to pattern `rooms:room:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "rooms:room:*")
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
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					// Example channel: rooms:room:7f3c...
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
