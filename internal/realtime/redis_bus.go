package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/rueidis"
)

// RedisBus carries task change events over a Redis pub/sub channel so every
// node's subscribers see every accepted mutation.
type RedisBus struct {
	client  rueidis.Client
	channel string
}

func NewRedisBus(client rueidis.Client, channel string) *RedisBus {
	return &RedisBus{client: client, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	cmd := b.client.B().Publish().Channel(b.channel).Message(string(payload)).Build()
	return b.client.Do(ctx, cmd).Error()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event, subscriberBuffer)

	go func() {
		defer close(out)

		err := b.client.Receive(ctx, b.client.B().Subscribe().Channel(b.channel).Build(),
			func(msg rueidis.PubSubMessage) {
				var event Event
				if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
					log.Printf("realtime: dropping malformed event: %v", err)
					return
				}
				select {
				case out <- event:
				default:
					log.Printf("realtime: dropping event %s for slow subscriber", event.TaskID())
				}
			})
		if err != nil && ctx.Err() == nil {
			log.Printf("realtime: redis subscription ended: %v", err)
		}
	}()

	return out, nil
}
