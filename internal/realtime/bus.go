package realtime

import "context"

// Bus fans task change events out to every subscriber. One logical channel
// per collection; safe for many concurrent subscribers.
//
// Subscribe returns a channel that closes when the subscription drops (bus
// shut down, connection lost). Consumers that need to stay live must
// resubscribe; Syncer does this with a fixed backoff.
type Bus interface {
	Publish(ctx context.Context, event Event) error

	Subscribe(ctx context.Context) (<-chan Event, error)
}
