package events

import (
	"context"
)

// Publisher sends storefront events to a topic exchange. Handlers treat a nil
// Publisher as "events disabled".
type Publisher interface {
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error
	Close() error
}
