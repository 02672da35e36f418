package bus

import (
	"context"

	"github.com/yungbote/stationhub-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, events ...realtime.RestartEvent) error
	Subscribe(ctx context.Context, onMsg func(ev realtime.RestartEvent)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus returns a bus that drops every event, for deployments without Redis.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, ...realtime.RestartEvent) error { return nil }

func (noopBus) Subscribe(ctx context.Context, _ func(realtime.RestartEvent)) error {
	return nil
}

func (noopBus) Close() error { return nil }
