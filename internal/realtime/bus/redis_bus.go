package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/realtime"
)

const (
	DefaultRestartChannel = "station.restart"
	dialTimeout           = 5 * time.Second
)

var errBusClosed = errors.New("restart bus not initialized")

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to addr, which is either host:port or a redis:// URL, and
// publishes restart events on channel.
func NewRedisBus(log *logger.Logger, addr, channel string) (Bus, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts, err := redisOptions(addr)
	if err != nil {
		return nil, err
	}
	if channel = strings.TrimSpace(channel); channel == "" {
		channel = DefaultRestartChannel
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &redisBus{
		log:     log.With("service", "RestartBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func redisOptions(addr string) (*goredis.Options, error) {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return nil, errors.New("missing REDIS_ADDR")
	case strings.HasPrefix(addr, "redis://"), strings.HasPrefix(addr, "rediss://"):
		opts, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		opts.DialTimeout = dialTimeout
		return opts, nil
	default:
		return &goredis.Options{Addr: addr, DialTimeout: dialTimeout}, nil
	}
}

// Publish sends one message per station. Repeated stations in a batch collapse into
// the latest event.
func (b *redisBus) Publish(ctx context.Context, events ...realtime.RestartEvent) error {
	if b == nil || b.rdb == nil {
		return errBusClosed
	}
	payloads, err := encodeRestarts(events)
	if err != nil || len(payloads) == 0 {
		return err
	}
	_, err = b.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, raw := range payloads {
			p.Publish(ctx, b.channel, raw)
		}
		return nil
	})
	return err
}

func encodeRestarts(events []realtime.RestartEvent) ([][]byte, error) {
	last := make(map[string]int, len(events))
	var order []string
	for i, ev := range events {
		key := ev.StationID.String()
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = i
	}
	out := make([][]byte, 0, len(order))
	for _, key := range order {
		raw, err := json.Marshal(events[last[key]])
		if err != nil {
			return nil, fmt.Errorf("encode restart event: %w", err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// Subscribe delivers restart events to onMsg until ctx ends. It returns once the
// subscription is confirmed by the server.
func (b *redisBus) Subscribe(ctx context.Context, onMsg func(ev realtime.RestartEvent)) error {
	if b == nil || b.rdb == nil {
		return errBusClosed
	}
	if onMsg == nil {
		return errors.New("restart callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.RestartEvent)) {
	defer sub.Close()
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			var ev realtime.RestartEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				b.log.Warn("dropping malformed restart event", "error", err)
				continue
			}
			onMsg(ev)
		}
	}
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
