package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type Dispatcher struct {
	log *logger.Logger

	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewDispatcher(log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		log:        log.With("service", "WebhookDispatcher"),
		connectors: map[string]Connector{},
	}
}

// Register binds a connector to a webhook type, replacing any previous one.
func (d *Dispatcher) Register(typ string, c Connector) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || c == nil {
		return
	}
	d.mu.Lock()
	d.connectors[typ] = c
	d.mu.Unlock()
}

func (d *Dispatcher) connector(typ string) (Connector, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.connectors[strings.ToLower(strings.TrimSpace(typ))]
	return c, ok
}

// Delivery is one webhook of a station that wants the given triggers.
type Delivery struct {
	Hook *station.Webhook `json:"webhook"`
	// Routable is false when no connector is registered for the webhook type.
	Routable  bool `json:"routable"`
	connector Connector
}

// Plan lists the deliveries Dispatch would attempt for triggers, in webhook order.
// Webhooks of an unregistered type are kept with Routable=false; the trigger filter
// for them is FilterTriggers.
func (d *Dispatcher) Plan(st *station.Station, triggers []string) []Delivery {
	if st == nil {
		return nil
	}
	var out []Delivery
	for _, hook := range st.Webhooks {
		if hook == nil || !hook.IsEnabled {
			continue
		}
		c, ok := d.connector(hook.Type)
		wants := FilterTriggers(hook, triggers)
		if ok {
			wants = c.ShouldDispatch(hook, triggers)
		}
		if wants {
			out = append(out, Delivery{Hook: hook, Routable: ok, connector: c})
		}
	}
	return out
}

// Dispatch sends np to every webhook of st that wants the triggers. A failing connector does
// not stop the others; all failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, st *station.Station, np NowPlaying, triggers []string) (int, error) {
	if st == nil {
		return 0, fmt.Errorf("webhook: nil station")
	}
	sent := 0
	var errs []error
	for _, dl := range d.Plan(st, triggers) {
		hook := dl.Hook
		if !dl.Routable {
			d.log.Warn("no connector for webhook type", "station", st.ShortName, "webhook_id", hook.ID, "type", hook.Type)
			continue
		}
		if err := dl.connector.Dispatch(ctx, st, hook, np, triggers); err != nil {
			d.log.Error("webhook dispatch failed", "station", st.ShortName, "webhook_id", hook.ID, "type", hook.Type, "error", err)
			errs = append(errs, fmt.Errorf("webhook %s (%s): %w", hook.ID, hook.Type, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
