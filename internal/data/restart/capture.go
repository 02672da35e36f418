package restart

import (
	"context"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

// Notifier announces committed restart flags to whatever reconciles them.
type Notifier interface {
	NotifyRestart(ctx context.Context, stations []*station.Station) error
}

type Capture struct {
	log          *logger.Logger
	significance SignificanceSource
	notifier     Notifier
}

var _ uow.Listener = (*Capture)(nil)

type Option func(*Capture)

func WithSignificance(src SignificanceSource) Option {
	return func(c *Capture) { c.significance = src }
}

func WithNotifier(n Notifier) Option {
	return func(c *Capture) { c.notifier = n }
}

func New(log *logger.Logger, opts ...Option) *Capture {
	if log == nil {
		log = logger.Nop()
	}
	c := &Capture{
		log:          log.With("service", "RestartCapture"),
		significance: station.Significance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run classifies the whole batch, then flags the collected stations through stager.
// Nothing is staged when any mutation fails to classify.
func (c *Capture) Run(batch uow.Batch, stager uow.Stager) ([]*station.Station, error) {
	tracker := NewTracker()
	for _, m := range uow.Mutations(batch) {
		v, err := Classify(m)
		if err != nil {
			return nil, err
		}
		if !v.Relevant {
			continue
		}
		if m.Op == uow.OpUpdate {
			if _, suppressed := FilterSignificant(c.significance, v.Kind, m.Changes); suppressed {
				c.log.Debug("insignificant update ignored", "kind", v.Kind, "fields", m.Changes.Fields())
				continue
			}
		}
		tracker.Add(v.Station)
	}

	flagged := tracker.Stations()
	if err := Commit(flagged, stager); err != nil {
		return nil, err
	}
	for _, st := range flagged {
		c.log.Info("station flagged for restart", "station_id", st.ID, "short_name", st.ShortName)
	}
	return flagged, nil
}

// OnFlush adapts Run to the unit-of-work listener contract.
func (c *Capture) OnFlush(ev *uow.FlushEvent) error {
	flagged, err := c.Run(ev.Batch, ev.Stager)
	if err != nil {
		return err
	}
	if len(flagged) == 0 || c.notifier == nil {
		return nil
	}
	ev.AfterCommit(func(ctx context.Context) {
		if err := c.notifier.NotifyRestart(ctx, flagged); err != nil {
			c.log.Warn("restart notification failed", "stations", len(flagged), "error", err)
		}
	})
	return nil
}
