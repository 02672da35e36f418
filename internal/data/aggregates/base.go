package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

// TxRunner opens the transaction an aggregate flush commits in. A nil runner uses a
// GORM transaction on DB.
type TxRunner = uow.Runner

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	// Listeners are attached to every unit of work the aggregate flushes.
	Listeners []uow.Listener
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

func (d BaseDeps) newUnit() *uow.UnitOfWork {
	opts := []uow.Option{uow.WithRunner(d.Runner), uow.WithLogger(d.Log)}
	for _, l := range d.Listeners {
		opts = append(opts, uow.WithListener(l))
	}
	return uow.New(d.DB, opts...)
}

// executeWrite runs fn against a fresh unit of work and flushes it. fn loads and edits
// entities; nothing is written unless fn returns nil and the flush commits.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(u *uow.UnitOfWork) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	u := deps.newUnit()
	err := fn(u)
	if err == nil {
		err = u.Flush(ctx)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
