package application

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Engine is the state shared by Service and AdminService: every mutating call
// of either one runs under the same call guard.
type Engine struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger
	seeds       ports.SeedSource
	events      ports.EventBus
	guard       *callGuard
	now         func() time.Time
}

func NewEngine(
	repoManager ports.RepoManager, ledger ports.Ledger, seeds ports.SeedSource,
) *Engine {
	return &Engine{
		repoManager: repoManager,
		ledger:      ledger,
		seeds:       seeds,
		guard:       &callGuard{},
		now:         time.Now,
	}
}

// WithClock replaces the clock used for mint window checks.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithEventBus sets the bus the events of completed calls are published to.
func (e *Engine) WithEventBus(bus ports.EventBus) *Engine {
	e.events = bus
	return e
}

func (e *Engine) Close() {
	e.repoManager.Close()
	e.ledger.Close()
	if e.events != nil {
		e.events.Close()
	}
}

func (e *Engine) publish(ctx context.Context, events ...domain.Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, events...); err != nil {
		log.WithError(err).Warn("failed to publish events")
	}
}

func (e *Engine) getCollection(ctx context.Context) (*domain.Collection, errors.Error) {
	collection, err := e.repoManager.Collection().Get(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if collection == nil {
		return nil, errors.NOT_AVAILABLE.New("collection not initialized")
	}
	return collection, nil
}

type callMarker struct{}

// callGuard serializes the mutating calls and rejects the ones issued while
// another call of the same chain is still in progress, for example from a
// ledger receive hook.
type callGuard struct {
	mu sync.RWMutex
}

func (g *callGuard) enter(
	ctx context.Context, caller common.Address,
) (context.Context, func(), errors.Error) {
	if inCall(ctx) {
		return nil, nil, errors.REENTRANT_CALL.New("call already in progress").
			WithMetadata(errors.CallerMetadata{Caller: caller.Hex()})
	}
	g.mu.Lock()
	return context.WithValue(ctx, callMarker{}, caller), g.mu.Unlock, nil
}

// view acquires a read lock unless ctx belongs to an in-progress call, which
// already holds the write lock.
func (g *callGuard) view(ctx context.Context) func() {
	if inCall(ctx) {
		return func() {}
	}
	g.mu.RLock()
	return g.mu.RUnlock
}

func inCall(ctx context.Context) bool {
	return ctx.Value(callMarker{}) != nil
}

// journal records how to revert each state change of a call, so that a failing
// call leaves no partial state.
type journal struct {
	undo []func(ctx context.Context) error
}

func (j *journal) add(undo func(ctx context.Context) error) {
	j.undo = append(j.undo, undo)
}

func (j *journal) rollback(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(j.undo) - 1; i >= 0; i-- {
		if err := j.undo[i](ctx); err != nil {
			log.WithError(err).Error("failed to revert state change")
		}
	}
	j.undo = nil
}
