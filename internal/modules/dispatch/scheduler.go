// README: Simulated dispatch; cancellable per-order timers drive assignment and travel phases.
package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"swiftdrop/internal/config"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/types"
)

// Engine is the slice of the order service the scheduler drives.
type Engine interface {
	Assign(ctx context.Context, cmd order.AssignCommand) error
	Arrive(ctx context.Context, cmd order.ArriveCommand) error
	StartTransit(ctx context.Context, cmd order.StartTransitCommand) error
	Get(ctx context.Context, id types.ID, actor order.Actor) (*order.Order, error)
}

// DriverPool yields an online driver for assignment.
type DriverPool interface {
	NextAvailable(ctx context.Context) (types.ID, bool, error)
}

// Scheduler stands in for real-world delays: a driver being found, driving to
// the pickup point, and departing with the package. Each order has at most one
// pending timer. Every fire re-reads the order and goes through the engine's
// compare-and-swap transition, so a timer that outlived its target state is a
// no-op; it can never resurrect a cancelled order.
type Scheduler struct {
	engine Engine
	pool   DriverPool
	cfg    config.DispatchConfig
	log    *zap.Logger

	mu     sync.Mutex
	timers map[types.ID]*time.Timer
}

const opTimeout = 10 * time.Second

var system = order.Actor{Type: order.ActorSystem}

func NewScheduler(engine Engine, pool DriverPool, cfg config.DispatchConfig, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		engine: engine,
		pool:   pool,
		cfg:    cfg,
		log:    log,
		timers: make(map[types.ID]*time.Timer),
	}
}

func (s *Scheduler) OrderCreated(id types.ID) {
	s.schedule(id, s.cfg.AssignDelay, func() { s.assign(id) })
}

func (s *Scheduler) OrderPickedUp(id types.ID) {
	s.schedule(id, s.cfg.TransitDelay, func() { s.startTransit(id) })
}

// OrderClosed stops any pending timer for a completed or cancelled order.
func (s *Scheduler) OrderClosed(id types.ID) {
	s.CancelFor(id)
}

func (s *Scheduler) CancelFor(id types.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) schedule(id types.ID, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

func (s *Scheduler) assign(id types.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	o, err := s.engine.Get(ctx, id, system)
	if err != nil || o.Status != order.StatusSearching {
		return
	}
	driverID, ok, err := s.pool.NextAvailable(ctx)
	if err != nil {
		s.log.Warn("dispatch: driver pool lookup failed", zap.String("order_id", string(id)), zap.Error(err))
		s.schedule(id, s.cfg.RetryInterval, func() { s.assign(id) })
		return
	}
	if !ok {
		s.schedule(id, s.cfg.RetryInterval, func() { s.assign(id) })
		return
	}

	err = s.engine.Assign(ctx, order.AssignCommand{Actor: system, OrderID: id, DriverID: driverID})
	switch err {
	case nil:
		s.log.Info("dispatch: driver assigned",
			zap.String("order_id", string(id)), zap.String("driver_id", string(driverID)))
		s.schedule(id, s.cfg.ArriveDelay, func() { s.arrive(id) })
	case order.ErrInvalidState, order.ErrConflict, order.ErrNotFound:
		// Order moved on (most likely cancelled); stale fire, nothing to do.
	default:
		s.log.Warn("dispatch: assign failed", zap.String("order_id", string(id)), zap.Error(err))
		s.schedule(id, s.cfg.RetryInterval, func() { s.assign(id) })
	}
}

func (s *Scheduler) arrive(id types.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := s.engine.Arrive(ctx, order.ArriveCommand{Actor: system, OrderID: id})
	if err == nil {
		s.log.Info("dispatch: driver arrived", zap.String("order_id", string(id)))
	}
}

func (s *Scheduler) startTransit(id types.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := s.engine.StartTransit(ctx, order.StartTransitCommand{Actor: system, OrderID: id})
	if err == nil {
		s.log.Info("dispatch: package in transit", zap.String("order_id", string(id)))
	}
}
