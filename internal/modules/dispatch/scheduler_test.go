// README: Scheduler tests with a real order engine and millisecond delays.
package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"swiftdrop/internal/config"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
	"swiftdrop/internal/types"
)

type fakePool struct {
	driverID types.ID
	empty    atomic.Bool
	calls    atomic.Int64
}

func (p *fakePool) NextAvailable(context.Context) (types.ID, bool, error) {
	p.calls.Add(1)
	if p.empty.Load() {
		return "", false, nil
	}
	return p.driverID, true, nil
}

func testDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		AssignDelay:   10 * time.Millisecond,
		ArriveDelay:   10 * time.Millisecond,
		TransitDelay:  10 * time.Millisecond,
		RetryInterval: 10 * time.Millisecond,
	}
}

func newTestEngine(t *testing.T, pool DriverPool) (*order.Service, *Scheduler) {
	t.Helper()
	svc := order.NewService(order.NewMemStore(), pricing.NewService(nil))
	sched := NewScheduler(svc, pool, testDispatchConfig(), nil)
	svc.AttachScheduler(sched)
	return svc, sched
}

func createOrder(t *testing.T, svc *order.Service) types.ID {
	t.Helper()
	id, err := svc.Create(context.Background(), order.CreateCommand{
		Actor:         order.Actor{Type: order.ActorCustomer, ID: "cust-1"},
		CustomerID:    "cust-1",
		PickupAddress: "A",
		DropAddress:   "B",
		Package:       order.PackageDetails{Size: order.SizeSmall, WeightKg: 1},
		VehicleType:   order.VehicleBike,
		PaymentMethod: order.PayCash,
		DistanceKm:    3,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return id
}

func waitForStatus(t *testing.T, svc *order.Service, id types.ID, want order.Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		o, err := svc.Get(context.Background(), id, order.Actor{Type: order.ActorSystem})
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if o.Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s", want)
}

func TestSchedulerDrivesAssignmentAndArrival(t *testing.T) {
	pool := &fakePool{driverID: "drv-1"}
	svc, _ := newTestEngine(t, pool)

	id := createOrder(t, svc)
	waitForStatus(t, svc, id, order.StatusAccepted)
	waitForStatus(t, svc, id, order.StatusDriverArrived)

	o, _ := svc.Get(context.Background(), id, order.Actor{Type: order.ActorSystem})
	if o.DriverID == nil || *o.DriverID != pool.driverID {
		t.Fatal("expected pool driver to be assigned")
	}
}

func TestSchedulerAdvancesPickedUpToTransit(t *testing.T) {
	pool := &fakePool{driverID: "drv-1"}
	svc, _ := newTestEngine(t, pool)
	ctx := context.Background()
	driver := order.Actor{Type: order.ActorDriver, ID: pool.driverID}

	id := createOrder(t, svc)
	waitForStatus(t, svc, id, order.StatusDriverArrived)

	err := svc.AttachProof(ctx, order.AttachProofCommand{Actor: driver, OrderID: id, Kind: order.ProofPickup, PhotoURL: "u"})
	if err != nil {
		t.Fatalf("attach proof: %v", err)
	}
	if err := svc.ConfirmPickup(ctx, order.ConfirmPickupCommand{Actor: driver, OrderID: id}); err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}

	waitForStatus(t, svc, id, order.StatusInTransit)
}

// Cancelling while the assign timer is pending must not let the timer
// resurrect the order later.
func TestCancelStopsPendingTimer(t *testing.T) {
	pool := &fakePool{driverID: "drv-1"}
	svc := order.NewService(order.NewMemStore(), pricing.NewService(nil))
	cfg := testDispatchConfig()
	cfg.AssignDelay = 50 * time.Millisecond
	svc.AttachScheduler(NewScheduler(svc, pool, cfg, nil))
	ctx := context.Background()

	id := createOrder(t, svc)
	customer := order.Actor{Type: order.ActorCustomer, ID: "cust-1"}
	if err := svc.Cancel(ctx, order.CancelCommand{Actor: customer, OrderID: id}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Wait out several timer periods and confirm nothing moved.
	time.Sleep(100 * time.Millisecond)
	o, _ := svc.Get(ctx, id, order.Actor{Type: order.ActorSystem})
	if o.Status != order.StatusCancelled {
		t.Fatalf("cancelled order resurrected as %s", o.Status)
	}
	if o.DriverID != nil {
		t.Fatal("cancelled order must never get a driver")
	}
}

// With no drivers online the scheduler keeps retrying until one shows up.
func TestSchedulerRetriesEmptyPool(t *testing.T) {
	pool := &fakePool{driverID: "drv-1"}
	pool.empty.Store(true)
	svc, _ := newTestEngine(t, pool)

	id := createOrder(t, svc)
	time.Sleep(60 * time.Millisecond)
	if pool.calls.Load() < 2 {
		t.Fatalf("expected retries against the empty pool, saw %d lookups", pool.calls.Load())
	}

	o, _ := svc.Get(context.Background(), id, order.Actor{Type: order.ActorSystem})
	if o.Status != order.StatusSearching {
		t.Fatalf("expected order to stay searching, got %s", o.Status)
	}

	pool.empty.Store(false)
	waitForStatus(t, svc, id, order.StatusAccepted)
}

// A fire racing a concurrent transition goes through the engine CAS and loses
// quietly; replaying a stale fire directly must be a no-op.
func TestStaleFireIsNoOp(t *testing.T) {
	pool := &fakePool{driverID: "drv-1"}
	svc, sched := newTestEngine(t, pool)
	ctx := context.Background()

	id := createOrder(t, svc)
	waitForStatus(t, svc, id, order.StatusAccepted)
	waitForStatus(t, svc, id, order.StatusDriverArrived)

	sched.assign(id)

	o, _ := svc.Get(ctx, id, order.Actor{Type: order.ActorSystem})
	if o.Status != order.StatusDriverArrived {
		t.Fatalf("stale assign changed status to %s", o.Status)
	}
}
