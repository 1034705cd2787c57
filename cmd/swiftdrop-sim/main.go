// README: In-process delivery simulator; drives one order through the full lifecycle and prints each hop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"swiftdrop/internal/config"
	"swiftdrop/internal/modules/dispatch"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
	"swiftdrop/internal/modules/proof"
	"swiftdrop/internal/types"
)

type simConfig struct {
	AssignDelay  time.Duration
	ArriveDelay  time.Duration
	TransitDelay time.Duration
	DistanceKm   float64
	Vehicle      string
	Timeout      time.Duration
}

func loadSimConfig() simConfig {
	var cfg simConfig
	flag.DurationVar(&cfg.AssignDelay, "assign-delay", 500*time.Millisecond, "delay before a driver is assigned")
	flag.DurationVar(&cfg.ArriveDelay, "arrive-delay", 500*time.Millisecond, "delay before the driver arrives")
	flag.DurationVar(&cfg.TransitDelay, "transit-delay", 500*time.Millisecond, "delay before transit starts")
	flag.Float64Var(&cfg.DistanceKm, "distance", 8.5, "trip distance in km")
	flag.StringVar(&cfg.Vehicle, "vehicle", "auto", "vehicle class (bike|auto|car_premium|logistics_van)")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "overall simulation timeout")
	flag.Parse()
	return cfg
}

// staticPool always offers the same driver; the sim has no Redis dependency.
type staticPool struct {
	driverID types.ID
}

func (p staticPool) NextAvailable(context.Context) (types.ID, bool, error) {
	return p.driverID, true, nil
}

func main() {
	cfg := loadSimConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	store := order.NewMemStore()
	svc := order.NewService(store, pricing.NewService(nil))

	dispatchCfg := config.DispatchConfig{
		AssignDelay:   cfg.AssignDelay,
		ArriveDelay:   cfg.ArriveDelay,
		TransitDelay:  cfg.TransitDelay,
		RetryInterval: cfg.AssignDelay,
	}
	driver := order.Actor{Type: order.ActorDriver, ID: "driver-1"}
	scheduler := dispatch.NewScheduler(svc, staticPool{driverID: driver.ID}, dispatchCfg, zap.NewNop())
	svc.AttachScheduler(scheduler)

	uploader := proof.NewLocalUploader("https://cdn.swiftdrop.local")
	customer := order.Actor{Type: order.ActorCustomer, ID: "customer-1"}

	id, err := svc.Create(ctx, order.CreateCommand{
		Actor:         customer,
		CustomerID:    customer.ID,
		PickupAddress: "Central Station",
		DropAddress:   "Tech Park, Gate 4",
		Package:       order.PackageDetails{Size: order.SizeMedium, WeightKg: 5, Fragile: false},
		VehicleType:   order.VehicleType(cfg.Vehicle),
		PaymentMethod: order.PayUPI,
		DistanceKm:    cfg.DistanceKm,
	})
	if err != nil {
		fail("create order: %v", err)
	}
	o := mustGet(ctx, svc, id)
	fmt.Printf("order %s created: fare %d %s, otp %s\n", id, o.Fare.Amount, o.Fare.Currency, o.DeliveryOTP)

	waitFor(ctx, svc, id, order.StatusAccepted)
	fmt.Println("driver assigned")

	waitFor(ctx, svc, id, order.StatusDriverArrived)
	fmt.Println("driver arrived at pickup")

	attachProof(ctx, svc, uploader, id, driver, order.ProofPickup)
	if err := svc.ConfirmPickup(ctx, order.ConfirmPickupCommand{Actor: driver, OrderID: id}); err != nil {
		fail("confirm pickup: %v", err)
	}
	fmt.Println("package picked up")

	waitFor(ctx, svc, id, order.StatusInTransit)
	fmt.Println("package in transit")

	attachProof(ctx, svc, uploader, id, driver, order.ProofDelivery)
	otp := mustGet(ctx, svc, id).DeliveryOTP
	if err := svc.Complete(ctx, order.CompleteCommand{Actor: driver, OrderID: id, OTP: otp}); err != nil {
		fail("complete delivery: %v", err)
	}

	final := mustGet(ctx, svc, id)
	fmt.Printf("delivered at %s\n", final.CompletedAt.Format(time.RFC3339))
	for _, e := range store.EventsFor(id) {
		fmt.Printf("  %s -> %s (%s)\n", e.FromStatus, e.ToStatus, e.ActorType)
	}
}

func attachProof(ctx context.Context, svc *order.Service, uploader proof.Uploader, id types.ID, driver order.Actor, kind order.ProofKind) {
	url, err := uploader.Upload(ctx, id, kind)
	if err != nil {
		fail("upload %s proof: %v", kind, err)
	}
	err = svc.AttachProof(ctx, order.AttachProofCommand{Actor: driver, OrderID: id, Kind: kind, PhotoURL: url})
	if err != nil {
		fail("attach %s proof: %v", kind, err)
	}
}

func waitFor(ctx context.Context, svc *order.Service, id types.ID, want order.Status) {
	for {
		if mustGet(ctx, svc, id).Status == want {
			return
		}
		select {
		case <-ctx.Done():
			fail("timed out waiting for status %s", want)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func mustGet(ctx context.Context, svc *order.Service, id types.ID) *order.Order {
	o, err := svc.Get(ctx, id, order.Actor{Type: order.ActorSystem})
	if err != nil {
		fail("get order: %v", err)
	}
	return o
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
