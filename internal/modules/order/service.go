// README: Order lifecycle engine; owns state transitions, preconditions, and actor permissions.
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"swiftdrop/internal/types"
)

// Pricing computes the fare fixed on the order at creation.
type Pricing interface {
	Estimate(ctx context.Context, distanceKm float64, vehicle VehicleType) (types.Money, error)
}

// Scheduler receives lifecycle notifications so pending simulated-dispatch
// timers can be armed or torn down. All methods must be non-blocking.
type Scheduler interface {
	OrderCreated(id types.ID)
	OrderPickedUp(id types.ID)
	OrderClosed(id types.ID)
}

type Service struct {
	store     Store
	pricing   Pricing
	scheduler Scheduler
}

func NewService(store Store, pricing Pricing) *Service {
	return &Service{store: store, pricing: pricing}
}

// AttachScheduler wires the dispatch timers; call before serving traffic.
func (s *Service) AttachScheduler(sched Scheduler) {
	s.scheduler = sched
}

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("order not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("order state conflict")
	ErrActiveOrder  = errors.New("customer has active order")
	ErrUnauthorized = errors.New("actor not permitted")
	// The two distinguishable precondition failures.
	ErrMissingProof = errors.New("proof photo required")
	ErrOTPMismatch  = errors.New("delivery otp mismatch")
)

type CreateCommand struct {
	Actor         Actor
	CustomerID    types.ID
	PickupAddress string
	DropAddress   string
	Package       PackageDetails
	VehicleType   VehicleType
	PaymentMethod PaymentMethod
	DistanceKm    float64
}

type AssignCommand struct {
	Actor    Actor
	OrderID  types.ID
	DriverID types.ID
}

type ArriveCommand struct {
	Actor   Actor
	OrderID types.ID
}

type ConfirmPickupCommand struct {
	Actor   Actor
	OrderID types.ID
}

type StartTransitCommand struct {
	Actor   Actor
	OrderID types.ID
}

type CompleteCommand struct {
	Actor   Actor
	OrderID types.ID
	OTP     string
}

type CancelCommand struct {
	Actor   Actor
	OrderID types.ID
	Reason  string
}

type AttachProofCommand struct {
	Actor    Actor
	OrderID  types.ID
	Kind     ProofKind
	PhotoURL string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if err := requireActor(cmd.Actor, ActorCustomer); err != nil {
		return "", err
	}
	if err := validateCreate(cmd); err != nil {
		return "", err
	}
	active, err := s.store.HasActiveByCustomer(ctx, cmd.CustomerID)
	if err != nil {
		return "", err
	}
	if active {
		return "", ErrActiveOrder
	}

	fare := types.Rupees(0)
	if s.pricing != nil {
		fare, err = s.pricing.Estimate(ctx, cmd.DistanceKm, cmd.VehicleType)
		if err != nil {
			return "", err
		}
	}
	otp, err := newDeliveryOTP()
	if err != nil {
		return "", err
	}

	id := newID()
	now := time.Now()
	o := &Order{
		ID:            id,
		CustomerID:    cmd.CustomerID,
		PickupAddress: cmd.PickupAddress,
		DropAddress:   cmd.DropAddress,
		Package:       cmd.Package,
		VehicleType:   cmd.VehicleType,
		Fare:          fare,
		DistanceKm:    cmd.DistanceKm,
		Status:        StatusSearching,
		StatusVersion: 0,
		PaymentMethod: cmd.PaymentMethod,
		DeliveryOTP:   otp,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    id,
		FromStatus: StatusPending,
		ToStatus:   StatusSearching,
		ActorType:  cmd.Actor.Type,
		ActorID:    &cmd.CustomerID,
		CreatedAt:  now,
	})
	if s.scheduler != nil {
		s.scheduler.OrderCreated(id)
	}
	return id, nil
}

// Assign is invoked by the simulated dispatch only; a real driver never calls
// it directly.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) error {
	if err := requireActor(cmd.Actor, ActorSystem); err != nil {
		return err
	}
	if cmd.DriverID == "" {
		return ErrBadRequest
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, o, StatusAccepted, cmd.Actor, &cmd.DriverID, nil)
}

func (s *Service) Arrive(ctx context.Context, cmd ArriveCommand) error {
	if err := requireActor(cmd.Actor, ActorDriver, ActorSystem); err != nil {
		return err
	}
	o, err := s.getForDriver(ctx, cmd.OrderID, cmd.Actor)
	if err != nil {
		return err
	}
	return s.transition(ctx, o, StatusDriverArrived, cmd.Actor, nil, nil)
}

func (s *Service) ConfirmPickup(ctx context.Context, cmd ConfirmPickupCommand) error {
	if err := requireActor(cmd.Actor, ActorDriver); err != nil {
		return err
	}
	o, err := s.getForDriver(ctx, cmd.OrderID, cmd.Actor)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, StatusPickedUp) {
		return ErrInvalidState
	}
	if o.PickupPhotoURL == nil {
		return ErrMissingProof
	}
	if err := s.transition(ctx, o, StatusPickedUp, cmd.Actor, nil, nil); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.OrderPickedUp(o.ID)
	}
	return nil
}

func (s *Service) StartTransit(ctx context.Context, cmd StartTransitCommand) error {
	if err := requireActor(cmd.Actor, ActorDriver, ActorSystem); err != nil {
		return err
	}
	o, err := s.getForDriver(ctx, cmd.OrderID, cmd.Actor)
	if err != nil {
		return err
	}
	return s.transition(ctx, o, StatusInTransit, cmd.Actor, nil, nil)
}

func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	if err := requireActor(cmd.Actor, ActorDriver); err != nil {
		return err
	}
	o, err := s.getForDriver(ctx, cmd.OrderID, cmd.Actor)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, StatusCompleted) {
		return ErrInvalidState
	}
	if o.DeliveryPhotoURL == nil {
		return ErrMissingProof
	}
	if cmd.OTP != o.DeliveryOTP {
		return ErrOTPMismatch
	}
	if err := s.transition(ctx, o, StatusCompleted, cmd.Actor, nil, nil); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.OrderClosed(o.ID)
	}
	return nil
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	if err := requireActor(cmd.Actor, ActorCustomer, ActorDriver, ActorAdmin); err != nil {
		return err
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	switch cmd.Actor.Type {
	case ActorCustomer:
		if o.CustomerID != cmd.Actor.ID {
			return ErrUnauthorized
		}
	case ActorDriver:
		if o.DriverID == nil || *o.DriverID != cmd.Actor.ID {
			return ErrUnauthorized
		}
	}
	reason := cmd.Reason
	if reason == "" {
		reason = string(cmd.Actor.Type) + "_cancel"
	}
	if err := s.transition(ctx, o, StatusCancelled, cmd.Actor, nil, &reason); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.OrderClosed(o.ID)
	}
	return nil
}

// AttachProof records a proof photo URL. Pickup proof may only be attached
// while the driver is at the pickup point; delivery proof only in transit.
// Each kind is write-once.
func (s *Service) AttachProof(ctx context.Context, cmd AttachProofCommand) error {
	if err := requireActor(cmd.Actor, ActorDriver); err != nil {
		return err
	}
	if cmd.PhotoURL == "" {
		return ErrBadRequest
	}
	o, err := s.getForDriver(ctx, cmd.OrderID, cmd.Actor)
	if err != nil {
		return err
	}
	switch cmd.Kind {
	case ProofPickup:
		if o.Status != StatusDriverArrived {
			return ErrInvalidState
		}
		if o.PickupPhotoURL != nil {
			return ErrBadRequest
		}
	case ProofDelivery:
		if o.Status != StatusInTransit {
			return ErrInvalidState
		}
		if o.DeliveryPhotoURL != nil {
			return ErrBadRequest
		}
	default:
		return ErrBadRequest
	}
	ok, err := s.store.SetProof(ctx, o.ID, cmd.Kind, cmd.PhotoURL, o.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID, actor Actor) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Type {
	case ActorCustomer:
		if o.CustomerID != actor.ID {
			return nil, ErrUnauthorized
		}
	case ActorDriver:
		if o.DriverID == nil || *o.DriverID != actor.ID {
			return nil, ErrUnauthorized
		}
	case ActorAdmin, ActorSystem:
	default:
		return nil, ErrUnauthorized
	}
	return o, nil
}

// ListForActor serves the history views: customers see their own orders,
// drivers the ones assigned to them, admins everything.
func (s *Service) ListForActor(ctx context.Context, actor Actor, limit int) ([]Order, error) {
	switch actor.Type {
	case ActorCustomer:
		return s.store.ListByCustomer(ctx, actor.ID, limit)
	case ActorDriver:
		return s.store.ListByDriver(ctx, actor.ID, limit)
	case ActorAdmin, ActorSystem:
		return s.store.ListAll(ctx, limit)
	}
	return nil, ErrUnauthorized
}

func (s *Service) transition(ctx context.Context, o *Order, to Status, actor Actor, driverID *types.ID, reason *string) error {
	if !CanTransition(o.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, driverID, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	actorID := actor.ID
	var actorRef *types.ID
	if actorID != "" {
		actorRef = &actorID
	}
	_ = s.store.AppendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   to,
		ActorType:  actor.Type,
		ActorID:    actorRef,
		CreatedAt:  time.Now(),
	})
	return nil
}

// getForDriver loads the order and enforces that a driver actor only touches
// the order assigned to them. The system actor (timers) bypasses ownership.
func (s *Service) getForDriver(ctx context.Context, id types.ID, actor Actor) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Type == ActorDriver {
		if o.DriverID == nil || *o.DriverID != actor.ID {
			return nil, ErrUnauthorized
		}
	}
	return o, nil
}

func requireActor(a Actor, allowed ...ActorType) error {
	for _, t := range allowed {
		if a.Type == t {
			return nil
		}
	}
	return ErrUnauthorized
}

func validateCreate(cmd CreateCommand) error {
	if cmd.CustomerID == "" || cmd.Actor.ID != cmd.CustomerID {
		return ErrBadRequest
	}
	if strings.TrimSpace(cmd.PickupAddress) == "" || strings.TrimSpace(cmd.DropAddress) == "" {
		return ErrBadRequest
	}
	if !ValidVehicleType(cmd.VehicleType) {
		return ErrBadRequest
	}
	switch cmd.Package.Size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		return ErrBadRequest
	}
	if cmd.Package.WeightKg <= 0 {
		return ErrBadRequest
	}
	switch cmd.PaymentMethod {
	case PayCash, PayWallet, PayUPI, PayCard:
	default:
		return ErrBadRequest
	}
	if cmd.DistanceKm < 0 {
		return ErrBadRequest
	}
	return nil
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}

// newDeliveryOTP draws a uniform 4-digit handoff code. It is not a security
// token; the small keyspace is acceptable for a human-readable code.
func newDeliveryOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(1000+n.Int64(), 10), nil
}
