// README: Order aggregate, status definitions, and actor roles.
package order

import (
	"time"

	"swiftdrop/internal/types"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusSearching     Status = "searching"
	StatusAccepted      Status = "accepted"
	StatusDriverArrived Status = "driver_arrived"
	StatusPickedUp      Status = "picked_up"
	StatusInTransit     Status = "in_transit"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

type VehicleType string

const (
	VehicleBike         VehicleType = "bike"
	VehicleAuto         VehicleType = "auto"
	VehicleCarPremium   VehicleType = "car_premium"
	VehicleLogisticsVan VehicleType = "logistics_van"
)

func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleBike, VehicleAuto, VehicleCarPremium, VehicleLogisticsVan:
		return true
	}
	return false
}

type PackageSize string

const (
	SizeSmall  PackageSize = "small"
	SizeMedium PackageSize = "medium"
	SizeLarge  PackageSize = "large"
)

type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayWallet PaymentMethod = "wallet"
	PayUPI    PaymentMethod = "upi"
	PayCard   PaymentMethod = "card"
)

type ProofKind string

const (
	ProofPickup   ProofKind = "pickup"
	ProofDelivery ProofKind = "delivery"
)

// PackageDetails is immutable once the order is created.
type PackageDetails struct {
	Size        PackageSize
	WeightKg    float64
	Fragile     bool
	Description string
	ImageURL    string
}

type Order struct {
	ID            types.ID
	CustomerID    types.ID
	DriverID      *types.ID
	PickupAddress string
	DropAddress   string
	Package       PackageDetails
	VehicleType   VehicleType
	Fare          types.Money
	DistanceKm    float64
	Status        Status
	StatusVersion int
	PaymentMethod PaymentMethod
	// DeliveryOTP is the handoff code shown to the customer; fixed at creation,
	// never regenerated.
	DeliveryOTP      string
	PickupPhotoURL   *string
	DeliveryPhotoURL *string
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     *string
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  ActorType
	ActorID    *types.ID
	CreatedAt  time.Time
}

type ActorType string

const (
	ActorCustomer ActorType = "customer"
	ActorDriver   ActorType = "driver"
	ActorAdmin    ActorType = "admin"
	ActorSystem   ActorType = "system"
)

// Actor identifies who is requesting a transition. Each operation accepts a
// closed subset of actor types; anything else fails with ErrUnauthorized.
type Actor struct {
	Type ActorType
	ID   types.ID
}

// AllowedTransitions represents the delivery lifecycle diagram as code.
// Terminal statuses have no outgoing edges.
var AllowedTransitions = map[Status][]Status{
	StatusPending:       {StatusSearching, StatusCancelled},
	StatusSearching:     {StatusAccepted, StatusCancelled},
	StatusAccepted:      {StatusDriverArrived, StatusCancelled},
	StatusDriverArrived: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:      {StatusInTransit, StatusCancelled},
	StatusInTransit:     {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}
