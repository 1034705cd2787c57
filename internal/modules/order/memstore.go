// README: In-memory order store with the same compare-and-swap semantics as the Postgres store.
package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"swiftdrop/internal/types"
)

// MemStore backs unit tests and the standalone simulator. A single mutex
// serializes all writers, so concurrent transition attempts on one order
// resolve deterministically: exactly one CAS wins.
type MemStore struct {
	mu     sync.Mutex
	orders map[types.ID]*Order
	events []Event
}

func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[types.ID]*Order)}
}

func (s *MemStore) Create(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != from || o.StatusVersion != version {
		return false, nil
	}
	now := time.Now()
	o.Status = to
	o.StatusVersion++
	if driverID != nil {
		d := *driverID
		o.DriverID = &d
	}
	if cancelReason != nil {
		r := *cancelReason
		o.CancelReason = &r
	}
	switch to {
	case StatusAccepted:
		o.AcceptedAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	return true, nil
}

func (s *MemStore) SetProof(_ context.Context, id types.ID, kind ProofKind, url string, version int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.StatusVersion != version {
		return false, nil
	}
	switch kind {
	case ProofPickup:
		if o.PickupPhotoURL != nil {
			return false, nil
		}
		o.PickupPhotoURL = &url
	case ProofDelivery:
		if o.DeliveryPhotoURL != nil {
			return false, nil
		}
		o.DeliveryPhotoURL = &url
	default:
		return false, nil
	}
	return true, nil
}

func (s *MemStore) HasActiveByCustomer(_ context.Context, customerID types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.CustomerID == customerID && !IsTerminal(o.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error) {
	return s.list(func(o *Order) bool { return o.CustomerID == customerID }, limit), nil
}

func (s *MemStore) ListByDriver(ctx context.Context, driverID types.ID, limit int) ([]Order, error) {
	return s.list(func(o *Order) bool { return o.DriverID != nil && *o.DriverID == driverID }, limit), nil
}

func (s *MemStore) ListAll(ctx context.Context, limit int) ([]Order, error) {
	return s.list(func(*Order) bool { return true }, limit), nil
}

func (s *MemStore) list(match func(*Order) bool, limit int) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []Order
	for _, o := range s.orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.ID = int64(len(s.events) + 1)
	s.events = append(s.events, cp)
	return nil
}

// EventsFor returns the audit trail recorded for an order, oldest first.
func (s *MemStore) EventsFor(id types.ID) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.OrderID == id {
			out = append(out, e)
		}
	}
	return out
}
