// README: Store contract for orders; Postgres and in-memory implementations satisfy it.
package order

import (
	"context"

	"swiftdrop/internal/types"
)

// Store persists orders. UpdateStatus and SetProof are compare-and-swap
// operations: they apply only when the caller's snapshot (status + version)
// still matches, which serializes concurrent transitions per order. A false
// return means another writer won the race.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error)
	// SetProof stores a proof photo URL exactly once; a second write for the
	// same kind does not apply.
	SetProof(ctx context.Context, id types.ID, kind ProofKind, url string, version int) (bool, error)
	HasActiveByCustomer(ctx context.Context, customerID types.ID) (bool, error)
	ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error)
	ListByDriver(ctx context.Context, driverID types.ID, limit int) ([]Order, error)
	ListAll(ctx context.Context, limit int) ([]Order, error)
	AppendEvent(ctx context.Context, e *Event) error
}
