// README: Pricing service computes fare estimates.
package pricing

import (
	"context"
	"math"

	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/types"
)

type Service struct {
	store *Store
}

// NewService returns an estimator. store may be nil; the built-in rate table
// is then used for every vehicle class.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Estimate is pure: fare = round(distanceKm * perKm + baseFare). The result is
// fixed on the order at creation and never recomputed.
func (s *Service) Estimate(ctx context.Context, distanceKm float64, vehicle order.VehicleType) (types.Money, error) {
	if distanceKm < 0 || !order.ValidVehicleType(vehicle) {
		return types.Money{}, order.ErrBadRequest
	}
	perKm := defaultRates[vehicle]
	base := int64(baseFare)
	if s.store != nil {
		if r, err := s.store.GetRate(ctx, vehicle); err == nil {
			perKm = r.PerKm
			base = r.BaseFare
		}
	}
	amount := int64(math.Round(distanceKm*float64(perKm) + float64(base)))
	return types.Rupees(amount), nil
}
