// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swiftdrop/internal/modules/order"
)

var ErrRateNotFound = errors.New("rate not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, vehicle order.VehicleType) (Rate, error) {
	row := s.db.QueryRow(ctx, `
        SELECT vehicle_type, base_fare, per_km
        FROM rates
        WHERE vehicle_type = $1`, string(vehicle),
	)
	var r Rate
	err := row.Scan(&r.Vehicle, &r.BaseFare, &r.PerKm)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	return r, nil
}
