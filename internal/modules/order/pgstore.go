// README: Order store backed by PostgreSQL (pgxpool, optimistic locking).
package order

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swiftdrop/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO orders (
            id, customer_id, driver_id, status, status_version,
            pickup_address, drop_address,
            package_size, package_weight_kg, package_fragile, package_description, package_image_url,
            vehicle_type, fare_amount, fare_currency, distance_km,
            payment_method, delivery_otp, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7,
            $8, $9, $10, $11, $12,
            $13, $14, $15, $16,
            $17, $18, $19
        )`,
		string(o.ID),
		string(o.CustomerID),
		idPtr(o.DriverID),
		string(o.Status),
		o.StatusVersion,
		o.PickupAddress, o.DropAddress,
		string(o.Package.Size), o.Package.WeightKg, o.Package.Fragile, o.Package.Description, o.Package.ImageURL,
		string(o.VehicleType), o.Fare.Amount, o.Fare.Currency, o.DistanceKm,
		string(o.PaymentMethod), o.DeliveryOTP, o.CreatedAt,
	)
	return err
}

const orderColumns = `
        id, customer_id, driver_id, status, status_version,
        pickup_address, drop_address,
        package_size, package_weight_kg, package_fragile, package_description, package_image_url,
        vehicle_type, fare_amount, fare_currency, distance_km,
        payment_method, delivery_otp, pickup_photo_url, delivery_photo_url,
        created_at, accepted_at, completed_at, cancelled_at, cancel_reason`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET status = $1,
            status_version = status_version + 1,
            driver_id = COALESCE($2, driver_id),
            cancel_reason = COALESCE($3, cancel_reason),
            accepted_at = CASE WHEN $1 = 'accepted' THEN NOW() ELSE accepted_at END,
            completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
        WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		idPtr(driverID),
		cancelReason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetProof(ctx context.Context, id types.ID, kind ProofKind, url string, version int) (bool, error) {
	column := "pickup_photo_url"
	if kind == ProofDelivery {
		column = "delivery_photo_url"
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET `+column+` = $1
        WHERE id = $2 AND status_version = $3 AND `+column+` IS NULL`,
		url,
		string(id),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) HasActiveByCustomer(ctx context.Context, customerID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM orders
            WHERE customer_id = $1
              AND status NOT IN ('completed','cancelled')
        )`, string(customerID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PGStore) ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error) {
	return s.list(ctx, `WHERE customer_id = $1`, limit, string(customerID))
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID types.ID, limit int) ([]Order, error) {
	return s.list(ctx, `WHERE driver_id = $1`, limit, string(driverID))
}

func (s *PGStore) ListAll(ctx context.Context, limit int) ([]Order, error) {
	return s.list(ctx, ``, limit)
}

func (s *PGStore) list(ctx context.Context, where string, limit int, args ...any) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM orders ` + where +
		` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO order_state_events (
            order_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		string(e.ActorType),
		idPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var driverID, pickupPhoto, deliveryPhoto, cancelReason sql.NullString
	var acceptedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.CustomerID, &driverID, &o.Status, &o.StatusVersion,
		&o.PickupAddress, &o.DropAddress,
		&o.Package.Size, &o.Package.WeightKg, &o.Package.Fragile, &o.Package.Description, &o.Package.ImageURL,
		&o.VehicleType, &o.Fare.Amount, &o.Fare.Currency, &o.DistanceKm,
		&o.PaymentMethod, &o.DeliveryOTP, &pickupPhoto, &deliveryPhoto,
		&o.CreatedAt, &acceptedAt, &completedAt, &cancelledAt, &cancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		d := types.ID(driverID.String)
		o.DriverID = &d
	}
	if pickupPhoto.Valid {
		o.PickupPhotoURL = &pickupPhoto.String
	}
	if deliveryPhoto.Valid {
		o.DeliveryPhotoURL = &deliveryPhoto.String
	}
	if cancelReason.Valid {
		o.CancelReason = &cancelReason.String
	}
	o.AcceptedAt = timePtr(acceptedAt)
	o.CompletedAt = timePtr(completedAt)
	o.CancelledAt = timePtr(cancelledAt)
	return &o, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
