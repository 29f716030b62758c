// repository/booking/repo.go
package bookingrepo

import (
	"context"
	"errors"

	"camrental/model"
	"camrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("booking not found")

// StatusTotal is one row of the per-status rollup used by the admin dashboard.
type StatusTotal struct {
	Status model.BookingStatus
	Count  int
	Fees   float64
}

// Repo is the booking store. CompareAndSwap is the only mutation after
// Insert: it writes next only if the stored status still equals expected.
type Repo interface {
	Insert(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, id string) (*model.Booking, error)
	CompareAndSwap(ctx context.Context, expected model.BookingStatus, next *model.Booking) (bool, error)

	ListByRenter(ctx context.Context, renterID string) ([]model.Booking, error)
	ListByLender(ctx context.Context, lenderID string) ([]model.Booking, error)
	Totals(ctx context.Context) ([]StatusTotal, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const columns = `
	id, camera_id, renter_id, lender_id, pickup_date, return_date, status,
	days, subtotal, platform_fee, tax, total_price,
	pickup_otp, return_otp, created_at, updated_at,
	pickup_verified_at, return_verified_at`

func (r *repo) Insert(ctx context.Context, b *model.Booking) error {
	const q = `
		INSERT INTO bookings (` + columns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	_, err := r.db.Pool.Exec(ctx, q,
		b.ID, b.CameraID, b.RenterID, b.LenderID, b.PickupDate, b.ReturnDate, string(b.Status),
		b.Days, b.Subtotal, b.PlatformFee, b.Tax, b.TotalPrice,
		b.PickupOTP, b.ReturnOTP, b.CreatedAt, b.UpdatedAt,
		b.PickupVerifiedAt, b.ReturnVerifiedAt,
	)
	return err
}

func (r *repo) Get(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	const q = `
		SELECT ` + columns + `
		FROM bookings
		WHERE id = $1
		AND deleted_at IS NULL`
	b, err := scanBooking(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CompareAndSwap only touches the mutable columns. Identity, participants,
// dates and money never change after Insert.
func (r *repo) CompareAndSwap(ctx context.Context, expected model.BookingStatus, next *model.Booking) (bool, error) {
	const q = `
		UPDATE bookings
		SET status = $3,
			pickup_otp = $4,
			return_otp = $5,
			pickup_verified_at = $6,
			return_verified_at = $7,
			updated_at = $8
		WHERE id = $1
		AND status = $2
		AND deleted_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q,
		next.ID, string(expected), string(next.Status),
		next.PickupOTP, next.ReturnOTP,
		next.PickupVerifiedAt, next.ReturnVerifiedAt,
		next.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListByRenter(ctx context.Context, renterID string) ([]model.Booking, error) {
	const q = `
		SELECT ` + columns + `
		FROM bookings
		WHERE renter_id = $1
		AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, renterID)
}

func (r *repo) ListByLender(ctx context.Context, lenderID string) ([]model.Booking, error) {
	const q = `
		SELECT ` + columns + `
		FROM bookings
		WHERE lender_id = $1
		AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, lenderID)
}

func (r *repo) Totals(ctx context.Context) ([]StatusTotal, error) {
	const q = `
		SELECT status, COUNT(*), COALESCE(SUM(platform_fee), 0)
		FROM bookings
		WHERE deleted_at IS NULL
		GROUP BY status
		ORDER BY status`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusTotal
	for rows.Next() {
		var (
			t      StatusTotal
			status string
		)
		if err := rows.Scan(&status, &t.Count, &t.Fees); err != nil {
			return nil, err
		}
		if t.Status, err = model.ParseBookingStatus(status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b      model.Booking
		status string
	)
	err := row.Scan(
		&b.ID, &b.CameraID, &b.RenterID, &b.LenderID, &b.PickupDate, &b.ReturnDate, &status,
		&b.Days, &b.Subtotal, &b.PlatformFee, &b.Tax, &b.TotalPrice,
		&b.PickupOTP, &b.ReturnOTP, &b.CreatedAt, &b.UpdatedAt,
		&b.PickupVerifiedAt, &b.ReturnVerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.Status, err = model.ParseBookingStatus(status); err != nil {
		return nil, err
	}
	return &b, nil
}
