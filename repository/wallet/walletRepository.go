package walletrepo

import (
	"context"
	"errors"

	"camrental/model"
	"camrental/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

// Repo exposes row-level ledger primitives. Every mutation runs inside WithTx
// so the balance update and its transaction row commit together.
type Repo interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	Balance(ctx context.Context, userID string) (float64, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)

	GetUserBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (float64, error)
	UpdateUserBalance(ctx context.Context, tx pgx.Tx, userID string, newBalance float64) error
	InsertTransaction(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
	HasSettlement(ctx context.Context, tx pgx.Tx, bookingID string) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repo) Balance(ctx context.Context, userID string) (float64, error) {
	const q = `SELECT wallet_balance FROM users WHERE id=$1 AND deleted_at IS NULL`
	var bal float64
	err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return bal, err
}

func (r *repo) ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	const q = `
SELECT id, user_id, booking_id, type, amount, balance_after, description, created_at
FROM transactions
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t   model.Transaction
			typ string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookingID, &typ, &t.Amount, &t.BalanceAfter, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = model.TransactionType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repo) GetUserBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (float64, error) {
	const q = `SELECT wallet_balance FROM users WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`
	var bal float64
	err := tx.QueryRow(ctx, q, userID).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return bal, err
}

func (r *repo) UpdateUserBalance(ctx context.Context, tx pgx.Tx, userID string, newBalance float64) error {
	const q = `UPDATE users SET wallet_balance=$2 WHERE id=$1`
	_, err := tx.Exec(ctx, q, userID, newBalance)
	return err
}

func (r *repo) InsertTransaction(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (id, user_id, booking_id, type, amount, balance_after, description)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING created_at`
	return tx.QueryRow(ctx, q, t.ID, t.UserID, t.BookingID, string(t.Type), t.Amount, t.BalanceAfter, t.Description).
		Scan(&t.CreatedAt)
}

func (r *repo) HasSettlement(ctx context.Context, tx pgx.Tx, bookingID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM transactions WHERE booking_id=$1 AND type=$2)`
	var ok bool
	err := tx.QueryRow(ctx, q, bookingID, string(model.TxBookingCharge)).Scan(&ok)
	return ok, err
}
