package authrepo

import (
	"context"
	"errors"

	"camrental/model"
	"camrental/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	// ByEmail and ByID return nil, nil when no user matches.
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	Count(ctx context.Context) (int64, error)
	// List returns every active user, newest first.
	List(ctx context.Context) ([]model.User, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING wallet_balance, created_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
	).Scan(&u.WalletBalance, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email)
}

func (r *repo) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, `WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, email, role, wallet_balance, created_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u    model.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.WalletBalance, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) one(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, wallet_balance, created_at
		FROM users `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.WalletBalance, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
