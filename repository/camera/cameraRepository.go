package camerarepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"camrental/model"
	"camrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxResults = 50

type Repo interface {
	Create(ctx context.Context, c *model.Camera) error
	// ByID returns nil, nil when no live camera has that id.
	ByID(ctx context.Context, id string) (*model.Camera, error)
	Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error)
	Count(ctx context.Context) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const columns = `
	id, lender_id, name, brand, model, category, description,
	price_per_day, image_url, specifications, status, created_at`

func (r *repo) Create(ctx context.Context, c *model.Camera) error {
	specs, err := json.Marshal(c.Specifications)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO cameras (id, lender_id, name, brand, model, category, description,
			price_per_day, image_url, specifications, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`
	return r.db.Pool.QueryRow(ctx, q,
		c.ID, c.LenderID, c.Name, c.Brand, c.Model, c.Category, c.Description,
		c.PricePerDay, c.ImageURL, specs, string(c.Status),
	).Scan(&c.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id string) (*model.Camera, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const q = `
		SELECT ` + columns + `
		FROM cameras
		WHERE id = $1
		AND deleted_at IS NULL`
	c, err := scanCamera(r.db.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// Search builds the WHERE clause from whichever filters are set. Results are
// newest first and capped.
func (r *repo) Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error) {
	var (
		where = []string{"deleted_at IS NULL", "status = 'active'"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR brand ILIKE %[1]s OR model ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if f.Category != "" && f.Category != "all" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.MinPrice != nil {
		where = append(where, "price_per_day >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price_per_day <= "+arg(*f.MaxPrice))
	}
	if f.LenderID != "" {
		if _, err := uuid.Parse(f.LenderID); err != nil {
			return nil, nil
		}
		where = append(where, "lender_id = "+arg(f.LenderID))
	}
	limit := f.Limit
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	q := `
		SELECT ` + columns + `
		FROM cameras
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + arg(limit)

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM cameras WHERE deleted_at IS NULL`
	var n int64
	err := r.db.Pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}

func scanCamera(row pgx.Row) (*model.Camera, error) {
	var (
		c      model.Camera
		specs  []byte
		status string
	)
	if err := row.Scan(
		&c.ID, &c.LenderID, &c.Name, &c.Brand, &c.Model, &c.Category, &c.Description,
		&c.PricePerDay, &c.ImageURL, &specs, &status, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = model.CameraStatus(status)
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &c.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}
	return &c, nil
}
