package camerasvc

import (
	"context"
	"errors"
	"strings"

	"camrental/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotLender = errors.New("only lenders can list cameras")
	ErrBadInput  = errors.New("invalid payload")
)

type Repo interface {
	Create(ctx context.Context, c *model.Camera) error
	ByID(ctx context.Context, id string) (*model.Camera, error)
	Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error)
	Count(ctx context.Context) (int64, error)
}

type Service interface {
	Create(ctx context.Context, lender model.Actor, req model.CreateCameraReq) (*model.Camera, error)
	Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error)
	Detail(ctx context.Context, id string) (*model.Camera, error)
	// ResolveCamera is the catalog lookup used when a booking is requested.
	ResolveCamera(ctx context.Context, id string) (*model.Camera, error)
	Count(ctx context.Context) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, lender model.Actor, req model.CreateCameraReq) (*model.Camera, error) {
	if lender.Role != model.RoleLender {
		return nil, ErrNotLender
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Category) == "" || req.PricePerDay <= 0 {
		return nil, ErrBadInput
	}
	c := &model.Camera{
		ID:             uuid.NewString(),
		LenderID:       lender.ID,
		Name:           name,
		Brand:          req.Brand,
		Model:          req.Model,
		Category:       req.Category,
		Description:    req.Description,
		PricePerDay:    req.PricePerDay,
		ImageURL:       req.ImageURL,
		Specifications: req.Specifications,
		Status:         model.CameraActive,
	}
	if err := s.r.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, ErrBadInput
	}
	return s.r.Search(ctx, f)
}

func (s *service) Detail(ctx context.Context, id string) (*model.Camera, error) {
	c, err := s.r.ByID(ctx, id)
	if malformedID(err) {
		return nil, nil
	}
	return c, err
}

func (s *service) ResolveCamera(ctx context.Context, id string) (*model.Camera, error) {
	c, err := s.Detail(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	if c.Status != model.CameraActive {
		return nil, nil
	}
	return c, nil
}

func (s *service) Count(ctx context.Context) (int64, error) { return s.r.Count(ctx) }

// malformedID matches postgres rejecting a non-uuid id, which names no camera.
func malformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
