package authsvc

import (
	"context"
	"errors"
	"strings"

	"camrental/model"
	authrepo "camrental/repository/auth"
	"camrental/util/hash"
	jwtutil "camrental/util/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultTTLHours = 24

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Me(ctx context.Context, id string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type service struct {
	ur       authrepo.Repo
	secret   string
	ttlHours int
}

func New(ur authrepo.Repo, secret string, ttlHours int) Service {
	if ttlHours <= 0 {
		ttlHours = defaultTTLHours
	}
	return &service{ur: ur, secret: secret, ttlHours: ttlHours}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || len(req.Password) < 6 {
		return nil, "", wrap(ErrBadInput, "name, email and a password of at least 6 characters are required")
	}
	role := req.Role
	if role == "" {
		role = model.RoleRenter
	}
	// admins are provisioned out of band
	if role != model.RoleRenter && role != model.RoleLender {
		return nil, "", wrap(ErrBadInput, "role must be renter or lender")
	}

	existing, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", wrap(ErrEmailTaken, "email already registered")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// mapDuplicateErr covers the race where two registrations pass the ByEmail
// check at the same time.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "users_email") {
			return wrap(ErrEmailTaken, "email already registered")
		}
		return wrap(ErrBadInput, "duplicate value")
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", wrap(ErrBadInput, "email and password are required")
	}
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", wrap(ErrInvalidCreds, "invalid credentials")
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Me(ctx context.Context, id string) (*model.User, error) {
	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, wrap(ErrNotFound, "user not found")
	}
	return u, nil
}

func (s *service) CountUsers(ctx context.Context) (int64, error) { return s.ur.Count(ctx) }

func (s *service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.ur.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
