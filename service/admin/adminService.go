package adminsvc

import (
	"context"

	"camrental/model"
	bookingsvc "camrental/service/booking"
)

// Stats is the platform dashboard payload.
type Stats struct {
	*bookingsvc.Aggregate
	TotalUsers    int64 `json:"total_users"`
	TotalListings int64 `json:"total_listings"`
}

type Aggregator interface {
	AdminAggregate(ctx context.Context) (*bookingsvc.Aggregate, error)
}

type Counter func(ctx context.Context) (int64, error)

// UserLister returns every active account, newest first.
type UserLister func(ctx context.Context) ([]model.User, error)

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	Users(ctx context.Context) ([]model.User, error)
}

type service struct {
	bookings Aggregator
	users    Counter
	cameras  Counter
	list     UserLister
}

func New(bookings Aggregator, users, cameras Counter, list UserLister) Service {
	return &service{bookings: bookings, users: users, cameras: cameras, list: list}
}

func (s *service) Users(ctx context.Context) ([]model.User, error) { return s.list(ctx) }

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	agg, err := s.bookings.AdminAggregate(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	cams, err := s.cameras(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Aggregate: agg, TotalUsers: users, TotalListings: cams}, nil
}
