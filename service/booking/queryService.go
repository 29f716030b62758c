package bookingsvc

import (
	"context"
	"math"
	"sort"

	"camrental/model"
	brepo "camrental/repository/booking"
)

// Display buckets. Rejected bookings get their own bucket instead of
// silently disappearing from every view.
var (
	pendingSet   = statusSet(model.BookingRequestPending, model.BookingRequestApproved, model.BookingConfirmed)
	activeSet    = statusSet(model.BookingPickupVerified)
	completedSet = statusSet(model.BookingCompleted)
	rejectedSet  = statusSet(model.BookingRejected)

	// revenueSet is where the platform fee counts as earned.
	revenueSet = statusSet(model.BookingCompleted, model.BookingPickupVerified, model.BookingConfirmed)
	inUseSet   = statusSet(model.BookingConfirmed, model.BookingPickupVerified)
)

type Buckets struct {
	Pending   []model.Booking `json:"pending"`
	Active    []model.Booking `json:"active"`
	Completed []model.Booking `json:"completed"`
	Rejected  []model.Booking `json:"rejected"`
}

type View struct {
	Bookings []model.Booking `json:"bookings"`
	Buckets  Buckets         `json:"buckets"`
}

type Aggregate struct {
	TotalBookings   int                         `json:"total_bookings"`
	ActiveBookings  int                         `json:"active_bookings"`
	ByStatus        map[model.BookingStatus]int `json:"by_status"`
	PlatformRevenue float64                     `json:"platform_revenue"`
}

type QueryService interface {
	ByRenter(ctx context.Context, renterID string) ([]model.Booking, error)
	ByLender(ctx context.Context, lenderID string) ([]model.Booking, error)

	// RenterView never exposes handoff codes; LenderView does.
	RenterView(ctx context.Context, renterID string) (*View, error)
	LenderView(ctx context.Context, lenderID string) (*View, error)

	AdminAggregate(ctx context.Context) (*Aggregate, error)
}

type queries struct{ r brepo.Repo }

func NewQueries(r brepo.Repo) QueryService { return &queries{r: r} }

func (q *queries) ByRenter(ctx context.Context, renterID string) ([]model.Booking, error) {
	rows, err := q.r.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(rows)
	return rows, nil
}

func (q *queries) ByLender(ctx context.Context, lenderID string) ([]model.Booking, error) {
	rows, err := q.r.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(rows)
	return rows, nil
}

func (q *queries) RenterView(ctx context.Context, renterID string) (*View, error) {
	rows, err := q.ByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = *rows[i].Redacted()
	}
	return &View{Bookings: rows, Buckets: Categorize(rows)}, nil
}

func (q *queries) LenderView(ctx context.Context, lenderID string) (*View, error) {
	rows, err := q.ByLender(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	return &View{Bookings: rows, Buckets: Categorize(rows)}, nil
}

func (q *queries) AdminAggregate(ctx context.Context) (*Aggregate, error) {
	totals, err := q.r.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(totals), nil
}

// Categorize partitions bookings by status, preserving input order.
func Categorize(rows []model.Booking) Buckets {
	var b Buckets
	for _, r := range rows {
		switch {
		case pendingSet[r.Status]:
			b.Pending = append(b.Pending, r)
		case activeSet[r.Status]:
			b.Active = append(b.Active, r)
		case completedSet[r.Status]:
			b.Completed = append(b.Completed, r)
		case rejectedSet[r.Status]:
			b.Rejected = append(b.Rejected, r)
		}
	}
	return b
}

// Summarize folds per-status totals into admin counters. Revenue is the sum
// of platform fees, which is what the platform keeps, not gross booking value.
func Summarize(totals []brepo.StatusTotal) *Aggregate {
	agg := &Aggregate{ByStatus: make(map[model.BookingStatus]int)}
	for _, t := range totals {
		agg.TotalBookings += t.Count
		agg.ByStatus[t.Status] += t.Count
		if inUseSet[t.Status] {
			agg.ActiveBookings += t.Count
		}
		if revenueSet[t.Status] {
			agg.PlatformRevenue += t.Fees
		}
	}
	agg.PlatformRevenue = roundCents(agg.PlatformRevenue)
	return agg
}

func sortNewestFirst(rows []model.Booking) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
}

func statusSet(ss ...model.BookingStatus) map[model.BookingStatus]bool {
	m := make(map[model.BookingStatus]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }
