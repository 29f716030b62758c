package bookingsvc

import (
	"context"
	"testing"
	"time"

	"camrental/model"
	brepo "camrental/repository/booking"

	"github.com/stretchr/testify/require"
)

func row(id string, st model.BookingStatus, fee float64, created time.Time) model.Booking {
	return model.Booking{ID: id, Status: st, PlatformFee: fee, CreatedAt: created, RenterID: renter.ID, LenderID: lender.ID}
}

func TestCategorize(t *testing.T) {
	rows := []model.Booking{
		row("a", model.BookingRequestPending, 0, clock),
		row("b", model.BookingRequestApproved, 0, clock),
		row("c", model.BookingConfirmed, 0, clock),
		row("d", model.BookingPickupVerified, 0, clock),
		row("e", model.BookingCompleted, 0, clock),
		row("f", model.BookingRejected, 0, clock),
	}
	b := Categorize(rows)

	ids := func(rs []model.Booking) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	require.Equal(t, []string{"a", "b", "c"}, ids(b.Pending))
	require.Equal(t, []string{"d"}, ids(b.Active))
	require.Equal(t, []string{"e"}, ids(b.Completed))
	require.Equal(t, []string{"f"}, ids(b.Rejected))
}

func TestSummarize(t *testing.T) {
	totals := []brepo.StatusTotal{
		{Status: model.BookingRequestPending, Count: 1, Fees: 10},
		{Status: model.BookingRequestApproved, Count: 1, Fees: 20},
		{Status: model.BookingConfirmed, Count: 1, Fees: 3.3},
		{Status: model.BookingPickupVerified, Count: 2, Fees: 4.4},
		{Status: model.BookingCompleted, Count: 3, Fees: 5.5},
		{Status: model.BookingRejected, Count: 1, Fees: 100},
	}
	agg := Summarize(totals)
	require.Equal(t, 9, agg.TotalBookings)
	require.Equal(t, 3, agg.ActiveBookings)
	require.Equal(t, 13.2, agg.PlatformRevenue)
	require.Equal(t, 1, agg.ByStatus[model.BookingRejected])
	require.Equal(t, 3, agg.ByStatus[model.BookingCompleted])
}

func TestSummarize_Empty(t *testing.T) {
	agg := Summarize(nil)
	require.Zero(t, agg.TotalBookings)
	require.Zero(t, agg.PlatformRevenue)
	require.NotNil(t, agg.ByStatus)
}

// unsortedRepo returns rows in insertion order to prove the query service
// sorts on its own.
type unsortedRepo struct {
	brepo.Repo
	rows []model.Booking
}

func (r *unsortedRepo) ListByRenter(ctx context.Context, id string) ([]model.Booking, error) {
	return append([]model.Booking(nil), r.rows...), nil
}

func (r *unsortedRepo) ListByLender(ctx context.Context, id string) ([]model.Booking, error) {
	return append([]model.Booking(nil), r.rows...), nil
}

func TestByRenter_NewestFirst(t *testing.T) {
	repo := &unsortedRepo{rows: []model.Booking{
		row("old", model.BookingCompleted, 0, clock.Add(-time.Hour)),
		row("new", model.BookingRequestPending, 0, clock),
		row("mid", model.BookingRejected, 0, clock.Add(-time.Minute)),
	}}
	q := NewQueries(repo)

	rows, err := q.ByRenter(context.Background(), renter.ID)
	require.NoError(t, err)
	require.Equal(t, "new", rows[0].ID)
	require.Equal(t, "mid", rows[1].ID)
	require.Equal(t, "old", rows[2].ID)

	rows, err = q.ByLender(context.Background(), lender.ID)
	require.NoError(t, err)
	require.Equal(t, "new", rows[0].ID)
}

func TestViews_OTPVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, iss := f.confirmed(t)
	q := NewQueries(f.repo)

	rv, err := q.RenterView(ctx, renter.ID)
	require.NoError(t, err)
	require.Len(t, rv.Bookings, 1)
	require.Nil(t, rv.Bookings[0].PickupOTP)
	require.Nil(t, rv.Bookings[0].ReturnOTP)
	require.Len(t, rv.Buckets.Pending, 1)

	lv, err := q.LenderView(ctx, lender.ID)
	require.NoError(t, err)
	require.Len(t, lv.Bookings, 1)
	require.Equal(t, b.ID, lv.Bookings[0].ID)
	require.Equal(t, iss.PickupOTP, *lv.Bookings[0].PickupOTP)

	// the renter view must not have redacted the stored row
	require.NotNil(t, f.stored(t, b.ID).PickupOTP)
}

func TestAdminAggregate_FromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b1, iss := f.confirmed(t)
	_, err := f.svc.VerifyPickup(ctx, b1.ID, iss.PickupOTP)
	require.NoError(t, err)
	b2 := f.submit(t)
	_, err = f.svc.RejectRequest(ctx, b2.ID, lender)
	require.NoError(t, err)

	agg, err := NewQueries(f.repo).AdminAggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, agg.TotalBookings)
	require.Equal(t, 1, agg.ActiveBookings)
	require.Equal(t, 10.0, agg.PlatformRevenue)
}
