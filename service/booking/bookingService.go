package bookingsvc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"camrental/model"
	brepo "camrental/repository/booking"
	"camrental/service/otp"
	"camrental/service/pricing"
	"camrental/util/metrics"

	"github.com/google/uuid"
	"github.com/moby/locker"
)

// Catalog resolves a camera listing. A nil camera with a nil error means the
// listing does not exist or is not rentable.
type Catalog interface {
	ResolveCamera(ctx context.Context, cameraID string) (*model.Camera, error)
}

// Ledger moves money for a returned rental. Settle must be idempotent per
// booking ID.
type Ledger interface {
	Settle(ctx context.Context, s model.Settlement) error
}

type SubmitReq struct {
	CameraID   string
	RenterID   string
	PickupDate time.Time
	ReturnDate time.Time
}

type Issued struct {
	Booking   *model.Booking
	PickupOTP string
	ReturnOTP string
}

type Service interface {
	// SubmitRequest prices and stores a new request_pending booking.
	SubmitRequest(ctx context.Context, req SubmitReq) (*model.Booking, error)

	// Lender decisions. The actor must own the booked camera.
	ApproveRequest(ctx context.Context, bookingID string, lender model.Actor) (*model.Booking, error)
	RejectRequest(ctx context.Context, bookingID string, lender model.Actor) (*model.Booking, error)
	ConfirmAndIssueOTPs(ctx context.Context, bookingID string, lender model.Actor) (*Issued, error)

	// Handoff proofs. Possession of the code is the credential.
	VerifyPickup(ctx context.Context, bookingID, code string) (*model.Booking, error)
	VerifyReturn(ctx context.Context, bookingID, code string) (*model.Booking, error)

	Get(ctx context.Context, bookingID string) (*model.Booking, error)
}

// pickup and return codes must differ
const maxOTPRetries = 5

type Option func(*service)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// WithIDs overrides uuid generation for new bookings.
func WithIDs(next func() string) Option { return func(s *service) { s.newID = next } }

// ----- Service implementation -----

type service struct {
	r       brepo.Repo
	catalog Catalog
	ledger  Ledger
	otp     otp.Generator
	locks   *locker.Locker
	now     func() time.Time
	newID   func() string
}

func New(r brepo.Repo, catalog Catalog, ledger Ledger, gen otp.Generator, opts ...Option) Service {
	s := &service{
		r:       r,
		catalog: catalog,
		ledger:  ledger,
		otp:     gen,
		locks:   locker.New(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) SubmitRequest(ctx context.Context, req SubmitReq) (b *model.Booking, err error) {
	defer observe("submit", &err)

	cam, err := s.catalog.ResolveCamera(ctx, req.CameraID)
	if err != nil && !malformedID(err) {
		return nil, fmt.Errorf("resolve camera: %w", err)
	}
	if cam == nil {
		return nil, makeErr(ErrNotFound, "camera not found")
	}
	if cam.LenderID == req.RenterID {
		return nil, makeErr(ErrForbidden, "lenders cannot rent their own camera")
	}

	now := s.now()
	if req.PickupDate.Before(startOfDay(now)) {
		return nil, makeErr(ErrInvalidRange, "pickup date is in the past")
	}
	q, err := pricing.Compute(cam.PricePerDay, req.PickupDate, req.ReturnDate)
	if errors.Is(err, pricing.ErrInvalidRange) {
		return nil, wrapErr(ErrInvalidRange, "", err)
	}
	if err != nil {
		return nil, fmt.Errorf("price camera %s: %w", cam.ID, err)
	}

	b = &model.Booking{
		ID:          s.newID(),
		CameraID:    cam.ID,
		RenterID:    req.RenterID,
		LenderID:    cam.LenderID,
		PickupDate:  req.PickupDate,
		ReturnDate:  req.ReturnDate,
		Status:      model.BookingRequestPending,
		Days:        q.Days,
		Subtotal:    q.Subtotal,
		PlatformFee: q.PlatformFee,
		Tax:         q.Tax,
		TotalPrice:  q.Total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.r.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	metrics.IncTransition(string(b.Status))
	return b.Clone(), nil
}

func (s *service) ApproveRequest(ctx context.Context, bookingID string, lender model.Actor) (b *model.Booking, err error) {
	defer observe("approve", &err)
	return s.transition(ctx, bookingID, model.BookingRequestPending, lenderOnly(lender),
		func(next *model.Booking, _ time.Time) error {
			next.Status = model.BookingRequestApproved
			return nil
		})
}

func (s *service) RejectRequest(ctx context.Context, bookingID string, lender model.Actor) (b *model.Booking, err error) {
	defer observe("reject", &err)
	return s.transition(ctx, bookingID, model.BookingRequestPending, lenderOnly(lender),
		func(next *model.Booking, _ time.Time) error {
			next.Status = model.BookingRejected
			return nil
		})
}

func (s *service) ConfirmAndIssueOTPs(ctx context.Context, bookingID string, lender model.Actor) (out *Issued, err error) {
	defer observe("confirm", &err)

	var pickup, ret string
	b, err := s.transition(ctx, bookingID, model.BookingRequestApproved, lenderOnly(lender),
		func(next *model.Booking, _ time.Time) error {
			var gerr error
			if pickup, gerr = s.otp.Generate(); gerr != nil {
				return gerr
			}
			for i := 0; ; i++ {
				if ret, gerr = s.otp.Generate(); gerr != nil {
					return gerr
				}
				if ret != pickup {
					break
				}
				if i == maxOTPRetries {
					return errors.New("otp generator keeps repeating codes")
				}
			}
			next.PickupOTP = &pickup
			next.ReturnOTP = &ret
			next.Status = model.BookingConfirmed
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &Issued{Booking: b, PickupOTP: pickup, ReturnOTP: ret}, nil
}

func (s *service) VerifyPickup(ctx context.Context, bookingID, code string) (b *model.Booking, err error) {
	defer observe("verify_pickup", &err)
	return s.transition(ctx, bookingID, model.BookingConfirmed, nil,
		func(next *model.Booking, now time.Time) error {
			if !otpMatches(next.PickupOTP, code) {
				return makeErr(ErrInvalidOTP, "pickup code does not match")
			}
			next.PickupVerifiedAt = &now
			next.Status = model.BookingPickupVerified
			return nil
		})
}

func (s *service) VerifyReturn(ctx context.Context, bookingID, code string) (b *model.Booking, err error) {
	defer observe("verify_return", &err)
	return s.transition(ctx, bookingID, model.BookingPickupVerified, nil,
		func(next *model.Booking, now time.Time) error {
			if !otpMatches(next.ReturnOTP, code) {
				return makeErr(ErrInvalidOTP, "return code does not match")
			}
			st := model.Settlement{
				BookingID:   next.ID,
				RenterID:    next.RenterID,
				LenderID:    next.LenderID,
				Subtotal:    next.Subtotal,
				PlatformFee: next.PlatformFee,
				Tax:         next.Tax,
				Total:       next.TotalPrice,
			}
			if serr := s.ledger.Settle(ctx, st); serr != nil {
				return wrapErr(ErrSettlement, "ledger settlement failed", serr)
			}
			metrics.AddSettlement(st.Subtotal, st.PlatformFee, st.Tax)
			next.ReturnVerifiedAt = &now
			next.Status = model.BookingCompleted
			return nil
		})
}

func (s *service) Get(ctx context.Context, bookingID string) (*model.Booking, error) {
	return s.load(ctx, bookingID)
}

// transition runs one guarded status change. The per-booking lock keeps
// side effects in apply (OTP minting, settlement) from running twice in this
// process; the compare-and-swap protects against other processes.
func (s *service) transition(
	ctx context.Context,
	bookingID string,
	from model.BookingStatus,
	authorize func(*model.Booking) error,
	apply func(next *model.Booking, now time.Time) error,
) (*model.Booking, error) {
	s.locks.Lock(bookingID)
	defer s.locks.Unlock(bookingID)

	cur, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(cur); err != nil {
			return nil, err
		}
	}
	if cur.Status.Terminal() {
		return nil, makeErr(ErrInvalidState, fmt.Sprintf("booking is already %s", cur.Status))
	}
	if cur.Status != from {
		return nil, makeErr(ErrInvalidState, fmt.Sprintf("booking is %s, expected %s", cur.Status, from))
	}

	now := s.now()
	next := cur.Clone()
	if err := apply(next, now); err != nil {
		if Code(err) == "" {
			return nil, fmt.Errorf("apply %s transition: %w", from, err)
		}
		return nil, err
	}
	if !from.CanTransitionTo(next.Status) {
		return nil, makeErr(ErrInvalidState, fmt.Sprintf("illegal transition %s -> %s", from, next.Status))
	}
	next.UpdatedAt = now

	ok, err := s.r.CompareAndSwap(ctx, from, next)
	if err != nil {
		return nil, fmt.Errorf("store transition: %w", err)
	}
	if !ok {
		return nil, makeErr(ErrInvalidState, "booking was modified concurrently")
	}
	metrics.IncTransition(string(next.Status))
	return next, nil
}

func (s *service) load(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.r.Get(ctx, bookingID)
	if errors.Is(err, brepo.ErrNotFound) || malformedID(err) {
		return nil, makeErr(ErrNotFound, "booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

func lenderOnly(actor model.Actor) func(*model.Booking) error {
	return func(b *model.Booking) error {
		if actor.ID == "" || actor.ID != b.LenderID {
			return makeErr(ErrForbidden, "only the camera's lender can do this")
		}
		return nil
	}
}

func otpMatches(stored *string, supplied string) bool {
	if stored == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(supplied)) == 1
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func observe(op string, err *error) {
	if *err != nil {
		metrics.IncFailure(op, string(Code(*err)))
	}
}
