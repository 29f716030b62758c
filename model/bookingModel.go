// model/booking.go
package model

import (
	"errors"
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingRequestPending  BookingStatus = "request_pending"
	BookingRequestApproved BookingStatus = "request_approved"
	BookingRejected        BookingStatus = "rejected"
	BookingConfirmed       BookingStatus = "confirmed"
	BookingPickupVerified  BookingStatus = "pickup_verified"
	BookingCompleted       BookingStatus = "completed"
)

// transitions is the full lifecycle graph. Terminal states map to nothing.
var transitions = map[BookingStatus][]BookingStatus{
	BookingRequestPending:  {BookingRequestApproved, BookingRejected},
	BookingRequestApproved: {BookingConfirmed},
	BookingConfirmed:       {BookingPickupVerified},
	BookingPickupVerified:  {BookingCompleted},
	BookingRejected:        {},
	BookingCompleted:       {},
}

// rank orders statuses along the happy path so "reached" checks are cheap.
var rank = map[BookingStatus]int{
	BookingRequestPending:  0,
	BookingRequestApproved: 1,
	BookingRejected:        1,
	BookingConfirmed:       2,
	BookingPickupVerified:  3,
	BookingCompleted:       4,
}

func (s BookingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Reached reports whether s is at or past target on the approval path.
// Rejected never reaches anything beyond request_pending.
func (s BookingStatus) Reached(target BookingStatus) bool {
	if s == BookingRejected {
		return target == BookingRequestPending || target == BookingRejected
	}
	if target == BookingRejected {
		return false
	}
	return rank[s] >= rank[target]
}

func ParseBookingStatus(v string) (BookingStatus, error) {
	s := BookingStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid booking status: %q", v)
	}
	return s, nil
}

type Booking struct {
	ID         string        `json:"id"`
	CameraID   string        `json:"camera_id"`
	RenterID   string        `json:"renter_id"`
	LenderID   string        `json:"lender_id"`
	PickupDate time.Time     `json:"pickup_date"`
	ReturnDate time.Time     `json:"return_date"`
	Status     BookingStatus `json:"status"`

	Days        int     `json:"days"`
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	Tax         float64 `json:"tax"`
	TotalPrice  float64 `json:"total_price"`

	PickupOTP *string `json:"pickup_otp,omitempty"`
	ReturnOTP *string `json:"return_otp,omitempty"`

	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	PickupVerifiedAt *time.Time `json:"pickup_verified_at,omitempty"`
	ReturnVerifiedAt *time.Time `json:"return_verified_at,omitempty"`
}

// Clone returns a deep copy so stores never share pointers with callers.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.PickupOTP = cloneStr(b.PickupOTP)
	c.ReturnOTP = cloneStr(b.ReturnOTP)
	c.PickupVerifiedAt = cloneTime(b.PickupVerifiedAt)
	c.ReturnVerifiedAt = cloneTime(b.ReturnVerifiedAt)
	return &c
}

// Redacted hides the handoff codes; renters learn them in person.
func (b *Booking) Redacted() *Booking {
	c := b.Clone()
	c.PickupOTP = nil
	c.ReturnOTP = nil
	return c
}

// Validate checks the field invariants that must hold in every status.
func (b *Booking) Validate() error {
	if !b.Status.Valid() {
		return fmt.Errorf("unknown status %q", b.Status)
	}
	if !b.ReturnDate.After(b.PickupDate) {
		return errors.New("return date must be after pickup date")
	}
	if b.Subtotal < 0 || b.PlatformFee < 0 || b.Tax < 0 || b.TotalPrice < 0 {
		return errors.New("negative money field")
	}
	if diff := b.TotalPrice - (b.Subtotal + b.PlatformFee + b.Tax); diff > 0.005 || diff < -0.005 {
		return errors.New("total price does not add up")
	}

	issued := b.Status.Reached(BookingConfirmed)
	if issued != (b.PickupOTP != nil) || issued != (b.ReturnOTP != nil) {
		return fmt.Errorf("otp presence does not match status %s", b.Status)
	}
	if b.Status.Reached(BookingPickupVerified) != (b.PickupVerifiedAt != nil) {
		return fmt.Errorf("pickup_verified_at does not match status %s", b.Status)
	}
	if b.Status.Reached(BookingCompleted) != (b.ReturnVerifiedAt != nil) {
		return fmt.Errorf("return_verified_at does not match status %s", b.Status)
	}
	return nil
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
