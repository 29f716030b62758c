package booking

import (
	"errors"
	"time"
)

type SubmitBookingReq struct {
	CameraID   string `json:"camera_id" validate:"required"`
	PickupDate string `json:"pickup_date" validate:"required"`
	ReturnDate string `json:"return_date" validate:"required"`
}

// VerifyOTPReq is the handoff code typed in by the renter or lender.
type VerifyOTPReq struct {
	OTP string `json:"otp" validate:"required,otp"`
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("dates must be YYYY-MM-DD or RFC3339")
}
