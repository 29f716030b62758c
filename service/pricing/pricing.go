// Package pricing turns a daily rate and a date range into the amounts that
// are persisted on a booking. Results are deterministic so stored bookings
// can always be re-derived for audit.
package pricing

import (
	"errors"
	"math"
	"time"
)

const (
	PlatformFeeRate = 0.10
	// TaxRate applies to the subtotal only, not to subtotal+fee.
	TaxRate = 0.05
)

var (
	ErrInvalidRange = errors.New("return date must be after pickup date")
	ErrInvalidRate  = errors.New("daily rate must be positive")
)

type Quote struct {
	Days        int     `json:"days"`
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// Days is the number of started 24h periods between pickup and return.
func Days(pickup, ret time.Time) int {
	d := ret.Sub(pickup).Hours() / 24
	return int(math.Ceil(d))
}

func Compute(dailyRate float64, pickup, ret time.Time) (Quote, error) {
	if dailyRate <= 0 || math.IsNaN(dailyRate) || math.IsInf(dailyRate, 0) {
		return Quote{}, ErrInvalidRate
	}
	days := Days(pickup, ret)
	if days <= 0 {
		return Quote{}, ErrInvalidRange
	}

	subtotal := cents(float64(days) * dailyRate)
	fee := cents(subtotal * PlatformFeeRate)
	tax := cents(subtotal * TaxRate)
	return Quote{
		Days:        days,
		Subtotal:    subtotal,
		PlatformFee: fee,
		Tax:         tax,
		Total:       cents(subtotal + fee + tax),
	}, nil
}

func cents(v float64) float64 { return math.Round(v*100) / 100 }
