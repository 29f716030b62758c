// model/wallet.go
package model

import "time"

type TransactionType string

const (
	TxDeposit       TransactionType = "deposit"
	TxWithdrawal    TransactionType = "withdrawal"
	TxBookingCharge TransactionType = "booking_charge"
	TxBookingPayout TransactionType = "booking_payout"
	TxRefund        TransactionType = "refund"
)

type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	BookingID    *string         `json:"booking_id,omitempty"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	BalanceAfter float64         `json:"balance_after"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Settlement is what the ledger moves when a rental is returned.
// The renter pays Total; the lender receives Total minus the platform's cut
// and tax.
type Settlement struct {
	BookingID   string
	RenterID    string
	LenderID    string
	Subtotal    float64
	PlatformFee float64
	Tax         float64
	Total       float64
}

func (s Settlement) LenderPayout() float64 { return s.Subtotal }

type Wallet struct {
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}
