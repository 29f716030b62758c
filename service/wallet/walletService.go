package walletsvc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"camrental/model"
	wrepo "camrental/repository/wallet"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	historyLimit = 20
	maxAmount    = 1_000_000
)

type Service interface {
	Wallet(ctx context.Context, userID string) (*model.Wallet, error)
	Deposit(ctx context.Context, userID string, amount float64) (*model.Transaction, error)
	Withdraw(ctx context.Context, userID string, amount float64) (*model.Transaction, error)
	// Settle charges the renter and pays the lender for a returned booking.
	// Settling the same booking twice is a no-op.
	Settle(ctx context.Context, s model.Settlement) error
}

type service struct{ r wrepo.Repo }

func New(r wrepo.Repo) Service { return &service{r: r} }

func (s *service) Wallet(ctx context.Context, userID string) (*model.Wallet, error) {
	bal, err := s.r.Balance(ctx, userID)
	if errors.Is(err, wrepo.ErrUserNotFound) {
		return nil, wrap(ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	txs, err := s.r.ListTransactions(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return &model.Wallet{Balance: bal, Transactions: txs}, nil
}

func (s *service) Deposit(ctx context.Context, userID string, amount float64) (*model.Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	return s.post(ctx, userID, model.TxDeposit, cents(amount), "Wallet deposit")
}

func (s *service) Withdraw(ctx context.Context, userID string, amount float64) (*model.Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	return s.post(ctx, userID, model.TxWithdrawal, -cents(amount), "Wallet withdrawal")
}

// post applies a single signed movement to one wallet.
func (s *service) post(ctx context.Context, userID string, typ model.TransactionType, delta float64, desc string) (*model.Transaction, error) {
	var t *model.Transaction
	err := s.r.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		t, err = s.apply(ctx, tx, userID, nil, typ, delta, desc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Settle(ctx context.Context, st model.Settlement) error {
	if st.BookingID == "" || st.RenterID == "" || st.LenderID == "" {
		return errors.New("settlement: missing booking or party")
	}
	if st.Total < 0 || st.Subtotal < 0 {
		return wrap(ErrInvalidAmount, "settlement amounts must be non-negative")
	}
	bookingID := st.BookingID

	err := s.r.WithTx(ctx, func(tx pgx.Tx) error {
		done, err := s.r.HasSettlement(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		// lock both wallets in a stable order so concurrent settlements
		// between the same pair cannot deadlock
		first, second := st.RenterID, st.LenderID
		if second < first {
			first, second = second, first
		}
		for _, id := range []string{first, second} {
			if _, err := s.r.GetUserBalanceForUpdate(ctx, tx, id); err != nil {
				return fmt.Errorf("lock %s: %w", id, err)
			}
		}

		desc := "Camera rental " + bookingID
		if _, err := s.apply(ctx, tx, st.RenterID, &bookingID, model.TxBookingCharge, -cents(st.Total), desc); err != nil {
			return err
		}
		_, err = s.apply(ctx, tx, st.LenderID, &bookingID, model.TxBookingPayout, cents(st.LenderPayout()), desc)
		return err
	})
	if isUniqueViolation(err) {
		// a concurrent settlement of the same booking won the race
		return nil
	}
	return err
}

func (s *service) apply(ctx context.Context, tx pgx.Tx, userID string, bookingID *string, typ model.TransactionType, delta float64, desc string) (*model.Transaction, error) {
	bal, err := s.r.GetUserBalanceForUpdate(ctx, tx, userID)
	if errors.Is(err, wrepo.ErrUserNotFound) {
		return nil, wrap(ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	next := cents(bal + delta)
	if next < 0 {
		return nil, wrap(ErrInsufficientFunds, "insufficient funds")
	}
	if err := s.r.UpdateUserBalance(ctx, tx, userID, next); err != nil {
		return nil, err
	}
	t := &model.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		BookingID:    bookingID,
		Type:         typ,
		Amount:       delta,
		BalanceAfter: next,
		Description:  desc,
	}
	if err := s.r.InsertTransaction(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func checkAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 || a > maxAmount {
		return wrap(ErrInvalidAmount, "amount must be greater than 0 and at most 1000000")
	}
	if cents(a) == 0 {
		return wrap(ErrInvalidAmount, "amount is below one cent")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func cents(v float64) float64 { return math.Round(v*100) / 100 }
