package walletsvc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"camrental/model"
	wrepo "camrental/repository/wallet"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps balances in memory. WithTx serializes callers and restores
// the snapshot when fn fails, which is enough to mimic a rolled back tx.
type fakeRepo struct {
	mu       sync.Mutex
	balances map[string]float64
	txs      []model.Transaction

	insertFn func(t *model.Transaction) error
}

var _ wrepo.Repo = (*fakeRepo)(nil)

func newFake(bal map[string]float64) *fakeRepo { return &fakeRepo{balances: bal} }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	balances := make(map[string]float64, len(f.balances))
	for k, v := range f.balances {
		balances[k] = v
	}
	n := len(f.txs)
	if err := fn(nil); err != nil {
		f.balances = balances
		f.txs = f.txs[:n]
		return err
	}
	return nil
}

func (f *fakeRepo) Balance(ctx context.Context, userID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[userID]
	if !ok {
		return 0, wrepo.ErrUserNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Transaction
	for i := len(f.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.txs[i].UserID == userID {
			out = append(out, f.txs[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) GetUserBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (float64, error) {
	b, ok := f.balances[userID]
	if !ok {
		return 0, wrepo.ErrUserNotFound
	}
	return b, nil
}

func (f *fakeRepo) UpdateUserBalance(ctx context.Context, tx pgx.Tx, userID string, nb float64) error {
	f.balances[userID] = nb
	return nil
}

func (f *fakeRepo) InsertTransaction(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	if f.insertFn != nil {
		if err := f.insertFn(t); err != nil {
			return err
		}
	}
	f.txs = append(f.txs, *t)
	return nil
}

func (f *fakeRepo) HasSettlement(ctx context.Context, tx pgx.Tx, bookingID string) (bool, error) {
	for _, t := range f.txs {
		if t.BookingID != nil && *t.BookingID == bookingID && t.Type == model.TxBookingCharge {
			return true, nil
		}
	}
	return false, nil
}

func settlement() model.Settlement {
	return model.Settlement{
		BookingID: "b1", RenterID: "renter", LenderID: "lender",
		Subtotal: 100, PlatformFee: 10, Tax: 5, Total: 115,
	}
}

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	r := newFake(map[string]float64{"u1": 0})
	s := New(r)

	tx, err := s.Deposit(ctx, "u1", 50)
	require.NoError(t, err)
	require.Equal(t, model.TxDeposit, tx.Type)
	require.Equal(t, 50.0, tx.BalanceAfter)

	tx, err = s.Withdraw(ctx, "u1", 20)
	require.NoError(t, err)
	require.Equal(t, -20.0, tx.Amount)
	require.Equal(t, 30.0, tx.BalanceAfter)

	_, err = s.Withdraw(ctx, "u1", 31)
	require.Equal(t, ErrInsufficientFunds, Code(err))

	w, err := s.Wallet(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 30.0, w.Balance)
	require.Len(t, w.Transactions, 2)
	require.Equal(t, model.TxWithdrawal, w.Transactions[0].Type)
}

func TestInvalidAmounts(t *testing.T) {
	s := New(newFake(map[string]float64{"u1": 10}))
	for _, a := range []float64{0, -5, 0.001, 2_000_000} {
		_, err := s.Deposit(context.Background(), "u1", a)
		require.Equal(t, ErrInvalidAmount, Code(err), "amount %v", a)
	}
}

func TestWallet_UnknownUser(t *testing.T) {
	s := New(newFake(map[string]float64{}))
	_, err := s.Wallet(context.Background(), "ghost")
	require.Equal(t, ErrNotFound, Code(err))

	_, err = s.Deposit(context.Background(), "ghost", 5)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestWallet_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	s := New(newFake(map[string]float64{"u1": 0}))
	for i := 0; i < 25; i++ {
		_, err := s.Deposit(ctx, "u1", 1)
		require.NoError(t, err)
	}
	w, err := s.Wallet(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, w.Transactions, historyLimit)
	require.Equal(t, 25.0, w.Balance)
}

func TestSettle_MovesFundsOnce(t *testing.T) {
	ctx := context.Background()
	r := newFake(map[string]float64{"renter": 200, "lender": 0})
	s := New(r)

	require.NoError(t, s.Settle(ctx, settlement()))
	require.Equal(t, 85.0, r.balances["renter"])
	require.Equal(t, 100.0, r.balances["lender"])
	require.Len(t, r.txs, 2)

	// retry after a crash between settle and the status write
	require.NoError(t, s.Settle(ctx, settlement()))
	require.Equal(t, 85.0, r.balances["renter"])
	require.Len(t, r.txs, 2)
}

func TestSettle_InsufficientFundsRollsBack(t *testing.T) {
	r := newFake(map[string]float64{"renter": 100, "lender": 0})
	s := New(r)

	err := s.Settle(context.Background(), settlement())
	require.Equal(t, ErrInsufficientFunds, Code(err))
	require.Equal(t, 100.0, r.balances["renter"])
	require.Equal(t, 0.0, r.balances["lender"])
	require.Empty(t, r.txs)
}

func TestSettle_PayoutFailureRollsBack(t *testing.T) {
	r := newFake(map[string]float64{"renter": 200, "lender": 0})
	r.insertFn = func(t *model.Transaction) error {
		if t.Type == model.TxBookingPayout {
			return errors.New("disk full")
		}
		return nil
	}
	s := New(r)

	require.Error(t, s.Settle(context.Background(), settlement()))
	require.Equal(t, 200.0, r.balances["renter"])
	require.Empty(t, r.txs)
}

func TestSettle_ConcurrentDuplicateIsSuccess(t *testing.T) {
	r := newFake(map[string]float64{"renter": 200, "lender": 0})
	r.insertFn = func(t *model.Transaction) error {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "transactions_settlement_key"}
	}
	s := New(r)
	require.NoError(t, s.Settle(context.Background(), settlement()))
}

func TestSettle_MissingParty(t *testing.T) {
	s := New(newFake(nil))
	st := settlement()
	st.LenderID = ""
	require.Error(t, s.Settle(context.Background(), st))
}
