package bookingrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"camrental/model"
)

// Memory is an in-process Repo. It keeps its own copies of every booking so
// callers can never mutate stored state through a returned pointer.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]*model.Booking
}

var _ Repo = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{rows: make(map[string]*model.Booking)} }

func (m *Memory) Insert(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[b.ID]; ok {
		return fmt.Errorf("booking %s already exists", b.ID)
	}
	m.rows[b.ID] = b.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (m *Memory) CompareAndSwap(_ context.Context, expected model.BookingStatus, next *model.Booking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[next.ID]
	if !ok || cur.Status != expected {
		return false, nil
	}
	nc := next.Clone()
	upd := cur.Clone()
	upd.Status = nc.Status
	upd.PickupOTP = nc.PickupOTP
	upd.ReturnOTP = nc.ReturnOTP
	upd.PickupVerifiedAt = nc.PickupVerifiedAt
	upd.ReturnVerifiedAt = nc.ReturnVerifiedAt
	upd.UpdatedAt = nc.UpdatedAt
	m.rows[next.ID] = upd
	return true, nil
}

func (m *Memory) ListByRenter(_ context.Context, renterID string) ([]model.Booking, error) {
	return m.filter(func(b *model.Booking) bool { return b.RenterID == renterID }), nil
}

func (m *Memory) ListByLender(_ context.Context, lenderID string) ([]model.Booking, error) {
	return m.filter(func(b *model.Booking) bool { return b.LenderID == lenderID }), nil
}

func (m *Memory) ListAll(_ context.Context) ([]model.Booking, error) {
	return m.filter(func(*model.Booking) bool { return true }), nil
}

func (m *Memory) Totals(_ context.Context) ([]StatusTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := map[model.BookingStatus]int{}
	var out []StatusTotal
	for _, b := range m.rows {
		i, ok := idx[b.Status]
		if !ok {
			i = len(out)
			idx[b.Status] = i
			out = append(out, StatusTotal{Status: b.Status})
		}
		out[i].Count++
		out[i].Fees += b.PlatformFee
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (m *Memory) filter(keep func(*model.Booking) bool) []model.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for _, b := range m.rows {
		if keep(b) {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
