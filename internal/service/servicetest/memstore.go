// Package servicetest provides an in-memory service.Store for tests
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bingo_ledger/internal/domain"
	"bingo_ledger/internal/service"

	"github.com/shopspring/decimal"
)

type state struct {
	users  map[uint]domain.User
	txs    []domain.GameTransaction
	cards  map[string]domain.BingoCard
	nextID uint
	nextTx uint
}

func (s *state) clone() *state {
	c := &state{
		users:  make(map[uint]domain.User, len(s.users)),
		txs:    append([]domain.GameTransaction(nil), s.txs...),
		cards:  make(map[string]domain.BingoCard, len(s.cards)),
		nextID: s.nextID,
		nextTx: s.nextTx,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.cards {
		c.cards[k] = v
	}
	return c
}

// MemStore implements service.Store in memory. Transactions are serialised and
// apply atomically: a failing WithinTx leaves no trace. Writes made outside a
// transaction wait for the running one to commit, so neither overwrites the other.
// Inside fn only the tx store may be written; writing the outer store there deadlocks.
type MemStore struct {
	mu   sync.Mutex // Guards st
	txMu sync.Mutex // Held by WithinTx and by every write
	st   *state
}

// lockWrite waits for any running transaction, then locks the state
func (m *MemStore) lockWrite() (unlock func()) {
	m.txMu.Lock()
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		m.txMu.Unlock()
	}
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{st: &state{users: map[uint]domain.User{}, cards: map[string]domain.BingoCard{}}}
}

// Users implements service.Store
func (m *MemStore) Users() service.UserRepository { return &memUsers{m: m} }

// Transactions implements service.Store
func (m *MemStore) Transactions() service.TransactionRepository { return &memTxs{m: m} }

// Cards implements service.Store
func (m *MemStore) Cards() service.CardRepository { return &memCards{m: m} }

// WithinTx runs fn against a private copy that replaces the live state only on success
func (m *MemStore) WithinTx(ctx context.Context, fn func(tx service.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	scratch := &MemStore{st: m.st.clone()}
	m.mu.Unlock()

	if err := fn(scratch); err != nil {
		return err
	}

	m.mu.Lock()
	m.st = scratch.st
	m.mu.Unlock()
	return nil
}

// Seed inserts a user as is, assigning an id when missing
func (m *MemStore) Seed(u domain.User) *domain.User {
	defer m.lockWrite()()
	if u.ID == 0 {
		m.st.nextID++
		u.ID = m.st.nextID
	} else if u.ID > m.st.nextID {
		m.st.nextID = u.ID
	}
	m.st.users[u.ID] = u
	return &u
}

// User returns a copy of a stored user
func (m *MemStore) User(id uint) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[id]
	return u, ok
}

// TransactionCount returns how many ledger rows exist
func (m *MemStore) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.txs)
}

// CardsOwnedBy returns the codes of every card set owned by ownerID
func (m *MemStore) CardsOwnedBy(ownerID uint) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var codes []string
	for code, c := range m.st.cards {
		if c.OwnerID == ownerID {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

type memUsers struct{ m *MemStore }

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	defer r.m.lockWrite()()
	for _, u := range r.m.st.users {
		if u.Phone == user.Phone {
			return fmt.Errorf("phone %s: %w", user.Phone, domain.ErrDuplicate)
		}
	}
	r.m.st.nextID++
	user.ID = r.m.st.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.m.st.users[user.ID] = *user
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id uint) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.st.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) List(_ context.Context, filter service.UserFilter) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.User
	for _, u := range r.m.st.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.ParentID != nil && (u.ParentID == nil || *u.ParentID != *filter.ParentID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) Update(_ context.Context, id uint, fields map[string]any) error {
	defer r.m.lockWrite()()
	u, ok := r.m.st.users[id]
	if !ok {
		return nil
	}
	for col, v := range fields {
		switch col {
		case "phone":
			phone := v.(string)
			for _, other := range r.m.st.users {
				if other.ID != id && other.Phone == phone {
					return fmt.Errorf("phone %s: %w", phone, domain.ErrDuplicate)
				}
			}
			u.Phone = phone
		case "password":
			u.Password = v.(string)
		case "name":
			u.Name = v.(string)
		case "region":
			u.Region = v.(string)
		case "city":
			u.City = v.(string)
		case "role":
			u.Role = v.(domain.Role)
		case "parent_id":
			p := v.(uint)
			u.ParentID = &p
		case "created_by":
			c := v.(uint)
			u.CreatedBy = &c
		case "remaining_balance":
			u.RemainingBalance = v.(decimal.Decimal)
		case "total_balance":
			u.TotalBalance = v.(decimal.Decimal)
		default:
			return fmt.Errorf("unknown column %q", col)
		}
	}
	u.UpdatedAt = time.Now()
	r.m.st.users[id] = u
	return nil
}

func (r *memUsers) Debit(_ context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	defer r.m.lockWrite()()
	u, ok := r.m.st.users[id]
	if !ok || u.RemainingBalance.LessThan(amount) {
		return decimal.Zero, false, nil
	}
	u.RemainingBalance = u.RemainingBalance.Sub(amount)
	r.m.st.users[id] = u
	return u.RemainingBalance, true, nil
}

func (r *memUsers) SetBingoCardCode(_ context.Context, id uint, code string) error {
	defer r.m.lockWrite()()
	u, ok := r.m.st.users[id]
	if !ok {
		return fmt.Errorf("user with id %d not found", id)
	}
	u.BingoCardCode = &code
	r.m.st.users[id] = u
	return nil
}

type memTxs struct{ m *MemStore }

func (r *memTxs) Create(_ context.Context, tx *domain.GameTransaction) error {
	defer r.m.lockWrite()()
	r.m.st.nextTx++
	tx.ID = r.m.st.nextTx
	tx.CreatedAt = time.Now().UnixMilli()
	r.m.st.txs = append(r.m.st.txs, *tx)
	return nil
}

func (r *memTxs) List(_ context.Context, filter service.TransactionFilter) ([]domain.GameTransaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.GameTransaction
	for i := len(r.m.st.txs) - 1; i >= 0; i-- { // Newest first
		tx := r.m.st.txs[i]
		if filter.OwnerID != nil && tx.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, tx)
	}
	if filter.Page.Limit > 0 {
		if filter.Page.Offset >= len(out) {
			return nil, nil
		}
		end := filter.Page.Offset + filter.Page.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[filter.Page.Offset:end]
	}
	return out, nil
}

type memCards struct{ m *MemStore }

func (r *memCards) Create(_ context.Context, card *domain.BingoCard) error {
	defer r.m.lockWrite()()
	if _, taken := r.m.st.cards[card.ID]; taken {
		return fmt.Errorf("card %s: %w", card.ID, domain.ErrDuplicate)
	}
	for _, c := range r.m.st.cards {
		if c.OwnerID == card.OwnerID {
			return fmt.Errorf("owner %d: %w", card.OwnerID, domain.ErrDuplicate)
		}
	}
	card.CreatedAt = time.Now()
	r.m.st.cards[card.ID] = *card
	return nil
}

func (r *memCards) GetByID(_ context.Context, id string) (*domain.BingoCard, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.st.cards[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCards) Exists(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.st.cards[id]
	return ok, nil
}

func (r *memCards) DeleteByOwner(_ context.Context, ownerID uint) (int64, error) {
	defer r.m.lockWrite()()
	var n int64
	for code, c := range r.m.st.cards {
		if c.OwnerID == ownerID {
			delete(r.m.st.cards, code)
			n++
		}
	}
	return n, nil
}
