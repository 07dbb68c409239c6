package service

// In-memory repository fakes. Tx-suffixed methods accept a nil *gorm.DB:
// runTx short-circuits when the service is wired without a database.

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"andespos/internal/model"
	"andespos/internal/money"
	"andespos/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeClock hands out strictly increasing timestamps, always ahead of the
// wall clock the services stamp on sessions, so ordering by created_at is
// deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now().UTC()}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// ── CashboxRepository ────────────────────────────────────────────────────────

type fakeCashboxRepo struct {
	sessions map[uuid.UUID]*model.CashSession
}

func newFakeCashboxRepo() *fakeCashboxRepo {
	return &fakeCashboxRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeCashboxRepo) CreateSession(_ context.Context, s *model.CashSession, balances []model.SessionBankBalance) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range balances {
		balances[i].SessionID = s.ID
	}
	s.BankBalances = balances
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeCashboxRepo) FindOpenSessionByBranch(_ context.Context, branchID int) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.BranchID == branchID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCashboxRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeCashboxRepo) FindLastClosedSession(_ context.Context, branchID int) (*model.CashSession, error) {
	var last *model.CashSession
	for _, s := range r.sessions {
		if s.BranchID != branchID || s.Status != model.SessionClosed {
			continue
		}
		if last == nil || s.ClosedAt.After(*last.ClosedAt) {
			last = s
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return last, nil
}

func (r *fakeCashboxRepo) CloseSession(_ context.Context, s *model.CashSession, balances []model.SessionBankBalance) error {
	for i := range balances {
		balances[i].SessionID = s.ID
	}
	stored := r.sessions[s.ID]
	*stored = *s
	stored.BankBalances = append(stored.BankBalances, balances...)
	return nil
}

func (r *fakeCashboxRepo) ListSessions(_ context.Context, branchID, page, limit int) ([]model.CashSession, int64, error) {
	var all []model.CashSession
	for _, s := range r.sessions {
		if branchID > 0 && s.BranchID != branchID {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ repository.CashboxRepository = (*fakeCashboxRepo)(nil)

// ── LedgerRepository ─────────────────────────────────────────────────────────

type fakeLedgerRepo struct {
	clock     *fakeClock
	movements []model.Movement
}

func newFakeLedgerRepo(clock *fakeClock) *fakeLedgerRepo {
	return &fakeLedgerRepo{clock: clock}
}

func (r *fakeLedgerRepo) DB() *gorm.DB { return nil }

func (r *fakeLedgerRepo) Create(_ context.Context, m *model.Movement) error {
	return r.CreateTx(nil, m)
}

func (r *fakeLedgerRepo) CreateTx(_ *gorm.DB, m *model.Movement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = r.clock.next()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeLedgerRepo) List(_ context.Context, q repository.MovementQuery) ([]model.Movement, int64, error) {
	var matched []model.Movement
	for _, m := range r.movements {
		if m.BranchID != q.BranchID {
			continue
		}
		if q.From != nil && m.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !m.CreatedAt.Before(*q.To) {
			continue
		}
		if q.Type != "" && m.Type != q.Type {
			continue
		}
		if q.CashOnly && m.Method != model.MethodCash {
			continue
		}
		if q.AccountID != nil && (m.AccountID == nil || *m.AccountID != *q.AccountID) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeLedgerRepo) ListSince(_ context.Context, branchID int, since time.Time) ([]model.Movement, error) {
	var out []model.Movement
	for _, m := range r.movements {
		if m.BranchID == branchID && !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeLedgerRepo) SumCash(_ context.Context, branchID int, since, until *time.Time) (money.Cents, error) {
	var sum money.Cents
	for i := range r.movements {
		m := &r.movements[i]
		if m.BranchID != branchID || m.Method != model.MethodCash {
			continue
		}
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		if until != nil && !m.CreatedAt.Before(*until) {
			continue
		}
		sum += m.Signed()
	}
	return sum, nil
}

func (r *fakeLedgerRepo) SumAccount(_ context.Context, accountID uuid.UUID, until *time.Time) (money.Cents, error) {
	var sum money.Cents
	for i := range r.movements {
		m := &r.movements[i]
		if m.AccountID == nil || *m.AccountID != accountID {
			continue
		}
		if until != nil && !m.CreatedAt.Before(*until) {
			continue
		}
		sum += m.Signed()
	}
	return sum, nil
}

var _ repository.LedgerRepository = (*fakeLedgerRepo)(nil)

// ── SaleRepository ───────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	clock  *fakeClock
	sales  map[uuid.UUID]*model.Sale
	number int64
}

func newFakeSaleRepo(clock *fakeClock) *fakeSaleRepo {
	return &fakeSaleRepo{clock: clock, sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	s.CreatedAt = r.clock.next()
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) NextNumber(_ *gorm.DB) (int64, error) {
	r.number++
	return r.number, nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) CreatePaymentEntryTx(_ *gorm.DB, e *model.PaymentEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.clock.next()
	for i := range e.Allocations {
		e.Allocations[i].ID = uuid.New()
		e.Allocations[i].PaymentEntryID = e.ID
	}
	sale := r.sales[e.SaleID]
	sale.Payments = append(sale.Payments, *e)
	return nil
}

func (r *fakeSaleRepo) AddReturnedQtyTx(_ *gorm.DB, itemID uuid.UUID, qty int) error {
	for _, s := range r.sales {
		for i := range s.Items {
			if s.Items[i].ID == itemID {
				s.Items[i].ReturnedQty += qty
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) ListReceivables(_ context.Context, clientID *uuid.UUID, page, limit int) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.Balance() <= 0 {
			continue
		}
		if clientID != nil && (s.ClientID == nil || *s.ClientID != *clientID) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── WalletRepository ─────────────────────────────────────────────────────────

type fakeWalletRepo struct {
	clock    *fakeClock
	balances map[uuid.UUID]money.Cents
	entries  []model.WalletEntry
}

func newFakeWalletRepo(clock *fakeClock) *fakeWalletRepo {
	return &fakeWalletRepo{clock: clock, balances: make(map[uuid.UUID]money.Cents)}
}

func (r *fakeWalletRepo) FindByClient(_ context.Context, clientID uuid.UUID) (*model.ClientWallet, error) {
	return &model.ClientWallet{ClientID: clientID, BalanceCents: r.balances[clientID]}, nil
}

func (r *fakeWalletRepo) AddTx(_ *gorm.DB, clientID uuid.UUID, delta money.Cents) error {
	r.balances[clientID] += delta
	return nil
}

func (r *fakeWalletRepo) CreateEntryTx(_ *gorm.DB, e *model.WalletEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.clock.next()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeWalletRepo) ListEntries(_ context.Context, clientID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error) {
	var out []model.WalletEntry
	for _, e := range r.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

var _ repository.WalletRepository = (*fakeWalletRepo)(nil)

// ── CreditNoteRepository ─────────────────────────────────────────────────────

type fakeCreditNoteRepo struct {
	clock  *fakeClock
	notes  map[uuid.UUID]*model.CreditNote
	number int64
}

func newFakeCreditNoteRepo(clock *fakeClock) *fakeCreditNoteRepo {
	return &fakeCreditNoteRepo{clock: clock, notes: make(map[uuid.UUID]*model.CreditNote)}
}

func (r *fakeCreditNoteRepo) CreateTx(_ *gorm.DB, n *model.CreditNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	for i := range n.Items {
		n.Items[i].ID = uuid.New()
		n.Items[i].CreditNoteID = n.ID
	}
	for i := range n.Refunds {
		n.Refunds[i].ID = uuid.New()
		n.Refunds[i].CreditNoteID = n.ID
	}
	n.CreatedAt = r.clock.next()
	r.notes[n.ID] = n
	return nil
}

func (r *fakeCreditNoteRepo) NextNumber(_ *gorm.DB) (int64, error) {
	r.number++
	return r.number, nil
}

func (r *fakeCreditNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CreditNote, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (r *fakeCreditNoteRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.CreditNote, error) {
	var out []model.CreditNote
	for _, n := range r.notes {
		if n.SaleID == saleID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ repository.CreditNoteRepository = (*fakeCreditNoteRepo)(nil)

// ── AccountRepository ────────────────────────────────────────────────────────

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*model.BankAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*model.BankAccount)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *model.BankAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BankAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAccountRepo) ListActive(_ context.Context) ([]model.BankAccount, error) {
	var out []model.BankAccount
	for _, a := range r.accounts {
		if a.Active {
			out = append(out, *a)
		}
	}
	return out, nil
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

// ── ClientRepository ─────────────────────────────────────────────────────────

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *fakeClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeClientRepo) List(_ context.Context, page, limit int) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

var _ repository.ClientRepository = (*fakeClientRepo)(nil)

// ── UserRepository ───────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
