//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/adapter"
	"agency-payments/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Order

	SaveFunc        func(ctx context.Context, tx repository.Tx, o *model.Order) error
	ApplyStatusFunc func(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus, paymentMethod *string, paidAt, expiredAt *time.Time) (bool, error)
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.Order)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) SetCheckoutRef(ctx context.Context, tx repository.Tx, id, transactionID, checkoutURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.ProviderTransactionID = &transactionID
	o.ProviderCheckoutURL = &checkoutURL
	o.UpdatedAt = time.Now()
	return nil
}

func (m *MockOrderRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = model.OrderStatusFailed
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyStatus mirrors the SQL guard in the Postgres repo: last-write-wins,
// except a terminal order never regresses to pending, and paid_at is only
// set once.
func (m *MockOrderRepo) ApplyStatus(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus, paymentMethod *string, paidAt, expiredAt *time.Time) (bool, error) {
	if m.ApplyStatusFunc != nil {
		return m.ApplyStatusFunc(ctx, tx, id, status, paymentMethod, paidAt, expiredAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return false, nil
	}
	if o.Status.Terminal() && status == model.OrderStatusPending {
		return false, nil
	}
	o.Status = status
	if paymentMethod != nil {
		o.PaymentMethod = paymentMethod
	}
	if paidAt != nil && o.PaidAt == nil {
		o.PaidAt = paidAt
	}
	if expiredAt != nil && o.ExpiredAt == nil {
		o.ExpiredAt = expiredAt
	}
	o.UpdatedAt = time.Now()
	return true, nil
}

// Get returns the stored order for assertions.
func (m *MockOrderRepo) Get(id string) *model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

// Len returns the number of persisted orders.
func (m *MockOrderRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// ---- Mock PackageRepository ----

type MockPackageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PricingPackage

	FindErr error
}

var _ repository.PackageRepository = (*MockPackageRepo)(nil)

func NewMockPackageRepo() *MockPackageRepo {
	return &MockPackageRepo{store: make(map[string]*model.PricingPackage)}
}

func (m *MockPackageRepo) Put(p *model.PricingPackage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
}

func (m *MockPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPackage, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok || !p.Active {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ---- Mock ActivityLogRepository ----

type MockActivityLogRepo struct {
	mu      sync.Mutex
	Entries []model.ActivityLog

	InsertErr  error
	InsertFunc func(ctx context.Context, tx repository.Tx, entry *model.ActivityLog) error
}

var _ repository.ActivityLogRepository = (*MockActivityLogRepo)(nil)

func NewMockActivityLogRepo() *MockActivityLogRepo {
	return &MockActivityLogRepo{}
}

func (m *MockActivityLogRepo) Insert(ctx context.Context, tx repository.Tx, entry *model.ActivityLog) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, tx, entry); err != nil {
			return err
		}
	}
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *entry)
	return nil
}

// ByAction returns the recorded entries matching the given action.
func (m *MockActivityLogRepo) ByAction(action string) []model.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ActivityLog
	for _, e := range m.Entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// ---- Mock LoginAttemptRepository ----

/// MockLoginAttemptRepo reproduces the Postgres limiter semantics in memory:
// window/lock expiry resets the counter, and the threshold decision happens
// under the same lock as the increment.
type MockLoginAttemptRepo struct {
	mu    sync.Mutex
	store map[string]*model.LoginAttempt

	Now func() time.Time
}

var _ repository.LoginAttemptRepository = (*MockLoginAttemptRepo)(nil)

func NewMockLoginAttemptRepo() *MockLoginAttemptRepo {
	return &MockLoginAttemptRepo{store: make(map[string]*model.LoginAttempt), Now: time.Now}
}

func (m *MockLoginAttemptRepo) Status(ctx context.Context, tx repository.Tx, address string) (*model.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[address]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockLoginAttemptRepo) RecordFailure(ctx context.Context, tx repository.Tx, address string, maxAttempts int, window time.Duration) (*model.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	rec, ok := m.store[address]
	if !ok || now.Sub(rec.FirstAttempt) > window || (rec.LockedUntil != nil && !now.Before(*rec.LockedUntil)) {
		rec = &model.LoginAttempt{Address: address, FirstAttempt: now}
		m.store[address] = rec
	}
	rec.FailedAttempts++
	if rec.FailedAttempts >= maxAttempts {
		until := now.Add(window)
		rec.LockedUntil = &until
	}
	cp := *rec
	return &cp, nil
}

func (m *MockLoginAttemptRepo) Clear(ctx context.Context, tx repository.Tx, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, address)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs the function immediately without a real transaction unless a
// test installs its own behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	GatewayName           string
	CreateTransactionFunc func(ctx context.Context, o *model.Order) (*adapter.CheckoutSession, error)

	mu    sync.Mutex
	Calls []model.Order
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string {
	if m.GatewayName == "" {
		return "midtrans"
	}
	return m.GatewayName
}

func (m *MockPaymentGateway) CreateTransaction(ctx context.Context, o *model.Order) (*adapter.CheckoutSession, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, *o)
	m.mu.Unlock()
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, o)
	}
	return &adapter.CheckoutSession{TransactionID: "txn-" + o.ID, RedirectURL: "https://pay.example.com/" + o.ID}, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
