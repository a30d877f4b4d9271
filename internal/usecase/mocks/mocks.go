package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ErrTxClosed is returned when a finished MockTransaction is committed again.
var ErrTxClosed = errors.New("transaction already closed")

// Store is an in-memory database shared by the mock repositories.
// Writes are staged on the MockTransaction and applied on Commit. Row locks are
// held from the first FOR UPDATE read until Commit or Rollback, like Postgres.
type Store struct {
	mu        sync.Mutex
	wallets   map[string]*domain.Wallet
	entries   map[string]*domain.Entry
	order     []string
	recharges map[string]*domain.RechargeRequest
	users     map[string]*domain.User
	outbox    []*domain.OutboxEvent
	audits    []*domain.AuditLog
	locks     map[string]chan struct{}
	commits   int
	rollbacks int

	// LockTimeout emulates lock_timeout: waits longer than this fail with domain.ErrBusy.
	LockTimeout time.Duration
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets:   make(map[string]*domain.Wallet),
		entries:   make(map[string]*domain.Entry),
		recharges: make(map[string]*domain.RechargeRequest),
		users:     make(map[string]*domain.User),
		locks:     make(map[string]chan struct{}),
	}
}

func (s *Store) lockFor(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *Store) apply(t *MockTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, w := range t.wallets {
		cp := *w
		s.wallets[userID] = &cp
	}
	for _, e := range t.entries {
		cp := *e
		s.entries[e.ID] = &cp
		s.order = append(s.order, e.ID)
	}
	for id, status := range t.statuses {
		if e, ok := s.entries[id]; ok {
			e.Status = status
		}
	}
	for id, r := range t.recharges {
		cp := *r
		s.recharges[id] = &cp
	}
	s.outbox = append(s.outbox, t.outbox...)
	s.audits = append(s.audits, t.audits...)
	s.commits++
}

// SeedWallet stores a committed wallet.
func (s *Store) SeedWallet(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.wallets[w.UserID] = &cp
}

// SeedEntry stores a committed entry.
func (s *Store) SeedEntry(e *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries[e.ID] = &cp
	s.order = append(s.order, e.ID)
}

// SeedRecharge stores a committed recharge request.
func (s *Store) SeedRecharge(r *domain.RechargeRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.recharges[r.ID] = &cp
}

// Wallet returns a copy of the committed wallet of userID, or nil.
func (s *Store) Wallet(userID string) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walletLocked(userID)
}

func (s *Store) walletLocked(userID string) *domain.Wallet {
	w, ok := s.wallets[userID]
	if !ok {
		return nil
	}
	cp := *w
	return &cp
}

// Entries returns copies of the committed entries of a wallet in posting order.
// An empty walletID returns every entry.
func (s *Store) Entries(walletID string) []*domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Entry
	for _, id := range s.order {
		e := s.entries[id]
		if walletID == "" || e.WalletID == walletID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

// Entry returns a copy of a committed entry, or nil.
func (s *Store) Entry(id string) *domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// Recharge returns a copy of a committed recharge request, or nil.
func (s *Store) Recharge(id string) *domain.RechargeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recharges[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// OutboxEvents returns the committed outbox events.
func (s *Store) OutboxEvents() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), s.outbox...)
}

// AuditLogs returns the committed audit logs.
func (s *Store) AuditLogs() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.audits...)
}

// Commits returns how many transactions committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Rollbacks returns how many transactions rolled back without committing.
func (s *Store) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	store *Store

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager(store *Store) *MockTransactionManager {
	return &MockTransactionManager{store: store}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return newMockTransaction(m.store), nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	store     *Store
	held      map[string]chan struct{}
	wallets   map[string]*domain.Wallet
	entries   []*domain.Entry
	statuses  map[string]domain.EntryStatus
	recharges map[string]*domain.RechargeRequest
	outbox    []*domain.OutboxEvent
	audits    []*domain.AuditLog
	done      bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func newMockTransaction(store *Store) *MockTransaction {
	return &MockTransaction{
		store:     store,
		held:      make(map[string]chan struct{}),
		wallets:   make(map[string]*domain.Wallet),
		statuses:  make(map[string]domain.EntryStatus),
		recharges: make(map[string]*domain.RechargeRequest),
	}
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	if m.done {
		return ErrTxClosed
	}

	m.store.apply(m)
	m.done = true
	m.release()
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		if err := m.RollbackFunc(ctx); err != nil {
			return err
		}
	}
	if m.done {
		return nil
	}

	m.done = true
	m.release()

	m.store.mu.Lock()
	m.store.rollbacks++
	m.store.mu.Unlock()
	return nil
}

func (m *MockTransaction) acquire(ctx context.Context, key string) error {
	if _, ok := m.held[key]; ok {
		return nil
	}

	ch := m.store.lockFor(key)

	var timeout <-chan time.Time
	if m.store.LockTimeout > 0 {
		timer := time.NewTimer(m.store.LockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		m.held[key] = ch
		return nil
	case <-timeout:
		return fmt.Errorf("%w: lock timeout on %s", domain.ErrBusy, key)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockTransaction) release() {
	for key, ch := range m.held {
		<-ch
		delete(m.held, key)
	}
}

func asTx(tx usecase.Transaction) *MockTransaction {
	return tx.(*MockTransaction)
}

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	store *Store

	GetByUserIDFunc    func(ctx context.Context, userID string) (*domain.Wallet, error)
	UpdateBalancesFunc func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
}

func NewMockWalletRepository(store *Store) *MockWalletRepository {
	return &MockWalletRepository{store: store}
}

func (m *MockWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	t := asTx(tx)
	if err := t.acquire(ctx, "wallet:"+wallet.UserID); err != nil {
		return err
	}
	if _, ok := t.wallets[wallet.UserID]; ok {
		return nil
	}
	if m.store.Wallet(wallet.UserID) != nil {
		return nil
	}

	cp := *wallet
	t.wallets[wallet.UserID] = &cp
	return nil
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	if w := m.store.Wallet(userID); w != nil {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	t := asTx(tx)
	if w, ok := t.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	if m.store.Wallet(userID) == nil {
		return nil, domain.ErrWalletNotFound
	}

	if err := t.acquire(ctx, "wallet:"+userID); err != nil {
		return nil, err
	}
	return m.store.Wallet(userID), nil
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, wallet)
	}
	t := asTx(tx)
	if _, ok := t.held["wallet:"+wallet.UserID]; !ok {
		return fmt.Errorf("wallet %s updated without row lock", wallet.UserID)
	}

	cp := *wallet
	t.wallets[wallet.UserID] = &cp
	return nil
}

func (m *MockWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	wallets := make([]*domain.Wallet, 0, len(m.store.wallets))
	for userID := range m.store.wallets {
		wallets = append(wallets, m.store.walletLocked(userID))
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })

	return page(wallets, limit, offset), nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	store *Store

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus) error
}

func NewMockEntryRepository(store *Store) *MockEntryRepository {
	return &MockEntryRepository{store: store}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	t := asTx(tx)
	cp := *entry
	t.entries = append(t.entries, &cp)
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if e := m.store.Entry(id); e != nil {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	t := asTx(tx)
	if m.store.Entry(id) == nil {
		return nil, domain.ErrEntryNotFound
	}
	if err := t.acquire(ctx, "entry:"+id); err != nil {
		return nil, err
	}

	e := m.store.Entry(id)
	if status, ok := t.statuses[id]; ok {
		e.Status = status
	}
	return e, nil
}

func (m *MockEntryRepository) HasReversal(ctx context.Context, tx usecase.Transaction, originalID string) (bool, error) {
	t := asTx(tx)
	candidates := append(m.store.Entries(""), t.entries...)
	for _, e := range candidates {
		if e.ReversalOf != nil && *e.ReversalOf == originalID && e.Status != domain.EntryStatusFailed {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockEntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status)
	}
	asTx(tx).statuses[id] = status
	return nil
}

func (m *MockEntryRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Entry, error) {
	return page(m.store.Entries(walletID), limit, offset), nil
}

func (m *MockEntryRepository) GetLatestAt(ctx context.Context, walletID string, at time.Time) (*domain.Entry, error) {
	var latest *domain.Entry
	for _, e := range m.store.Entries(walletID) {
		if e.Status == domain.EntryStatusPending || e.CreatedAt.After(at) {
			continue
		}
		latest = e
	}
	if latest == nil {
		return nil, domain.ErrEntryNotFound
	}
	return latest, nil
}

// MockRechargeRepository is a mock implementation of RechargeRepository.
type MockRechargeRepository struct {
	store *Store

	CountPendingFunc func(ctx context.Context, tx usecase.Transaction, userID string) (int, error)
}

func NewMockRechargeRepository(store *Store) *MockRechargeRepository {
	return &MockRechargeRepository{store: store}
}

// view merges committed requests with those staged on tx.
func (m *MockRechargeRepository) view(t *MockTransaction) map[string]*domain.RechargeRequest {
	m.store.mu.Lock()
	out := make(map[string]*domain.RechargeRequest, len(m.store.recharges))
	for id, r := range m.store.recharges {
		cp := *r
		out[id] = &cp
	}
	m.store.mu.Unlock()

	if t != nil {
		for id, r := range t.recharges {
			cp := *r
			out[id] = &cp
		}
	}
	return out
}

func (m *MockRechargeRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.RechargeRequest) error {
	t := asTx(tx)
	if req.PaymentReference != "" {
		for _, r := range m.view(t) {
			if r.UserID == req.UserID && r.PaymentReference == req.PaymentReference {
				return domain.ErrDuplicateRecharge
			}
		}
	}

	cp := *req
	t.recharges[req.ID] = &cp
	return nil
}

func (m *MockRechargeRepository) GetByID(ctx context.Context, id string) (*domain.RechargeRequest, error) {
	if r := m.store.Recharge(id); r != nil {
		return r, nil
	}
	return nil, domain.ErrRechargeNotFound
}

func (m *MockRechargeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RechargeRequest, error) {
	t := asTx(tx)
	if m.store.Recharge(id) == nil {
		return nil, domain.ErrRechargeNotFound
	}
	if err := t.acquire(ctx, "recharge:"+id); err != nil {
		return nil, err
	}
	return m.view(t)[id], nil
}

func (m *MockRechargeRepository) CountPending(ctx context.Context, tx usecase.Transaction, userID string) (int, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx, tx, userID)
	}
	count := 0
	for _, r := range m.view(asTx(tx)) {
		if r.UserID == userID && r.Status == domain.RechargeStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *MockRechargeRepository) UpdateReview(ctx context.Context, tx usecase.Transaction, req *domain.RechargeRequest) error {
	cp := *req
	asTx(tx).recharges[req.ID] = &cp
	return nil
}

func (m *MockRechargeRepository) List(ctx context.Context, filter domain.RechargeFilter) ([]*domain.RechargeRequest, int64, error) {
	var matched []*domain.RechargeRequest
	for _, r := range m.view(nil) {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	return page(matched, filter.PageSize, filter.Offset()), int64(len(matched)), nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	store *Store

	UpsertFunc func(ctx context.Context, user *domain.User) error
}

func NewMockUserRepository(store *Store) *MockUserRepository {
	return &MockUserRepository{store: store}
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	cp := *user
	m.store.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if u, ok := m.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	store *Store
}

func NewMockOutboxRepository(store *Store) *MockOutboxRepository {
	return &MockOutboxRepository{store: store}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t := asTx(tx)
	t.outbox = append(t.outbox, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, e := range m.store.outbox {
		if !e.Published {
			events = append(events, e)
		}
	}
	return page(events, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, e := range m.store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	kept := m.store.outbox[:0]
	for _, e := range m.store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.store.outbox = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	store *Store
}

func NewMockAuditRepository(store *Store) *MockAuditRepository {
	return &MockAuditRepository{store: store}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t := asTx(tx)
	t.audits = append(t.audits, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for _, l := range m.store.AuditLogs() {
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		logs = append(logs, l)
	}
	return page(logs, filter.Limit, filter.Offset), nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
// Default IDs are zero-padded so lexical order matches generation order.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      atomic.Int64
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return fmt.Sprintf("id-%010d", m.counter.Add(1))
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Stored returns the value kept for key.
func (m *MockIdempotencyStore) Stored(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// MockRetrier retries operations that fail with domain.ErrBusy.
type MockRetrier struct {
	MaxAttempts int
	attempts    atomic.Int64
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < max(m.MaxAttempts, 1); i++ {
		m.attempts.Add(1)
		if err = operation(); err == nil || !errors.Is(err, domain.ErrBusy) {
			return err
		}
	}
	return err
}

// Attempts returns the total number of operation calls.
func (m *MockRetrier) Attempts() int {
	return int(m.attempts.Load())
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
