// Package memory is an in-process ledger backend. It implements the same
// repository ports as the postgres adapter: per-account mutexes stand in for
// row locks and a buffering transaction stands in for the database
// transaction, so a transfer's debit, credit and record append still commit
// as one atomic unit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store holds accounts and the transfer log in memory. It implements
// ports.AccountRepository, ports.TransferRepository and ports.DBTransactor.
type Store struct {
	mu       sync.RWMutex // guards accounts, records, nextSeq
	accounts map[string]*domain.Account
	records  []domain.TransferRecord
	nextSeq  int64

	lockMu sync.Mutex // guards locks
	locks  map[string]*sync.Mutex
}

// NewStore creates an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

// accountLock returns the mutex for an account id, creating it on demand.
func (s *Store) accountLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if _, ok := s.locks[id]; !ok {
		s.locks[id] = &sync.Mutex{}
	}
	return s.locks[id]
}

// Begin starts a buffering transaction. Writes are staged and applied on
// Commit while the acquired account locks are still held.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return newTx(s), nil
}

// --- ports.AccountRepository ---

// Create inserts a new account.
func (s *Store) Create(ctx context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account already exists: %s", a.ID)
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

// GetByID fetches an account snapshot without locking.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// GetByIDForUpdate acquires the account's mutex through the transaction and
// returns a snapshot with the transaction's staged writes applied. The lock
// is held until the transaction commits or rolls back. Callers must acquire
// accounts in ascending id order.
func (s *Store) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	mtx.acquire(id)

	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	if staged, ok := mtx.balances[id]; ok {
		cp.Balance = staged
	}
	return &cp, nil
}

// UpdateBalance stages a balance write; it becomes visible at commit.
func (s *Store) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance int64) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if !mtx.holds(id) {
		return fmt.Errorf("account %s not locked by this transaction", id)
	}
	s.mu.RLock()
	_, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("account not found: %s", id)
	}
	mtx.balances[id] = balance
	return nil
}

// --- ports.TransferRepository ---

// Append stages a record; the sequence number is assigned at commit.
func (s *Store) Append(ctx context.Context, tx pgx.Tx, rec *domain.TransferRecord) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	mtx.pending = append(mtx.pending, rec)
	return nil
}

// GetRecord fetches a transfer record by UUID.
func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			cp := s.records[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// ListForAccount returns the account's records in ascending seq order.
func (s *Store) ListForAccount(ctx context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.TransferRecord
	for _, rec := range s.records {
		if rec.FromID != params.AccountID && rec.ToID != params.AccountID {
			continue
		}
		if params.Kind != nil && rec.Kind != *params.Kind {
			continue
		}
		matched = append(matched, rec)
	}
	total := int64(len(matched))

	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []domain.TransferRecord{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// SumForAccount folds the signed effect of every record on the account.
func (s *Store) SumForAccount(ctx context.Context, accountID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for i := range s.records {
		sum += s.records[i].SignedAmountFor(accountID)
	}
	return sum, nil
}

// commit applies a transaction's staged writes under the store lock.
func (s *Store) commit(mtx *Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, balance := range mtx.balances {
		if a, ok := s.accounts[id]; ok {
			a.Balance = balance
		}
	}
	for _, rec := range mtx.pending {
		s.nextSeq++
		rec.Seq = s.nextSeq
		s.records = append(s.records, *rec)
	}
}
