package memory

import (
	"context"
	"fmt"
	"sync"

	"points-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the in-memory stand-in for a database transaction. It buffers balance
// writes and record appends, holds the per-account mutexes acquired through
// GetByIDForUpdate, and applies everything on Commit while those locks are
// still held. Rollback discards the staged state.
//
// It satisfies pgx.Tx so the repositories keep one signature across backends;
// the SQL-specific methods are inert.
type Tx struct {
	store    *Store
	heldIDs  []string // acquisition order, for reverse release
	held     map[string]*sync.Mutex
	balances map[string]int64
	pending  []*domain.TransferRecord
	done     bool
}

func newTx(s *Store) *Tx {
	return &Tx{
		store:    s,
		held:     make(map[string]*sync.Mutex),
		balances: make(map[string]int64),
	}
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory store requires a memory transaction, got %T", tx)
	}
	if mtx.done {
		return nil, fmt.Errorf("transaction already finished")
	}
	return mtx, nil
}

// acquire takes the account's lock unless this transaction already holds it.
func (t *Tx) acquire(id string) {
	if t.holds(id) {
		return
	}
	m := t.store.accountLock(id)
	m.Lock()
	t.held[id] = m
	t.heldIDs = append(t.heldIDs, id)
}

func (t *Tx) holds(id string) bool {
	_, ok := t.held[id]
	return ok
}

// release drops all held account locks in reverse acquisition order.
func (t *Tx) release() {
	for i := len(t.heldIDs) - 1; i >= 0; i-- {
		t.held[t.heldIDs[i]].Unlock()
	}
	t.heldIDs = nil
	t.held = make(map[string]*sync.Mutex)
}

// Commit applies staged writes and releases the account locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.commit(t)
	t.done = true
	t.release()
	return nil
}

// Rollback discards staged writes and releases the account locks. Rolling
// back after Commit is a no-op, matching pgx's deferred-rollback idiom.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.balances = make(map[string]int64)
	t.pending = nil
	t.done = true
	t.release()
	return nil
}

// --- inert pgx.Tx surface ---

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *Tx) Conn() *pgx.Conn { return nil }
