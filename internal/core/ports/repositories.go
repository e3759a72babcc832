package ports

import (
	"context"

	"points-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository is the authoritative store of current balances.
// Methods accepting pgx.Tx run inside a ledger transaction and rely on the
// backend's pessimistic locking; UpdateBalance must only be called while the
// account's lock is held via GetByIDForUpdate.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance int64) error
}

// AccountLookup is the read-only capability the transfer policy needs.
// AccountRepository satisfies it.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// TransferRepository is the append-only transfer log.
type TransferRepository interface {
	// Append writes one record inside the ledger transaction and assigns
	// record.Seq. An append failure is fatal to the enclosing transfer.
	Append(ctx context.Context, tx pgx.Tx, record *domain.TransferRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	// ListForAccount returns records referencing the account as sender or
	// receiver in ascending Seq order, plus the total count for pagination.
	ListForAccount(ctx context.Context, params TransferListParams) ([]domain.TransferRecord, int64, error)
	// SumForAccount returns the signed sum of all records for the account
	// (credits positive, debits negative). Used for reconciliation.
	SumForAccount(ctx context.Context, accountID string) (int64, error)
}

// TransferListParams holds filter + pagination for listing transfer records.
type TransferListParams struct {
	AccountID string
	Kind      *domain.TransferKind
	Page      int
	PageSize  int
}

// BalanceCache is a read-side cache in front of the account store.
// It is advisory: misses and errors fall through to the store.
type BalanceCache interface {
	Get(ctx context.Context, accountID string) (int64, bool, error)
	Set(ctx context.Context, accountID string, balance int64) error
	Invalidate(ctx context.Context, accountIDs ...string) error
}

// EventPublisher emits committed-transfer events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, record *domain.TransferRecord) error
}

// DBTransactor provides the transaction boundary for a ledger transfer.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
