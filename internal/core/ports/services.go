package ports

import (
	"context"

	"points-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// TransferRequest is the input to a peer point transfer.
type TransferRequest struct {
	FromID string
	ToID   string
	Amount int64
}

// RewardRequest is the input to a system-credited grant.
type RewardRequest struct {
	ToID   string
	Amount int64
	Kind   domain.TransferKind
}

// TransferResult reports a committed transfer to the caller.
type TransferResult struct {
	RecordID    uuid.UUID `json:"record_id"`
	FromBalance int64     `json:"from_balance"`
	ToBalance   int64     `json:"to_balance"`
}

// LedgerService is the write side of the points ledger. A transfer either
// fully commits (debit + credit + one appended record) or has no effect.
type LedgerService interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	GrantReward(ctx context.Context, req RewardRequest) (*TransferResult, error)
}

// ReportingService is the read side of the ledger.
type ReportingService interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	ListTransfers(ctx context.Context, params TransferListParams) ([]domain.TransferRecord, int64, error)
	// ReplayBalance folds the account's full record history from zero and
	// returns the reconstructed balance. It must equal the stored balance.
	ReplayBalance(ctx context.Context, accountID string) (int64, error)
}

// AccountService manages account identities. Accounts start at zero balance;
// initial points arrive through reward grants so the record history stays the
// single source of truth.
type AccountService interface {
	Create(ctx context.Context, id string) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
}
