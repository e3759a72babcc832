package dto

import (
	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"
)

// CreateAccountRequest is the request body for account creation.
type CreateAccountRequest struct {
	ID string `json:"id" binding:"required,min=1,max=64"`
}

// TransferRequest is the request body for a peer point transfer.
type TransferRequest struct {
	FromID string `json:"from_id" binding:"required,max=64"`
	ToID   string `json:"to_id" binding:"required,max=64"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// RewardRequest is the request body for a system-credited grant.
type RewardRequest struct {
	ToID   string `json:"to_id" binding:"required,max=64"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Kind   string `json:"kind" binding:"required"`
}

// AccountResponse is the response body for account queries.
type AccountResponse struct {
	ID        string `json:"id"`
	Balance   int64  `json:"balance"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// TransferRecordResponse is one audit entry in a listing.
type TransferRecordResponse struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	FromID         string `json:"from_id"`
	ToID           string `json:"to_id"`
	Kind           string `json:"kind"`
	Amount         int64  `json:"amount"`
	BalanceAfterTo int64  `json:"balance_after_to"`
	CreatedAt      string `json:"created_at"`
}

// TransferListResponse wraps a paginated record list. TotalCount feeds the
// caller's page-window computation, which lives outside the ledger.
type TransferListResponse struct {
	Items      []TransferRecordResponse `json:"items"`
	TotalCount int64                    `json:"total_count"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
}

// ReconcileResponse reports a replay check against the stored balance.
type ReconcileResponse struct {
	AccountID       string `json:"account_id"`
	StoredBalance   int64  `json:"stored_balance"`
	ReplayedBalance int64  `json:"replayed_balance"`
	Consistent      bool   `json:"consistent"`
}

// FromAccount maps a domain account to its response shape.
func FromAccount(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Balance:   a.Balance,
		Active:    a.Active,
		CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromRecord maps a domain transfer record to its response shape.
func FromRecord(r *domain.TransferRecord) TransferRecordResponse {
	return TransferRecordResponse{
		ID:             r.ID.String(),
		Seq:            r.Seq,
		FromID:         r.FromID,
		ToID:           r.ToID,
		Kind:           string(r.Kind),
		Amount:         r.Amount,
		BalanceAfterTo: r.BalanceAfterTo,
		CreatedAt:      r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromRecords maps a record slice plus pagination into a list response.
func FromRecords(records []domain.TransferRecord, total int64, params ports.TransferListParams) TransferListResponse {
	items := make([]TransferRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, FromRecord(&records[i]))
	}
	return TransferListResponse{
		Items:      items,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}
}
