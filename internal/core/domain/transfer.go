package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferKind categorises a point movement.
type TransferKind string

const (
	// TransferKindAccountToAccount is a peer transfer between two members.
	TransferKindAccountToAccount TransferKind = "ACCOUNT2ACCOUNT"
	// TransferKindInvite credits points for inviting a new member.
	TransferKindInvite TransferKind = "INVITE"
	// TransferKindActivity credits points earned through site activities.
	TransferKindActivity TransferKind = "ACTIVITY"
	// TransferKindCheckin credits daily check-in points.
	TransferKindCheckin TransferKind = "CHECKIN"
)

// IsSystemCredit reports whether the kind is credited by the platform
// (no member account is debited).
func (k TransferKind) IsSystemCredit() bool {
	return k != TransferKindAccountToAccount
}

// Valid reports whether the kind is a known transfer category.
func (k TransferKind) Valid() bool {
	switch k {
	case TransferKindAccountToAccount, TransferKindInvite, TransferKindActivity, TransferKindCheckin:
		return true
	}
	return false
}

// TransferRecord is an immutable audit entry for one committed transfer.
// Seq is assigned by the log at append time and is strictly increasing, so
// replaying an account's records in Seq order reconstructs its balance
// history exactly.
type TransferRecord struct {
	ID             uuid.UUID    `json:"id"`
	Seq            int64        `json:"seq"`
	FromID         string       `json:"from_id"`
	ToID           string       `json:"to_id"`
	Kind           TransferKind `json:"kind"`
	Amount         int64        `json:"amount"`
	BalanceAfterTo int64        `json:"balance_after_to"`
	CreatedAt      time.Time    `json:"created_at"`
}

// SignedAmountFor returns the effect of the record on the given account:
// negative for the sender, positive for the receiver, zero otherwise.
func (r *TransferRecord) SignedAmountFor(accountID string) int64 {
	switch accountID {
	case r.FromID:
		return -r.Amount
	case r.ToID:
		return r.Amount
	}
	return 0
}

// TransferIntent is a validated, normalized transfer request produced by the
// policy check. It is the only input the ledger accepts.
type TransferIntent struct {
	FromID string
	ToID   string
	Amount int64
	Kind   TransferKind
}
