package domain

import "time"

// SystemAccountID is the sentinel sender for transfers credited by the
// platform itself (rewards, invite bonuses). It never holds a balance and is
// never debited.
const SystemAccountID = "system"

// Account holds a member's current point balance.
// The balance is mutated only inside a ledger transfer; it is never negative
// at any observable point.
type Account struct {
	ID        string    `json:"id"`
	Balance   int64     `json:"balance"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSystem reports whether the id refers to the platform sentinel account.
func IsSystem(id string) bool {
	return id == SystemAccountID
}
