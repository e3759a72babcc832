package service

import (
	"context"
	"strings"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"

	"points-ledger/pkg/apperror"
)

// TransferPolicy is the pure validation stage in front of the ledger.
// It only performs read-only lookups and never takes locks, so a rejected
// request costs nothing in contention.
type TransferPolicy struct {
	lookup    ports.AccountLookup
	minAmount int64
}

// NewTransferPolicy creates a TransferPolicy with the configured minimum
// transferable amount for peer transfers.
func NewTransferPolicy(lookup ports.AccountLookup, minAmount int64) *TransferPolicy {
	if minAmount < 1 {
		minAmount = 1
	}
	return &TransferPolicy{lookup: lookup, minAmount: minAmount}
}

// ValidateTransfer checks a peer transfer request and returns a normalized,
// immutable intent. Balance sufficiency is NOT checked here: it is only
// meaningful under lock, inside the ledger.
func (p *TransferPolicy) ValidateTransfer(ctx context.Context, fromID, toID string, amount int64) (*domain.TransferIntent, error) {
	fromID = strings.TrimSpace(fromID)
	toID = strings.TrimSpace(toID)

	if amount < p.minAmount {
		return nil, apperror.ErrInvalidAmount(p.minAmount)
	}
	if fromID == toID {
		return nil, apperror.ErrSelfTransfer()
	}
	if domain.IsSystem(fromID) || domain.IsSystem(toID) {
		return nil, apperror.ErrUnknownAccount(domain.SystemAccountID)
	}

	for _, id := range []string{fromID, toID} {
		if err := p.requireActive(ctx, id); err != nil {
			return nil, err
		}
	}

	return &domain.TransferIntent{
		FromID: fromID,
		ToID:   toID,
		Amount: amount,
		Kind:   domain.TransferKindAccountToAccount,
	}, nil
}

// ValidateReward checks a system-credited grant. The transfer minimum does
// not apply; any positive amount is grantable.
func (p *TransferPolicy) ValidateReward(ctx context.Context, toID string, amount int64, kind domain.TransferKind) (*domain.TransferIntent, error) {
	toID = strings.TrimSpace(toID)

	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount(1)
	}
	if !kind.Valid() || !kind.IsSystemCredit() {
		return nil, apperror.ErrInvalidKind(string(kind))
	}
	if domain.IsSystem(toID) {
		return nil, apperror.ErrUnknownAccount(toID)
	}
	if err := p.requireActive(ctx, toID); err != nil {
		return nil, err
	}

	return &domain.TransferIntent{
		FromID: domain.SystemAccountID,
		ToID:   toID,
		Amount: amount,
		Kind:   kind,
	}, nil
}

func (p *TransferPolicy) requireActive(ctx context.Context, id string) error {
	account, err := p.lookup.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(err)
	}
	if account == nil || !account.Active {
		return apperror.ErrUnknownAccount(id)
	}
	return nil
}
