package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"
	"points-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	log         zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(accountRepo ports.AccountRepository, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{accountRepo: accountRepo, log: log}
}

// Create registers a new account with a zero balance. Points arrive later
// through reward grants or transfers, keeping the record history complete.
func (s *AccountServiceImpl) Create(ctx context.Context, id string) (*domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" || domain.IsSystem(id) {
		return nil, apperror.Validation("account id is required and must not be reserved")
	}

	existing, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrAccountExists(id)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        id,
		Balance:   0,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account_id", id).Msg("account created")
	return account, nil
}

// Get fetches an account by id.
func (s *AccountServiceImpl) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrUnknownAccount(id)
	}
	return account, nil
}
