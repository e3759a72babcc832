package service

import (
	"context"
	"fmt"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"
	"points-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService. It never writes;
// reads go through the balance cache when one is configured and degrade to
// the store on any cache error.
type ReportingServiceImpl struct {
	accountRepo  ports.AccountRepository
	transferRepo ports.TransferRepository
	cache        ports.BalanceCache // nil = caching disabled
	log          zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	accountRepo ports.AccountRepository,
	transferRepo ports.TransferRepository,
	cache ports.BalanceCache,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		cache:        cache,
		log:          log,
	}
}

// GetBalance returns the account's current balance, cache-first.
func (s *ReportingServiceImpl) GetBalance(ctx context.Context, accountID string) (int64, error) {
	if s.cache != nil {
		balance, hit, err := s.cache.Get(ctx, accountID)
		if err != nil {
			s.log.Warn().Err(err).Str("account_id", accountID).Msg("balance cache read failed")
		} else if hit {
			return balance, nil
		}
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrUnknownAccount(accountID)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, accountID, account.Balance); err != nil {
			s.log.Warn().Err(err).Str("account_id", accountID).Msg("balance cache write failed")
		}
	}
	return account.Balance, nil
}

// ListTransfers returns a page of the account's transfer records in ascending
// seq order together with the total count.
func (s *ReportingServiceImpl) ListTransfers(ctx context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	account, err := s.accountRepo.GetByID(ctx, params.AccountID)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, 0, apperror.ErrUnknownAccount(params.AccountID)
	}

	records, total, err := s.transferRepo.ListForAccount(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transfers: %w", err))
	}
	return records, total, nil
}

// ReplayBalance reconstructs the account's balance by folding its full record
// history from zero. The result must equal the stored balance; a mismatch
// means the ledger and the log have diverged.
func (s *ReportingServiceImpl) ReplayBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrUnknownAccount(accountID)
	}

	sum, err := s.transferRepo.SumForAccount(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum records: %w", err))
	}
	if sum != account.Balance {
		s.log.Error().
			Str("account_id", accountID).
			Int64("stored", account.Balance).
			Int64("replayed", sum).
			Msg("ledger and transfer log diverged")
	}
	return sum, nil
}
