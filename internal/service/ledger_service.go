package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"
	"points-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
//
// A transfer attempt moves through Validated -> Locked -> Debited -> Credited
// -> Logged -> Committed; any failure rolls the whole attempt back before the
// locks are released, so no partial state is ever observable.
type LedgerServiceImpl struct {
	accountRepo  ports.AccountRepository
	transferRepo ports.TransferRepository
	policy       *TransferPolicy
	transactor   ports.DBTransactor
	cache        ports.BalanceCache    // nil = caching disabled
	events       ports.EventPublisher  // nil = event publishing disabled
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	transferRepo ports.TransferRepository,
	policy *TransferPolicy,
	transactor ports.DBTransactor,
	cache ports.BalanceCache,
	events ports.EventPublisher,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		policy:       policy,
		transactor:   transactor,
		cache:        cache,
		events:       events,
		log:          log,
	}
}

// Transfer moves points between two member accounts atomically.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	intent, err := s.policy.ValidateTransfer(ctx, req.FromID, req.ToID, req.Amount)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both accounts in ascending id order. Two transfers racing in
	// opposite directions between the same pair always acquire in the same
	// order, so they cannot deadlock.
	first, second := intent.FromID, intent.ToID
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*domain.Account, 2)
	for _, id := range []string{first, second} {
		account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock account %s: %w", id, err))
		}
		if account == nil || !account.Active {
			return nil, apperror.ErrUnknownAccount(id)
		}
		locked[id] = account
	}
	from, to := locked[intent.FromID], locked[intent.ToID]

	// Re-check under lock: the balance seen during validation may be stale.
	if from.Balance < intent.Amount {
		return nil, apperror.ErrInsufficientFunds()
	}
	if to.Balance > math.MaxInt64-intent.Amount {
		return nil, apperror.ErrAmountOverflow()
	}

	newFrom := from.Balance - intent.Amount
	newTo := to.Balance + intent.Amount

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, from.ID, newFrom); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit %s: %w", from.ID, err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, to.ID, newTo); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit %s: %w", to.ID, err))
	}

	record := &domain.TransferRecord{
		ID:             uuid.New(),
		FromID:         from.ID,
		ToID:           to.ID,
		Kind:           intent.Kind,
		Amount:         intent.Amount,
		BalanceAfterTo: newTo,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.transferRepo.Append(ctx, dbTx, record); err != nil {
		return nil, apperror.ErrPersistenceFailure(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.postCommit(ctx, record, from.ID, to.ID)

	s.log.Info().
		Str("record_id", record.ID.String()).
		Str("from", from.ID).
		Str("to", to.ID).
		Int64("amount", intent.Amount).
		Msg("points transferred")

	return &ports.TransferResult{
		RecordID:    record.ID,
		FromBalance: newFrom,
		ToBalance:   newTo,
	}, nil
}

// GrantReward credits points from the system sentinel to a member account.
// There is no debit leg, so only the receiver is locked.
func (s *LedgerServiceImpl) GrantReward(ctx context.Context, req ports.RewardRequest) (*ports.TransferResult, error) {
	intent, err := s.policy.ValidateReward(ctx, req.ToID, req.Amount, req.Kind)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	to, err := s.lockAccount(ctx, dbTx, intent.ToID)
	if err != nil {
		return nil, err
	}

	if to.Balance > math.MaxInt64-intent.Amount {
		return nil, apperror.ErrAmountOverflow()
	}
	newTo := to.Balance + intent.Amount

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, to.ID, newTo); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit %s: %w", to.ID, err))
	}

	record := &domain.TransferRecord{
		ID:             uuid.New(),
		FromID:         domain.SystemAccountID,
		ToID:           to.ID,
		Kind:           intent.Kind,
		Amount:         intent.Amount,
		BalanceAfterTo: newTo,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.transferRepo.Append(ctx, dbTx, record); err != nil {
		return nil, apperror.ErrPersistenceFailure(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.postCommit(ctx, record, to.ID)

	s.log.Info().
		Str("record_id", record.ID.String()).
		Str("to", to.ID).
		Str("kind", string(intent.Kind)).
		Int64("amount", intent.Amount).
		Msg("reward granted")

	return &ports.TransferResult{
		RecordID:    record.ID,
		FromBalance: 0,
		ToBalance:   newTo,
	}, nil
}

func (s *LedgerServiceImpl) lockAccount(ctx context.Context, dbTx pgx.Tx, id string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account %s: %w", id, err))
	}
	if account == nil || !account.Active {
		return nil, apperror.ErrUnknownAccount(id)
	}
	return account, nil
}

// postCommit runs best-effort side effects after a successful commit: cache
// invalidation and event publishing. Failures are logged, never surfaced.
func (s *LedgerServiceImpl) postCommit(ctx context.Context, record *domain.TransferRecord, accountIDs ...string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, accountIDs...); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate balance cache")
		}
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, record); err != nil {
			s.log.Warn().Err(err).Str("record_id", record.ID.String()).Msg("failed to publish transfer event")
		}
	}
}
