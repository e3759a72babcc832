package service

import (
	"context"
	"errors"
	"testing"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAccountService(t *testing.T) (*AccountServiceImpl, *mocks.MockAccountRepository, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAccountRepository(ctrl)
	return NewAccountService(repo, zerolog.Nop()), repo, ctrl
}

func TestAccountService_Create_Success(t *testing.T) {
	svc, repo, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "alice").Return(nil, nil)
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "alice", a.ID)
			assert.Equal(t, int64(0), a.Balance)
			assert.True(t, a.Active)
			return nil
		})

	account, err := svc.Create(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.ID)
	assert.Equal(t, int64(0), account.Balance)
}

func TestAccountService_Create_EmptyID(t *testing.T) {
	svc, _, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	account, err := svc.Create(context.Background(), "   ")
	assert.Nil(t, account)
	assertAppError(t, err, "PTS_000")
}

func TestAccountService_Create_ReservedID(t *testing.T) {
	svc, _, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	account, err := svc.Create(context.Background(), domain.SystemAccountID)
	assert.Nil(t, account)
	assertAppError(t, err, "PTS_000")
}

func TestAccountService_Create_AlreadyExists(t *testing.T) {
	svc, repo, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "alice").Return(activeAccount("alice", 100), nil)

	account, err := svc.Create(ctx, "alice")
	assert.Nil(t, account)
	assertAppError(t, err, "PTS_007")
}

func TestAccountService_Get_Success(t *testing.T) {
	svc, repo, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "alice").Return(activeAccount("alice", 42), nil)

	account, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.Balance)
}

func TestAccountService_Get_NotFound(t *testing.T) {
	svc, repo, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "ghost").Return(nil, nil)

	account, err := svc.Get(ctx, "ghost")
	assert.Nil(t, account)
	assertAppError(t, err, "PTS_003")
}

func TestAccountService_Get_RepoError(t *testing.T) {
	svc, repo, ctrl := setupAccountService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "alice").Return(nil, errors.New("db down"))

	account, err := svc.Get(ctx, "alice")
	assert.Nil(t, account)
	assertAppError(t, err, "SYS_001")
}
