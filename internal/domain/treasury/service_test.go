package treasury_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/repository"
	"github.com/rpggio/grantflow/internal/repository/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *mocks.TreasuryRepository, activityRepo *mocks.ActivityRepository, publisher events.Publisher) *treasury.Service {
	return treasury.NewService(repo, activityRepo, &mocks.Transactor{}, publisher, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
}

func TestTreasuryService_Init(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TreasuryRepository{}
	activityRepo := &mocks.ActivityRepository{}
	publisher := &events.MemoryPublisher{}

	repo.On("Create", ctx, mock.AnythingOfType("*treasury.Treasury")).Return(nil)
	activityRepo.On("Log", ctx, mock.AnythingOfType("*activity.ActivityEntry")).Return(nil)

	tr, err := newService(repo, activityRepo, publisher).Init(ctx, treasury.InitRequest{Authority: "dao", Mint: "mint-1"})
	require.NoError(t, err)
	require.Equal(t, grant.DeriveID(grant.KindTreasury, "dao"), tr.ID)
	require.False(t, tr.Governance.IsPaused)
	require.Equal(t, fixedNow, tr.CreatedAt)

	published := publisher.Events()
	require.Len(t, published, 1)
	require.Equal(t, string(activity.TypeTreasuryInitialized), published[0].Type)
}

func TestTreasuryService_InitConflict(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TreasuryRepository{}
	activityRepo := &mocks.ActivityRepository{}
	publisher := &mocks.Publisher{}

	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	_, err := newService(repo, activityRepo, publisher).Init(ctx, treasury.InitRequest{Authority: "dao", Mint: "mint-1"})
	require.ErrorIs(t, err, treasury.ErrTreasuryExists)
	activityRepo.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestTreasuryService_InitInvalid(t *testing.T) {
	svc := newService(&mocks.TreasuryRepository{}, &mocks.ActivityRepository{}, nil)

	_, err := svc.Init(context.Background(), treasury.InitRequest{Authority: "", Mint: "mint-1"})
	require.ErrorIs(t, err, treasury.ErrInvalidInput)
	_, err = svc.Init(context.Background(), treasury.InitRequest{Authority: "dao"})
	require.ErrorIs(t, err, treasury.ErrInvalidInput)
}

func TestTreasuryService_SetGovernance(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TreasuryRepository{}
	activityRepo := &mocks.ActivityRepository{}

	existing := &treasury.Treasury{
		ID:         "t1",
		Authority:  "dao",
		Mint:       "mint-1",
		Governance: treasury.DefaultGovernance(time.Unix(0, 0)),
	}
	repo.On("Get", ctx, "t1").Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(tr *treasury.Treasury) bool {
		return tr.Governance.IsPaused && tr.Governance.MaxGrantAmount == 500
	})).Return(nil)
	activityRepo.On("Log", ctx, mock.AnythingOfType("*activity.ActivityEntry")).Return(nil)

	paused := true
	maxGrant := uint64(500)
	tr, err := newService(repo, activityRepo, nil).SetGovernance(ctx, treasury.GovernanceRequest{
		TreasuryID:     "t1",
		Caller:         "dao",
		IsPaused:       &paused,
		MaxGrantAmount: &maxGrant,
	})
	require.NoError(t, err)
	require.Equal(t, fixedNow, tr.Governance.LastUpdated)
	require.Equal(t, ^uint64(0), tr.Governance.MaxTotalAllocation)
	repo.AssertExpectations(t)
}

func TestTreasuryService_SetGovernanceUnauthorized(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TreasuryRepository{}
	repo.On("Get", ctx, "t1").Return(&treasury.Treasury{ID: "t1", Authority: "dao"}, nil)

	_, err := newService(repo, &mocks.ActivityRepository{}, nil).SetGovernance(ctx, treasury.GovernanceRequest{TreasuryID: "t1", Caller: "mallory"})
	require.ErrorIs(t, err, grant.ErrUnauthorized)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTreasuryService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TreasuryRepository{}
	repo.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)

	_, err := newService(repo, &mocks.ActivityRepository{}, nil).Get(ctx, "missing")
	require.ErrorIs(t, err, treasury.ErrTreasuryNotFound)
	require.Equal(t, grant.KindNotFound, grant.KindOf(err))
}
