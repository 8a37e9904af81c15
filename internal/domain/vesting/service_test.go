package vesting_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/repository"
	"github.com/rpggio/grantflow/internal/repository/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deps struct {
	repo       *mocks.VestingRepository
	treasuries *mocks.TreasuryRepository
	gateway    *mocks.Gateway
	activity   *mocks.ActivityRepository
	tx         *mocks.Transactor
	publisher  *events.MemoryPublisher
}

func newDeps() *deps {
	return &deps{
		repo:       &mocks.VestingRepository{},
		treasuries: &mocks.TreasuryRepository{},
		gateway:    &mocks.Gateway{},
		activity:   &mocks.ActivityRepository{},
		tx:         &mocks.Transactor{},
		publisher:  &events.MemoryPublisher{},
	}
}

func (d *deps) service() *vesting.Service {
	return vesting.NewService(d.repo, d.treasuries, d.gateway, d.activity, d.tx, d.publisher, zerolog.Nop()).
		WithClock(func() time.Time { return time.Unix(60, 0) })
}

func testTreasury() *treasury.Treasury {
	return &treasury.Treasury{
		ID:         "t1",
		Authority:  "dao",
		Mint:       "mint-1",
		Governance: treasury.DefaultGovernance(time.Unix(0, 0)),
	}
}

func TestVestingService_CreateLinearIgnoresCliff(t *testing.T) {
	ctx := context.Background()
	d := newDeps()
	d.treasuries.On("Get", ctx, "t1").Return(testTreasury(), nil)
	d.repo.On("Create", ctx, mock.MatchedBy(func(v *vesting.Vesting) bool {
		return v.Kind == vesting.KindLinear && v.CliffTime == v.StartTime
	})).Return(nil)
	d.treasuries.On("Update", ctx, mock.Anything).Return(nil)
	d.gateway.On("Transfer", ctx, mock.Anything).Return(nil)
	d.activity.On("Log", ctx, mock.Anything).Return(nil)

	v, err := d.service().Create(ctx, vesting.CreateRequest{
		TreasuryID:  "t1",
		Caller:      "dao",
		Recipient:   "bob",
		Kind:        vesting.KindLinear,
		TotalAmount: 1000,
		StartTime:   10,
		CliffTime:   999,
		EndTime:     100,
		Category:    grant.CategoryOperations,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), v.CliffTime)
	require.Equal(t, grant.DeriveID(grant.KindVesting, "t1", "bob"), v.ID)
	d.repo.AssertExpectations(t)
}

func TestVestingService_CreateValidation(t *testing.T) {
	d := newDeps()
	base := vesting.CreateRequest{
		TreasuryID:  "t1",
		Caller:      "dao",
		Recipient:   "bob",
		Kind:        vesting.KindCliff,
		TotalAmount: 1000,
		StartTime:   10,
		CliffTime:   5,
		EndTime:     100,
		Category:    grant.CategoryOperations,
	}

	_, err := d.service().Create(context.Background(), base)
	require.ErrorIs(t, err, grant.ErrInvalidCliffTiming)

	base.Kind = "step"
	_, err = d.service().Create(context.Background(), base)
	require.ErrorIs(t, err, vesting.ErrInvalidKind)

	base.Category = "payroll"
	_, err = d.service().Create(context.Background(), base)
	require.ErrorIs(t, err, grant.ErrInvalidCategory)
	require.Equal(t, 0, d.tx.Calls)
}

func activeVesting() *vesting.Vesting {
	return &vesting.Vesting{
		ID:          "v1",
		TreasuryID:  "t1",
		Recipient:   "bob",
		Authority:   "dao",
		Mint:        "mint-1",
		Kind:        vesting.KindCliff,
		TotalAmount: 1200,
		StartTime:   0,
		CliffTime:   30,
		EndTime:     90,
		Status:      grant.StatusActive,
	}
}

func TestVestingService_Claim(t *testing.T) {
	ctx := context.Background()
	d := newDeps()
	d.repo.On("Get", ctx, "v1").Return(activeVesting(), nil)
	d.treasuries.On("Get", ctx, "t1").Return(testTreasury(), nil)
	d.treasuries.On("Update", ctx, mock.MatchedBy(func(tr *treasury.Treasury) bool {
		return tr.TotalPaid == 600
	})).Return(nil)
	d.repo.On("Update", ctx, mock.Anything).Return(nil)
	d.gateway.On("Transfer", ctx, mock.Anything).Return(nil)
	d.activity.On("Log", ctx, mock.Anything).Return(nil)

	v, err := d.service().Claim(ctx, vesting.ClaimRequest{VestingID: "v1", Caller: "bob", Amount: 600})
	require.NoError(t, err)
	require.Equal(t, uint64(600), v.ClaimedAmount)
	require.Equal(t, grant.StatusActive, v.Status)

	published := d.publisher.Events()
	require.Len(t, published, 1)
	require.Equal(t, "vesting_claimed", published[0].Type)
	require.Equal(t, uint64(600), published[0].Amount)
}

func TestVestingService_ClaimRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not recipient", func(t *testing.T) {
		d := newDeps()
		d.repo.On("Get", ctx, "v1").Return(activeVesting(), nil)
		_, err := d.service().Claim(ctx, vesting.ClaimRequest{VestingID: "v1", Caller: "dao", Amount: 1})
		require.ErrorIs(t, err, grant.ErrUnauthorized)
	})

	t.Run("paused treasury", func(t *testing.T) {
		d := newDeps()
		tr := testTreasury()
		tr.Governance.IsPaused = true
		d.repo.On("Get", ctx, "v1").Return(activeVesting(), nil)
		d.treasuries.On("Get", ctx, "t1").Return(tr, nil)
		_, err := d.service().Claim(ctx, vesting.ClaimRequest{VestingID: "v1", Caller: "bob", Amount: 1})
		require.ErrorIs(t, err, treasury.ErrPaused)
		d.gateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		d := newDeps()
		d.repo.On("Get", ctx, "v9").Return(nil, repository.ErrNotFound)
		_, err := d.service().Claim(ctx, vesting.ClaimRequest{VestingID: "v9", Caller: "bob", Amount: 1})
		require.ErrorIs(t, err, vesting.ErrVestingNotFound)
	})
}

func TestVestingService_Control(t *testing.T) {
	ctx := context.Background()
	d := newDeps()
	d.repo.On("Get", ctx, "v1").Return(activeVesting(), nil)
	d.repo.On("Update", ctx, mock.Anything).Return(nil)
	d.activity.On("Log", ctx, mock.Anything).Return(nil)

	v, err := d.service().Control(ctx, vesting.ControlRequest{VestingID: "v1", Caller: "dao", Action: grant.ActionCancel})
	require.NoError(t, err)
	require.Equal(t, grant.StatusCancelled, v.Status)
	require.Equal(t, "vesting_cancelled", d.publisher.Events()[0].Type)

	_, err = d.service().Control(ctx, vesting.ControlRequest{VestingID: "v1", Caller: "bob", Action: grant.ActionPause})
	require.ErrorIs(t, err, grant.ErrUnauthorized)
}
