package vesting

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/stretchr/testify/require"
)

func cliffVesting() *Vesting {
	return &Vesting{
		ID:          "v1",
		Kind:        KindCliff,
		TotalAmount: 1200,
		StartTime:   0,
		CliffTime:   30,
		EndTime:     90,
		Status:      grant.StatusActive,
	}
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule(KindLinear, 0, -50, 100))
	require.NoError(t, ValidateSchedule(KindCliff, 0, 0, 100))
	require.NoError(t, ValidateSchedule(KindCliff, 0, 100, 100))
	require.ErrorIs(t, ValidateSchedule(KindCliff, 0, -1, 100), grant.ErrInvalidCliffTiming)
	require.ErrorIs(t, ValidateSchedule(KindCliff, 0, 101, 100), grant.ErrInvalidCliffTiming)
	require.ErrorIs(t, ValidateSchedule(Kind("step"), 0, 10, 100), ErrInvalidKind)
}

func TestClaimableAmount_Cliff(t *testing.T) {
	v := cliffVesting()

	require.Equal(t, uint64(0), v.ClaimableAmount(20))
	require.Equal(t, uint64(0), v.ClaimableAmount(30))
	require.Equal(t, uint64(600), v.ClaimableAmount(60))
	require.Equal(t, uint64(1200), v.ClaimableAmount(90))

	v.Status = grant.StatusPaused
	require.Equal(t, uint64(0), v.ClaimableAmount(60))
}

func TestClaimableAmount_Linear(t *testing.T) {
	v := &Vesting{Kind: KindLinear, TotalAmount: 1000, StartTime: 0, CliffTime: 0, EndTime: 100, Status: grant.StatusActive}

	require.Equal(t, uint64(0), v.ClaimableAmount(-1))
	require.Equal(t, uint64(250), v.ClaimableAmount(25))
	require.Equal(t, uint64(1000), v.ClaimableAmount(100))
}

func TestClaim(t *testing.T) {
	v := cliffVesting()

	_, err := v.Claim(1, 20)
	require.ErrorIs(t, err, grant.ErrInsufficientUnlocked)

	completed, err := v.Claim(600, 60)
	require.NoError(t, err)
	require.False(t, completed)
	require.Equal(t, uint64(600), v.ClaimedAmount)
	require.Equal(t, uint64(0), v.ClaimableAmount(60))

	completed, err = v.Claim(600, 90)
	require.NoError(t, err)
	require.True(t, completed)
	require.Equal(t, grant.StatusCompleted, v.Status)

	_, err = v.Claim(1, 120)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestClaim_NotStarted(t *testing.T) {
	v := cliffVesting()
	v.StartTime, v.CliffTime, v.EndTime = 10, 10, 100

	_, err := v.Claim(1, 5)
	require.ErrorIs(t, err, grant.ErrNotStarted)
}

func TestApply(t *testing.T) {
	v := cliffVesting()

	require.NoError(t, v.Apply(grant.ActionPause))
	require.ErrorIs(t, v.Apply(grant.ActionPause), ErrNotActive)
	require.NoError(t, v.Apply(grant.ActionCancel))
	require.ErrorIs(t, v.Apply(grant.ActionResume), ErrNotPaused)
	require.ErrorIs(t, v.Apply(grant.ActionCancel), ErrCannotCancel)

	_, err := v.Claim(1, 90)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestCliffContinuity(t *testing.T) {
	f := gofakeit.New(11)

	for i := 0; i < 300; i++ {
		start := int64(f.IntRange(0, 1000))
		cliff := start + int64(f.IntRange(0, 1000))
		end := cliff + int64(f.IntRange(1, 1000))
		v := &Vesting{
			Kind:        KindCliff,
			TotalAmount: uint64(f.IntRange(1, 1_000_000_000)),
			StartTime:   start,
			CliffTime:   cliff,
			EndTime:     end,
			Status:      grant.StatusActive,
		}

		require.Equal(t, uint64(0), v.ClaimableAmount(cliff-1))
		require.Equal(t, uint64(0), v.ClaimableAmount(cliff))

		prev := uint64(0)
		for now := cliff; now <= end; now += int64(f.IntRange(1, 50)) {
			got := v.ClaimableAmount(now)
			require.GreaterOrEqual(t, got, prev)
			prev = got
		}
		require.Equal(t, v.TotalAmount, v.ClaimableAmount(end))
	}
}

func TestQuote(t *testing.T) {
	v := cliffVesting()
	q := v.Quote(60)
	require.Equal(t, uint64(600), q.Releasable)
	require.Equal(t, uint64(1200), q.Remaining)
	require.Equal(t, uint64(5000), q.ProgressBps)
}
