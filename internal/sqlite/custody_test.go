package sqlite

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/stretchr/testify/require"
)

func TestCustodyRepository(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewCustodyRepository(db)

	acct, err := repo.Get(ctx, "dao", "mint-1")
	require.NoError(t, err)
	require.Equal(t, uint64(0), acct.Balance)
	require.Equal(t, "dao", acct.Owner)

	acct.Balance = math.MaxUint64
	acct.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Put(ctx, acct))

	acct.Balance = 5
	require.NoError(t, repo.Put(ctx, acct))

	got, err := repo.Get(ctx, "dao", "mint-1")
	require.NoError(t, err)
	require.Equal(t, uint64(5), got.Balance)

	other, err := repo.Get(ctx, "dao", "mint-2")
	require.NoError(t, err)
	require.Equal(t, uint64(0), other.Balance)

	require.NoError(t, repo.Put(ctx, &custody.Account{Owner: "x", Mint: "mint-1", Balance: math.MaxUint64}))
	got, err = repo.Get(ctx, "x", "mint-1")
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got.Balance)
}
