package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treasuryStub struct {
	initFn       func(context.Context, treasury.InitRequest) (*treasury.Treasury, error)
	getFn        func(context.Context, string) (*treasury.Treasury, error)
	governanceFn func(context.Context, treasury.GovernanceRequest) (*treasury.Treasury, error)
}

func (s treasuryStub) Init(ctx context.Context, req treasury.InitRequest) (*treasury.Treasury, error) {
	return s.initFn(ctx, req)
}
func (s treasuryStub) Get(ctx context.Context, id string) (*treasury.Treasury, error) {
	return s.getFn(ctx, id)
}
func (s treasuryStub) SetGovernance(ctx context.Context, req treasury.GovernanceRequest) (*treasury.Treasury, error) {
	return s.governanceFn(ctx, req)
}

type streamStub struct {
	createFn   func(context.Context, stream.CreateRequest) (*stream.Stream, error)
	withdrawFn func(context.Context, stream.WithdrawRequest) (*stream.Stream, error)
	controlFn  func(context.Context, stream.ControlRequest) (*stream.Stream, error)
	getFn      func(context.Context, string) (*stream.Stream, error)
	findFn     func(context.Context, string, string) (*stream.Stream, error)
	quoteFn    func(context.Context, string, *int64) (grant.Quote, error)
	listFn     func(context.Context, stream.ListOptions) ([]stream.Stream, error)
}

func (s streamStub) Create(ctx context.Context, req stream.CreateRequest) (*stream.Stream, error) {
	return s.createFn(ctx, req)
}
func (s streamStub) Withdraw(ctx context.Context, req stream.WithdrawRequest) (*stream.Stream, error) {
	return s.withdrawFn(ctx, req)
}
func (s streamStub) Control(ctx context.Context, req stream.ControlRequest) (*stream.Stream, error) {
	return s.controlFn(ctx, req)
}
func (s streamStub) Get(ctx context.Context, id string) (*stream.Stream, error) {
	return s.getFn(ctx, id)
}
func (s streamStub) Find(ctx context.Context, treasuryID, recipient string) (*stream.Stream, error) {
	return s.findFn(ctx, treasuryID, recipient)
}
func (s streamStub) Quote(ctx context.Context, id string, now *int64) (grant.Quote, error) {
	return s.quoteFn(ctx, id, now)
}
func (s streamStub) List(ctx context.Context, opts stream.ListOptions) ([]stream.Stream, error) {
	return s.listFn(ctx, opts)
}

type vestingStub struct {
	createFn  func(context.Context, vesting.CreateRequest) (*vesting.Vesting, error)
	claimFn   func(context.Context, vesting.ClaimRequest) (*vesting.Vesting, error)
	controlFn func(context.Context, vesting.ControlRequest) (*vesting.Vesting, error)
	getFn     func(context.Context, string) (*vesting.Vesting, error)
	findFn    func(context.Context, string, string) (*vesting.Vesting, error)
	quoteFn   func(context.Context, string, *int64) (grant.Quote, error)
	listFn    func(context.Context, vesting.ListOptions) ([]vesting.Vesting, error)
}

func (s vestingStub) Create(ctx context.Context, req vesting.CreateRequest) (*vesting.Vesting, error) {
	return s.createFn(ctx, req)
}
func (s vestingStub) Claim(ctx context.Context, req vesting.ClaimRequest) (*vesting.Vesting, error) {
	return s.claimFn(ctx, req)
}
func (s vestingStub) Control(ctx context.Context, req vesting.ControlRequest) (*vesting.Vesting, error) {
	return s.controlFn(ctx, req)
}
func (s vestingStub) Get(ctx context.Context, id string) (*vesting.Vesting, error) {
	return s.getFn(ctx, id)
}
func (s vestingStub) Find(ctx context.Context, treasuryID, recipient string) (*vesting.Vesting, error) {
	return s.findFn(ctx, treasuryID, recipient)
}
func (s vestingStub) Quote(ctx context.Context, id string, now *int64) (grant.Quote, error) {
	return s.quoteFn(ctx, id, now)
}
func (s vestingStub) List(ctx context.Context, opts vesting.ListOptions) ([]vesting.Vesting, error) {
	return s.listFn(ctx, opts)
}

type activityStub struct {
	listFn func(context.Context, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a activityStub) GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return a.listFn(ctx, opts)
}

type custodyStub struct {
	balanceFn func(context.Context, string, string) (*custody.Account, error)
}

func (c custodyStub) Balance(ctx context.Context, owner, mint string) (*custody.Account, error) {
	return c.balanceFn(ctx, owner, mint)
}

func newHandler(svc Services) *Handler {
	return NewHandler(svc, zerolog.Nop())
}

func TestHandler_TreasuryCommands(t *testing.T) {
	ctx := context.Background()
	var gov treasury.GovernanceRequest
	handler := newHandler(Services{Treasuries: treasuryStub{
		initFn: func(_ context.Context, req treasury.InitRequest) (*treasury.Treasury, error) {
			return &treasury.Treasury{ID: "t1", Authority: req.Authority, Mint: req.Mint}, nil
		},
		getFn: func(_ context.Context, id string) (*treasury.Treasury, error) {
			return &treasury.Treasury{ID: id}, nil
		},
		governanceFn: func(_ context.Context, req treasury.GovernanceRequest) (*treasury.Treasury, error) {
			gov = req
			return &treasury.Treasury{ID: req.TreasuryID}, nil
		},
	}})

	res, err := handler.Handle(ctx, "dao", MethodInitTreasury, mustJSON(t, InitTreasuryParams{Mint: "mint-1"}))
	require.NoError(t, err)
	created := res.(TreasuryResponse).Treasury
	assert.Equal(t, "dao", created.Authority)
	assert.Equal(t, "mint-1", created.Mint)

	res, err = handler.Handle(ctx, "dao", MethodGetTreasury, nil)
	require.NoError(t, err)
	assert.Equal(t, grant.DeriveID(grant.KindTreasury, "dao"), res.(TreasuryResponse).Treasury.ID)

	res, err = handler.Handle(ctx, "", MethodGetTreasury, mustJSON(t, GetTreasuryParams{TreasuryID: "t9"}))
	require.NoError(t, err)
	assert.Equal(t, "t9", res.(TreasuryResponse).Treasury.ID)

	paused := true
	limit := uint64(500)
	_, err = handler.Handle(ctx, "dao", MethodSetGovernance, mustJSON(t, SetGovernanceParams{
		TreasuryID: "t1", IsPaused: &paused, MaxGrantAmount: &limit,
	}))
	require.NoError(t, err)
	assert.Equal(t, "dao", gov.Caller)
	require.NotNil(t, gov.IsPaused)
	assert.True(t, *gov.IsPaused)
	require.NotNil(t, gov.MaxGrantAmount)
	assert.Equal(t, uint64(500), *gov.MaxGrantAmount)
	assert.Nil(t, gov.MaxTotalAllocation)
}

func TestHandler_StreamCommands(t *testing.T) {
	ctx := context.Background()
	var (
		created   stream.CreateRequest
		withdrawn stream.WithdrawRequest
		actions   []grant.Action
		found     []string
	)
	handler := newHandler(Services{Streams: streamStub{
		createFn: func(_ context.Context, req stream.CreateRequest) (*stream.Stream, error) {
			created = req
			return &stream.Stream{ID: "s1"}, nil
		},
		withdrawFn: func(_ context.Context, req stream.WithdrawRequest) (*stream.Stream, error) {
			withdrawn = req
			return &stream.Stream{ID: req.StreamID, WithdrawnAmount: req.Amount}, nil
		},
		controlFn: func(_ context.Context, req stream.ControlRequest) (*stream.Stream, error) {
			actions = append(actions, req.Action)
			return &stream.Stream{ID: req.StreamID}, nil
		},
		getFn: func(_ context.Context, id string) (*stream.Stream, error) {
			return &stream.Stream{ID: id}, nil
		},
		findFn: func(_ context.Context, treasuryID, recipient string) (*stream.Stream, error) {
			found = append(found, treasuryID, recipient)
			return &stream.Stream{ID: "s1"}, nil
		},
		quoteFn: func(_ context.Context, id string, now *int64) (grant.Quote, error) {
			require.NotNil(t, now)
			return grant.Quote{GrantID: id, Now: *now}, nil
		},
	}})

	_, err := handler.Handle(ctx, "dao", MethodCreateStream, mustJSON(t, CreateStreamParams{
		TreasuryID: "t1", Recipient: "alice", TotalAmount: 1000, StartTime: 0, EndTime: 100,
		Category: grant.CategoryContributors, Description: "core",
	}))
	require.NoError(t, err)
	assert.Equal(t, "dao", created.Caller)
	assert.Equal(t, "alice", created.Recipient)
	assert.Equal(t, uint64(1000), created.TotalAmount)
	assert.Equal(t, grant.CategoryContributors, created.Category)

	now := int64(40)
	res, err := handler.Handle(ctx, "alice", MethodWithdrawStream, mustJSON(t, ReleaseParams{GrantID: "s1", Amount: 400, Now: &now}))
	require.NoError(t, err)
	assert.Equal(t, uint64(400), res.(StreamResponse).Stream.WithdrawnAmount)
	assert.Equal(t, "alice", withdrawn.Caller)
	require.NotNil(t, withdrawn.Now)
	assert.Equal(t, int64(40), *withdrawn.Now)

	for _, method := range []string{MethodPauseStream, MethodResumeStream, MethodCancelStream} {
		_, err := handler.Handle(ctx, "dao", method, mustJSON(t, GrantParams{GrantID: "s1"}))
		require.NoError(t, err)
	}
	assert.Equal(t, []grant.Action{grant.ActionPause, grant.ActionResume, grant.ActionCancel}, actions)

	res, err = handler.Handle(ctx, "", MethodGetStream, mustJSON(t, GrantParams{GrantID: "s7"}))
	require.NoError(t, err)
	assert.Equal(t, "s7", res.(StreamResponse).Stream.ID)

	_, err = handler.Handle(ctx, "", MethodGetStream, mustJSON(t, GrantParams{TreasuryID: "t1", Recipient: "alice"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "alice"}, found)

	res, err = handler.Handle(ctx, "", MethodQuoteStream, mustJSON(t, QuoteParams{GrantID: "s1", Now: &now}))
	require.NoError(t, err)
	assert.Equal(t, int64(40), res.(QuoteResponse).Quote.Now)
}

func TestHandler_VestingCommands(t *testing.T) {
	ctx := context.Background()
	var (
		created vesting.CreateRequest
		claimed vesting.ClaimRequest
		actions []grant.Action
	)
	handler := newHandler(Services{Vestings: vestingStub{
		createFn: func(_ context.Context, req vesting.CreateRequest) (*vesting.Vesting, error) {
			created = req
			return &vesting.Vesting{ID: "v1"}, nil
		},
		claimFn: func(_ context.Context, req vesting.ClaimRequest) (*vesting.Vesting, error) {
			claimed = req
			return &vesting.Vesting{ID: req.VestingID}, nil
		},
		controlFn: func(_ context.Context, req vesting.ControlRequest) (*vesting.Vesting, error) {
			actions = append(actions, req.Action)
			return &vesting.Vesting{ID: req.VestingID}, nil
		},
		getFn: func(_ context.Context, id string) (*vesting.Vesting, error) {
			return &vesting.Vesting{ID: id}, nil
		},
		findFn: func(_ context.Context, _, _ string) (*vesting.Vesting, error) {
			return &vesting.Vesting{ID: "v1"}, nil
		},
		quoteFn: func(_ context.Context, id string, _ *int64) (grant.Quote, error) {
			return grant.Quote{GrantID: id}, nil
		},
	}})

	_, err := handler.Handle(ctx, "", MethodCreateVesting, mustJSON(t, CreateVestingParams{
		Caller: "dao", TreasuryID: "t1", Recipient: "bob", Kind: vesting.KindCliff,
		TotalAmount: 1200, StartTime: 0, CliffTime: 30, EndTime: 90, Category: grant.CategoryGrants,
	}))
	require.NoError(t, err)
	assert.Equal(t, "dao", created.Caller)
	assert.Equal(t, vesting.KindCliff, created.Kind)
	assert.Equal(t, int64(30), created.CliffTime)

	_, err = handler.Handle(ctx, "bob", MethodClaimVesting, mustJSON(t, ReleaseParams{GrantID: "v1", Amount: 400}))
	require.NoError(t, err)
	assert.Equal(t, "bob", claimed.Caller)
	assert.Nil(t, claimed.Now)

	for _, method := range []string{MethodPauseVesting, MethodResumeVesting, MethodCancelVesting} {
		_, err := handler.Handle(ctx, "dao", method, mustJSON(t, GrantParams{GrantID: "v1"}))
		require.NoError(t, err)
	}
	assert.Equal(t, []grant.Action{grant.ActionPause, grant.ActionResume, grant.ActionCancel}, actions)

	res, err := handler.Handle(ctx, "", MethodGetVesting, mustJSON(t, GrantParams{TreasuryID: "t1", Recipient: "bob"}))
	require.NoError(t, err)
	assert.Equal(t, "v1", res.(VestingResponse).Vesting.ID)

	res, err = handler.Handle(ctx, "", MethodQuoteVesting, mustJSON(t, QuoteParams{GrantID: "v1"}))
	require.NoError(t, err)
	assert.Equal(t, "v1", res.(QuoteResponse).Quote.GrantID)
}

func TestHandler_ReadCommands(t *testing.T) {
	ctx := context.Background()
	status := grant.StatusActive
	var activityOpts activity.ListActivityOptions
	handler := newHandler(Services{
		Streams: streamStub{listFn: func(_ context.Context, opts stream.ListOptions) ([]stream.Stream, error) {
			assert.Equal(t, "t1", opts.TreasuryID)
			require.NotNil(t, opts.Status)
			assert.Equal(t, grant.StatusActive, *opts.Status)
			return []stream.Stream{{ID: "s1"}}, nil
		}},
		Vestings: vestingStub{listFn: func(_ context.Context, opts vesting.ListOptions) ([]vesting.Vesting, error) {
			assert.Equal(t, 5, opts.Limit)
			return []vesting.Vesting{{ID: "v1"}, {ID: "v2"}}, nil
		}},
		Activity: activityStub{listFn: func(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
			activityOpts = opts
			return []activity.ActivityEntry{{ActivityType: activity.TypeStreamCreated}}, nil
		}},
		Custody: custodyStub{balanceFn: func(_ context.Context, owner, mint string) (*custody.Account, error) {
			return &custody.Account{Owner: owner, Mint: mint, Balance: 77}, nil
		}},
	})

	res, err := handler.Handle(ctx, "", MethodListGrants, mustJSON(t, ListGrantsParams{TreasuryID: "t1", Status: &status, Limit: 5}))
	require.NoError(t, err)
	list := res.(ListGrantsResponse)
	assert.Len(t, list.Streams, 1)
	assert.Len(t, list.Vestings, 2)

	typ := activity.TypeStreamCreated
	res, err = handler.Handle(ctx, "", MethodGetActivity, mustJSON(t, GetActivityParams{TreasuryID: "t1", ActivityType: &typ, Limit: 10}))
	require.NoError(t, err)
	assert.Len(t, res.(ActivityResponse).Entries, 1)
	assert.Equal(t, "t1", activityOpts.TreasuryID)
	require.NotNil(t, activityOpts.ActivityType)
	assert.Equal(t, activity.TypeStreamCreated, *activityOpts.ActivityType)

	res, err = handler.Handle(ctx, "alice", MethodGetBalance, mustJSON(t, GetBalanceParams{Mint: "mint-1"}))
	require.NoError(t, err)
	acct := res.(BalanceResponse).Account
	assert.Equal(t, "alice", acct.Owner)
	assert.Equal(t, uint64(77), acct.Balance)

	res, err = handler.Handle(ctx, "", MethodGetBalance, mustJSON(t, GetBalanceParams{Owner: "bob", Mint: "mint-1"}))
	require.NoError(t, err)
	assert.Equal(t, "bob", res.(BalanceResponse).Account.Owner)
}

func TestHandler_CallerResolution(t *testing.T) {
	ctx := context.Background()
	handler := newHandler(Services{Treasuries: treasuryStub{
		initFn: func(_ context.Context, req treasury.InitRequest) (*treasury.Treasury, error) {
			return &treasury.Treasury{Authority: req.Authority}, nil
		},
	}})

	res, err := handler.Handle(ctx, "", MethodInitTreasury, mustJSON(t, InitTreasuryParams{Caller: "dao", Mint: "m"}))
	require.NoError(t, err)
	assert.Equal(t, "dao", res.(TreasuryResponse).Treasury.Authority)

	res, err = handler.Handle(ctx, "dao", MethodInitTreasury, mustJSON(t, InitTreasuryParams{Caller: "dao", Mint: "m"}))
	require.NoError(t, err)
	assert.Equal(t, "dao", res.(TreasuryResponse).Treasury.Authority)

	_, err = handler.Handle(ctx, "", MethodInitTreasury, mustJSON(t, InitTreasuryParams{Mint: "m"}))
	requireCode(t, err, CodeCallerRequired)

	_, err = handler.Handle(ctx, "dao", MethodInitTreasury, mustJSON(t, InitTreasuryParams{Caller: "mallory", Mint: "m"}))
	apiErr := requireCode(t, err, CodeCallerMismatch)
	assert.Equal(t, grant.KindAuthorization, apiErr.Kind)
}

func TestHandler_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	handler := newHandler(Services{Streams: streamStub{
		withdrawFn: func(_ context.Context, _ stream.WithdrawRequest) (*stream.Stream, error) {
			return nil, grant.ErrInsufficientUnlocked
		},
		getFn: func(_ context.Context, _ string) (*stream.Stream, error) {
			return nil, stream.ErrStreamNotFound
		},
	}})

	_, err := handler.Handle(ctx, "alice", MethodWithdrawStream, mustJSON(t, ReleaseParams{GrantID: "s1", Amount: 10}))
	apiErr := requireCode(t, err, "INSUFFICIENT_UNLOCKED")
	assert.Equal(t, grant.KindValidation, apiErr.Kind)
	assert.NotEmpty(t, apiErr.RecoveryHint)

	_, err = handler.Handle(ctx, "", MethodGetStream, mustJSON(t, GrantParams{GrantID: "missing"}))
	apiErr = requireCode(t, err, "STREAM_NOT_FOUND")
	assert.Equal(t, grant.KindNotFound, apiErr.Kind)

	_, err = handler.Handle(ctx, "", "drain_treasury", nil)
	requireCode(t, err, CodeMethodNotFound)

	_, err = handler.Handle(ctx, "", MethodGetStream, json.RawMessage(`{"grant_id":`))
	requireCode(t, err, CodeInvalidParams)
}

func requireCode(t *testing.T, err error, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
