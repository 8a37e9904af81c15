package mcp

import (
	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
)

// Method names accepted by Handler.Handle. Each one is also registered as an MCP tool.
const (
	MethodInitTreasury   = "init_treasury"
	MethodGetTreasury    = "get_treasury"
	MethodSetGovernance  = "set_governance"
	MethodCreateStream   = "create_stream"
	MethodWithdrawStream = "withdraw_stream"
	MethodPauseStream    = "pause_stream"
	MethodResumeStream   = "resume_stream"
	MethodCancelStream   = "cancel_stream"
	MethodGetStream      = "get_stream"
	MethodQuoteStream    = "quote_stream"
	MethodCreateVesting  = "create_vesting"
	MethodClaimVesting   = "claim_vesting"
	MethodPauseVesting   = "pause_vesting"
	MethodResumeVesting  = "resume_vesting"
	MethodCancelVesting  = "cancel_vesting"
	MethodGetVesting     = "get_vesting"
	MethodQuoteVesting   = "quote_vesting"
	MethodListGrants     = "list_grants"
	MethodGetActivity    = "get_activity"
	MethodGetBalance     = "get_balance"
)

type InitTreasuryParams struct {
	Caller string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	Mint   string `json:"mint" jsonschema:"token mint every grant of the treasury pays in"`
}

type GetTreasuryParams struct {
	Caller     string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID string `json:"treasury_id,omitempty" jsonschema:"treasury id; defaults to the caller's own treasury"`
}

type SetGovernanceParams struct {
	Caller             string  `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID         string  `json:"treasury_id" jsonschema:"treasury id"`
	IsPaused           *bool   `json:"is_paused,omitempty" jsonschema:"pause or unpause creation and release"`
	MaxGrantAmount     *uint64 `json:"max_grant_amount,omitempty" jsonschema:"largest total amount a single grant may have"`
	MaxTotalAllocation *uint64 `json:"max_total_allocation,omitempty" jsonschema:"cap on the sum of all grant totals"`
}

type CreateStreamParams struct {
	Caller      string         `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID  string         `json:"treasury_id" jsonschema:"treasury funding the stream"`
	Recipient   string         `json:"recipient" jsonschema:"party allowed to withdraw"`
	Mint        string         `json:"mint,omitempty" jsonschema:"must match the treasury mint when set"`
	TotalAmount uint64         `json:"total_amount" jsonschema:"amount streamed over the schedule"`
	StartTime   int64          `json:"start_time" jsonschema:"unix seconds when unlocking starts"`
	EndTime     int64          `json:"end_time" jsonschema:"unix seconds when the full amount is unlocked"`
	Category    grant.Category `json:"category" jsonschema:"contributors, grants, operations, marketing, development or other"`
	Description string         `json:"description,omitempty" jsonschema:"free text, at most 64 characters"`
}

type CreateVestingParams struct {
	Caller      string         `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID  string         `json:"treasury_id" jsonschema:"treasury funding the vesting"`
	Recipient   string         `json:"recipient" jsonschema:"party allowed to claim"`
	Mint        string         `json:"mint,omitempty" jsonschema:"must match the treasury mint when set"`
	Kind        vesting.Kind   `json:"kind" jsonschema:"linear or cliff"`
	TotalAmount uint64         `json:"total_amount" jsonschema:"amount vested over the schedule"`
	StartTime   int64          `json:"start_time" jsonschema:"unix seconds when the schedule starts"`
	CliffTime   int64          `json:"cliff_time,omitempty" jsonschema:"unix seconds before which nothing unlocks; cliff kind only"`
	EndTime     int64          `json:"end_time" jsonschema:"unix seconds when the full amount is unlocked"`
	Category    grant.Category `json:"category" jsonschema:"contributors, grants, operations, marketing, development or other"`
	Description string         `json:"description,omitempty" jsonschema:"free text, at most 64 characters"`
}

type ReleaseParams struct {
	Caller  string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	GrantID string `json:"grant_id" jsonschema:"stream or vesting id"`
	Amount  uint64 `json:"amount" jsonschema:"amount to release"`
	Now     *int64 `json:"now,omitempty" jsonschema:"evaluation time in unix seconds; defaults to the server clock"`
}

type GrantParams struct {
	Caller     string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	GrantID    string `json:"grant_id,omitempty" jsonschema:"stream or vesting id"`
	TreasuryID string `json:"treasury_id,omitempty" jsonschema:"treasury id, used with recipient when grant_id is omitted"`
	Recipient  string `json:"recipient,omitempty" jsonschema:"recipient, used with treasury_id when grant_id is omitted"`
}

type QuoteParams struct {
	Caller  string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	GrantID string `json:"grant_id" jsonschema:"stream or vesting id"`
	Now     *int64 `json:"now,omitempty" jsonschema:"evaluation time in unix seconds; defaults to the server clock"`
}

type ListGrantsParams struct {
	Caller     string        `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID string        `json:"treasury_id" jsonschema:"treasury id"`
	Recipient  string        `json:"recipient,omitempty" jsonschema:"only grants of this recipient"`
	Status     *grant.Status `json:"status,omitempty" jsonschema:"ACTIVE, PAUSED, COMPLETED or CANCELLED"`
	Limit      int           `json:"limit,omitempty" jsonschema:"maximum grants of each kind"`
	Offset     int           `json:"offset,omitempty" jsonschema:"grants of each kind to skip"`
}

type GetActivityParams struct {
	Caller       string                 `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	TreasuryID   string                 `json:"treasury_id" jsonschema:"treasury id"`
	GrantID      *string                `json:"grant_id,omitempty" jsonschema:"only entries of this grant"`
	ActivityType *activity.ActivityType `json:"type,omitempty" jsonschema:"only entries of this type"`
	Limit        int                    `json:"limit,omitempty" jsonschema:"maximum entries, default 50"`
	Offset       int                    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type GetBalanceParams struct {
	Caller string `json:"caller,omitempty" jsonschema:"acting party when authentication is disabled"`
	Owner  string `json:"owner,omitempty" jsonschema:"account owner; defaults to the caller"`
	Mint   string `json:"mint" jsonschema:"token mint"`
}

type TreasuryResponse struct {
	Treasury *treasury.Treasury `json:"treasury"`
}

type StreamResponse struct {
	Stream *stream.Stream `json:"stream"`
}

type VestingResponse struct {
	Vesting *vesting.Vesting `json:"vesting"`
}

type QuoteResponse struct {
	Quote grant.Quote `json:"quote"`
}

type ListGrantsResponse struct {
	Streams  []stream.Stream   `json:"streams"`
	Vestings []vesting.Vesting `json:"vestings"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

type BalanceResponse struct {
	Account *custody.Account `json:"account"`
}
