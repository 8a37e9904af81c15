package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes every Handler method as an MCP tool. Input schemas are
// inferred from the param types; results are returned as structured content.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Treasury
	addTool[InitTreasuryParams](server, h, MethodInitTreasury,
		"Create the caller's treasury for a token mint with unlimited, unpaused governance")
	addTool[GetTreasuryParams](server, h, MethodGetTreasury,
		"Get a treasury by id, or the caller's own treasury")
	addTool[SetGovernanceParams](server, h, MethodSetGovernance,
		"Pause the treasury or change its per-grant and total allocation limits; authority only")

	// Streams
	addTool[CreateStreamParams](server, h, MethodCreateStream,
		"Create a linear payment stream funded from the treasury authority's balance")
	addTool[ReleaseParams](server, h, MethodWithdrawStream,
		"Withdraw an unlocked amount from a stream; recipient only")
	addTool[GrantParams](server, h, MethodPauseStream,
		"Pause an active stream; authority only")
	addTool[GrantParams](server, h, MethodResumeStream,
		"Resume a paused stream; authority only")
	addTool[GrantParams](server, h, MethodCancelStream,
		"Cancel an active or paused stream; authority only")
	addTool[GrantParams](server, h, MethodGetStream,
		"Get a stream by grant_id, or by treasury_id and recipient")
	addTool[QuoteParams](server, h, MethodQuoteStream,
		"Report how much of a stream can be withdrawn at a given time")

	// Vesting
	addTool[CreateVestingParams](server, h, MethodCreateVesting,
		"Create a linear or cliff vesting schedule funded from the treasury authority's balance")
	addTool[ReleaseParams](server, h, MethodClaimVesting,
		"Claim an unlocked amount from a vesting schedule; recipient only")
	addTool[GrantParams](server, h, MethodPauseVesting,
		"Pause an active vesting schedule; authority only")
	addTool[GrantParams](server, h, MethodResumeVesting,
		"Resume a paused vesting schedule; authority only")
	addTool[GrantParams](server, h, MethodCancelVesting,
		"Cancel an active or paused vesting schedule; authority only")
	addTool[GrantParams](server, h, MethodGetVesting,
		"Get a vesting schedule by grant_id, or by treasury_id and recipient")
	addTool[QuoteParams](server, h, MethodQuoteVesting,
		"Report how much of a vesting schedule can be claimed at a given time")

	// Reads
	addTool[ListGrantsParams](server, h, MethodListGrants,
		"List the streams and vesting schedules of a treasury")
	addTool[GetActivityParams](server, h, MethodGetActivity,
		"Get recent treasury activity, newest first")
	addTool[GetBalanceParams](server, h, MethodGetBalance,
		"Get a custody balance for an owner and mint")
}

func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			raw, err := json.Marshal(in)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: encoding params: %w", name, err)
			}
			result, err := h.Handle(ctx, principalFromContext(ctx), name, raw)
			if err != nil {
				return nil, nil, toolError(err)
			}
			return nil, result, nil
		})
}

// toolError renders coded failures as JSON so clients can branch on the code.
func toolError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		return err
	}
	return errors.New(string(data))
}
