package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `grantflow manages token treasuries that pay contributors through streams and vesting schedules.

Core concepts:
- Treasury: one per authority and mint. Tracks total grants, allocated and paid amounts, and governance limits.
- Stream: linear unlock from start_time to end_time. The recipient withdraws what has unlocked.
- Vesting: linear or cliff. A cliff schedule unlocks nothing before cliff_time and then follows the linear curve from start_time.
- Custody: every grant holds its funds in its own account until released.

Workflow:
1) init_treasury once per authority, then fund the authority's balance (grantflow deposit).
2) Create grants with create_stream or create_vesting. Creation is refused when the treasury is paused or a limit would be exceeded.
3) Recipients call quote_stream or quote_vesting, then withdraw_stream or claim_vesting.
4) The authority may pause, resume or cancel a grant. Cancelled and completed grants are final.
5) Audit with get_activity and list_grants.

Amounts are integer base units. Times are unix seconds. Pass now to evaluate at a fixed time.

When authentication is disabled, pass caller on every mutating tool.

Docs:
- grantflow://docs/schedules (unlock math and rounding)
- grantflow://docs/errors (error codes and how to recover)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "grantflow://docs/schedules",
		Name:        "docs_schedules",
		Title:       "Unlock schedules",
		Description: "How streams and vesting schedules unlock tokens over time.",
		Content: `# Unlock schedules

## Linear

unlocked(now) = total * (now - start) / (end - start), rounded down.

- Before start nothing is unlocked.
- At or after end the full total is unlocked.
- Releasable is unlocked minus what was already released.

## Cliff

- Before cliff_time nothing is unlocked.
- From cliff_time the linear curve applies, measured from start_time.
  Tokens accrued between start and cliff become available at the cliff.

## Progress

Quotes report progress in basis points (0 to 10000) of released plus releasable over total.

## Status

ACTIVE and PAUSED grants can be cancelled. Only ACTIVE grants release.
A grant becomes COMPLETED when its full total has been released.
`,
	},
	{
		URI:         "grantflow://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Error codes returned by tools and the usual recovery.",
		Content: `# Error codes

Tool errors carry a JSON body with code, kind, message and recovery_hint.

| Kind | Codes |
| --- | --- |
| validation | INVALID_TOTAL_AMOUNT, INVALID_TIMING, INVALID_CLIFF_TIMING, DESCRIPTION_TOO_LONG, INVALID_CATEGORY, INVALID_MINT, INVALID_RECIPIENT, INVALID_AMOUNT, INVALID_ACTION, INVALID_VESTING_KIND, INVALID_TRANSFER, INVALID_TREASURY_INPUT, INVALID_ACTIVITY_INPUT, NOT_STARTED, INSUFFICIENT_UNLOCKED, INVALID_PARAMS, CALLER_REQUIRED |
| state | STREAM_NOT_ACTIVE, VESTING_NOT_ACTIVE, STREAM_NOT_PAUSED, VESTING_NOT_PAUSED, STREAM_CANNOT_CANCEL, VESTING_CANNOT_CANCEL |
| authorization | UNAUTHORIZED, UNAUTHORIZED_TRANSFER, CALLER_MISMATCH |
| limit | TREASURY_PAUSED, GRANT_AMOUNT_EXCEEDS_LIMIT, TOTAL_ALLOCATION_EXCEEDS_LIMIT, INSUFFICIENT_FUNDS |
| not found | TREASURY_NOT_FOUND, STREAM_NOT_FOUND, VESTING_NOT_FOUND |
| conflict | TREASURY_EXISTS, STREAM_EXISTS, VESTING_EXISTS |
| arithmetic | RELEASE_OVERFLOW, BALANCE_OVERFLOW |

A failed call changes nothing. Over JSON-RPC, a request to /rpc without a
valid API key is answered with HTTP 401 and an authorization error coded
AUTHENTICATION_REQUIRED or INVALID_API_KEY.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
