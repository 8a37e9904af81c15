package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rpggio/grantflow/internal/observability/metrics"
	"github.com/rs/zerolog"
)

// Handler dispatches MCP commands.
type Handler struct {
	svc    Services
	logger zerolog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Handle dispatches a method call on behalf of principal. An empty principal
// means the request is unauthenticated and the caller field of params is used.
func (h *Handler) Handle(ctx context.Context, principal, method string, params json.RawMessage) (any, error) {
	start := time.Now()
	result, err := h.dispatch(ctx, principal, method, params)
	metrics.RecordOperation(method, time.Since(start), err != nil)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("method", method).Msg("operation failed")
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, principal, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodInitTreasury:
		var req InitTreasuryParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		t, err := h.svc.Treasuries.Init(ctx, treasury.InitRequest{Authority: caller, Mint: req.Mint})
		if err != nil {
			return nil, err
		}
		h.logger.Info().Str("treasury_id", t.ID).Str("authority", caller).Msg("treasury initialized via mcp")
		return TreasuryResponse{Treasury: t}, nil

	case MethodGetTreasury:
		var req GetTreasuryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := req.TreasuryID
		if id == "" {
			caller, err := resolveCaller(principal, req.Caller)
			if err != nil {
				return nil, err
			}
			id = grant.DeriveID(grant.KindTreasury, caller)
		}
		t, err := h.svc.Treasuries.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return TreasuryResponse{Treasury: t}, nil

	case MethodSetGovernance:
		var req SetGovernanceParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		t, err := h.svc.Treasuries.SetGovernance(ctx, treasury.GovernanceRequest{
			TreasuryID:         req.TreasuryID,
			Caller:             caller,
			IsPaused:           req.IsPaused,
			MaxGrantAmount:     req.MaxGrantAmount,
			MaxTotalAllocation: req.MaxTotalAllocation,
		})
		if err != nil {
			return nil, err
		}
		return TreasuryResponse{Treasury: t}, nil

	case MethodCreateStream:
		var req CreateStreamParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		st, err := h.svc.Streams.Create(ctx, stream.CreateRequest{
			TreasuryID:  req.TreasuryID,
			Caller:      caller,
			Recipient:   req.Recipient,
			Mint:        req.Mint,
			TotalAmount: req.TotalAmount,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			return nil, err
		}
		return StreamResponse{Stream: st}, nil

	case MethodWithdrawStream:
		var req ReleaseParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		st, err := h.svc.Streams.Withdraw(ctx, stream.WithdrawRequest{
			StreamID: req.GrantID,
			Caller:   caller,
			Amount:   req.Amount,
			Now:      req.Now,
		})
		if err != nil {
			return nil, err
		}
		return StreamResponse{Stream: st}, nil

	case MethodPauseStream, MethodResumeStream, MethodCancelStream:
		var req GrantParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		st, err := h.svc.Streams.Control(ctx, stream.ControlRequest{
			StreamID: req.GrantID,
			Caller:   caller,
			Action:   controlActions[method],
		})
		if err != nil {
			return nil, err
		}
		return StreamResponse{Stream: st}, nil

	case MethodGetStream:
		var req GrantParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var (
			st  *stream.Stream
			err error
		)
		if req.GrantID != "" {
			st, err = h.svc.Streams.Get(ctx, req.GrantID)
		} else {
			st, err = h.svc.Streams.Find(ctx, req.TreasuryID, req.Recipient)
		}
		if err != nil {
			return nil, err
		}
		return StreamResponse{Stream: st}, nil

	case MethodQuoteStream:
		var req QuoteParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		q, err := h.svc.Streams.Quote(ctx, req.GrantID, req.Now)
		if err != nil {
			return nil, err
		}
		return QuoteResponse{Quote: q}, nil

	case MethodCreateVesting:
		var req CreateVestingParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		v, err := h.svc.Vestings.Create(ctx, vesting.CreateRequest{
			TreasuryID:  req.TreasuryID,
			Caller:      caller,
			Recipient:   req.Recipient,
			Mint:        req.Mint,
			Kind:        req.Kind,
			TotalAmount: req.TotalAmount,
			StartTime:   req.StartTime,
			CliffTime:   req.CliffTime,
			EndTime:     req.EndTime,
			Category:    req.Category,
			Description: req.Description,
		})
		if err != nil {
			return nil, err
		}
		return VestingResponse{Vesting: v}, nil

	case MethodClaimVesting:
		var req ReleaseParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		v, err := h.svc.Vestings.Claim(ctx, vesting.ClaimRequest{
			VestingID: req.GrantID,
			Caller:    caller,
			Amount:    req.Amount,
			Now:       req.Now,
		})
		if err != nil {
			return nil, err
		}
		return VestingResponse{Vesting: v}, nil

	case MethodPauseVesting, MethodResumeVesting, MethodCancelVesting:
		var req GrantParams
		caller, err := decodeWithCaller(params, &req, principal, &req.Caller)
		if err != nil {
			return nil, err
		}
		v, err := h.svc.Vestings.Control(ctx, vesting.ControlRequest{
			VestingID: req.GrantID,
			Caller:    caller,
			Action:    controlActions[method],
		})
		if err != nil {
			return nil, err
		}
		return VestingResponse{Vesting: v}, nil

	case MethodGetVesting:
		var req GrantParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var (
			v   *vesting.Vesting
			err error
		)
		if req.GrantID != "" {
			v, err = h.svc.Vestings.Get(ctx, req.GrantID)
		} else {
			v, err = h.svc.Vestings.Find(ctx, req.TreasuryID, req.Recipient)
		}
		if err != nil {
			return nil, err
		}
		return VestingResponse{Vesting: v}, nil

	case MethodQuoteVesting:
		var req QuoteParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		q, err := h.svc.Vestings.Quote(ctx, req.GrantID, req.Now)
		if err != nil {
			return nil, err
		}
		return QuoteResponse{Quote: q}, nil

	case MethodListGrants:
		var req ListGrantsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		streams, err := h.svc.Streams.List(ctx, stream.ListOptions{
			TreasuryID: req.TreasuryID,
			Recipient:  req.Recipient,
			Status:     req.Status,
			Limit:      req.Limit,
			Offset:     req.Offset,
		})
		if err != nil {
			return nil, err
		}
		vestings, err := h.svc.Vestings.List(ctx, vesting.ListOptions{
			TreasuryID: req.TreasuryID,
			Recipient:  req.Recipient,
			Status:     req.Status,
			Limit:      req.Limit,
			Offset:     req.Offset,
		})
		if err != nil {
			return nil, err
		}
		return ListGrantsResponse{Streams: streams, Vestings: vestings}, nil

	case MethodGetActivity:
		var req GetActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.svc.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			TreasuryID:   req.TreasuryID,
			GrantID:      req.GrantID,
			ActivityType: req.ActivityType,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, err
		}
		return ActivityResponse{Entries: entries}, nil

	case MethodGetBalance:
		var req GetBalanceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		owner := req.Owner
		if owner == "" {
			caller, err := resolveCaller(principal, req.Caller)
			if err != nil {
				return nil, err
			}
			owner = caller
		}
		acct, err := h.svc.Custody.Balance(ctx, owner, req.Mint)
		if err != nil {
			return nil, err
		}
		return BalanceResponse{Account: acct}, nil

	default:
		return nil, &APIError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method: %s", method),
		}
	}
}

var controlActions = map[string]grant.Action{
	MethodPauseStream:   grant.ActionPause,
	MethodResumeStream:  grant.ActionResume,
	MethodCancelStream:  grant.ActionCancel,
	MethodPauseVesting:  grant.ActionPause,
	MethodResumeVesting: grant.ActionResume,
	MethodCancelVesting: grant.ActionCancel,
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return invalidParams(err)
	}
	return nil
}

func decodeWithCaller(params json.RawMessage, out any, principal string, requested *string) (string, error) {
	if err := decodeParams(params, out); err != nil {
		return "", err
	}
	return resolveCaller(principal, *requested)
}

// resolveCaller returns the authenticated principal, or the requested caller
// when the request is unauthenticated.
func resolveCaller(principal, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if principal != "" {
		if requested != "" && requested != principal {
			return "", &APIError{Code: CodeCallerMismatch, Kind: grant.KindAuthorization, Message: "caller does not match the authenticated principal"}
		}
		return principal, nil
	}
	if requested == "" {
		return "", &APIError{Code: CodeCallerRequired, Kind: grant.KindValidation, Message: "caller is required"}
	}
	return requested, nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
