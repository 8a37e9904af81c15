package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/grant"
)

// Codes of failures raised by the dispatch layer itself.
const (
	CodeMethodNotFound = "METHOD_NOT_FOUND"
	CodeInvalidParams  = "INVALID_PARAMS"
	CodeCallerRequired = "CALLER_REQUIRED"
	CodeCallerMismatch = "CALLER_MISMATCH"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string     `json:"code"`
	Kind         grant.Kind `json:"kind,omitempty"`
	Message      string     `json:"message"`
	Details      any        `json:"details,omitempty"`
	RecoveryHint string     `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

var recoveryHints = map[string]string{
	"TREASURY_NOT_FOUND":             "Call init_treasury first or check the treasury id",
	"TREASURY_EXISTS":                "Use get_treasury; each authority owns one treasury",
	"TREASURY_PAUSED":                "Ask the treasury authority to unpause via set_governance",
	"GRANT_AMOUNT_EXCEEDS_LIMIT":     "Lower total_amount or raise max_grant_amount",
	"TOTAL_ALLOCATION_EXCEEDS_LIMIT": "Lower total_amount or raise max_total_allocation",
	"STREAM_NOT_FOUND":               "Check the grant id or look it up by treasury_id and recipient",
	"VESTING_NOT_FOUND":              "Check the grant id or look it up by treasury_id and recipient",
	"STREAM_EXISTS":                  "Each recipient holds at most one stream per treasury",
	"VESTING_EXISTS":                 "Each recipient holds at most one vesting per treasury",
	"STREAM_NOT_ACTIVE":              "Check the stream status with get_stream",
	"VESTING_NOT_ACTIVE":             "Check the vesting status with get_vesting",
	"NOT_STARTED":                    "Retry at or after start_time",
	"INSUFFICIENT_UNLOCKED":          "Use a quote tool to read the releasable amount",
	"INSUFFICIENT_FUNDS":             "Deposit tokens to the funding account first",
	"UNAUTHORIZED":                   "Only the treasury authority may create or control grants; only the recipient may release",
	CodeCallerRequired:               "Pass caller or authenticate with an API key",
	CodeCallerMismatch:               "Omit caller when authenticated",
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var domainErr *grant.Error
	if !errors.As(err, &domainErr) || domainErr.Code == "" {
		return nil
	}
	return &APIError{
		Code:         domainErr.Code,
		Kind:         domainErr.Kind,
		Message:      domainErr.Message,
		RecoveryHint: recoveryHints[domainErr.Code],
	}
}

func invalidParams(err error) *APIError {
	return &APIError{Code: CodeInvalidParams, Kind: grant.KindValidation, Message: err.Error()}
}

func (e *APIError) KindValue() string {
	return string(e.Kind)
}
