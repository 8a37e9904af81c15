package treasury

import "github.com/rpggio/grantflow/internal/domain/grant"

var (
	ErrPaused                      = grant.NewError(grant.KindLimit, "TREASURY_PAUSED", "treasury operations are currently paused")
	ErrGrantAmountExceedsLimit     = grant.NewError(grant.KindLimit, "GRANT_AMOUNT_EXCEEDS_LIMIT", "grant amount exceeds maximum allowed per grant")
	ErrTotalAllocationExceedsLimit = grant.NewError(grant.KindLimit, "TOTAL_ALLOCATION_EXCEEDS_LIMIT", "total allocation would exceed treasury limits")
	ErrTreasuryNotFound            = grant.NewError(grant.KindNotFound, "TREASURY_NOT_FOUND", "treasury not found")
	ErrTreasuryExists              = grant.NewError(grant.KindConflict, "TREASURY_EXISTS", "treasury already exists for this authority")
	ErrInvalidInput                = grant.NewError(grant.KindValidation, "INVALID_TREASURY_INPUT", "authority and mint are required")
)
