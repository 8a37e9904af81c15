package vesting

import "github.com/rpggio/grantflow/internal/domain/grant"

var (
	ErrVestingNotFound = grant.NewError(grant.KindNotFound, "VESTING_NOT_FOUND", "vesting not found")
	ErrVestingExists   = grant.NewError(grant.KindConflict, "VESTING_EXISTS", "vesting already exists for this recipient")
	ErrNotActive       = grant.NewError(grant.KindState, "VESTING_NOT_ACTIVE", "vesting is not in active status")
	ErrNotPaused       = grant.NewError(grant.KindState, "VESTING_NOT_PAUSED", "vesting is not paused")
	ErrCannotCancel    = grant.NewError(grant.KindState, "VESTING_CANNOT_CANCEL", "vesting cannot be cancelled in current state")
	ErrInvalidKind     = grant.NewError(grant.KindValidation, "INVALID_VESTING_KIND", "vesting kind must be linear or cliff")
	ErrInvalidAction   = grant.NewError(grant.KindValidation, "INVALID_ACTION", "unknown status action")
)
