package activity

import "github.com/rpggio/grantflow/internal/domain/grant"

// ErrInvalidInput indicates a malformed activity entry or query.
var ErrInvalidInput = grant.NewError(grant.KindValidation, "INVALID_ACTIVITY_INPUT", "invalid activity input")
