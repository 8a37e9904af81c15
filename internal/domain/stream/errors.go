package stream

import "github.com/rpggio/grantflow/internal/domain/grant"

var (
	ErrStreamNotFound = grant.NewError(grant.KindNotFound, "STREAM_NOT_FOUND", "stream not found")
	ErrStreamExists   = grant.NewError(grant.KindConflict, "STREAM_EXISTS", "stream already exists for this recipient")
	ErrNotActive      = grant.NewError(grant.KindState, "STREAM_NOT_ACTIVE", "stream is not in active status")
	ErrNotPaused      = grant.NewError(grant.KindState, "STREAM_NOT_PAUSED", "stream is not paused")
	ErrCannotCancel   = grant.NewError(grant.KindState, "STREAM_CANNOT_CANCEL", "stream cannot be cancelled in current state")
	ErrInvalidAction  = grant.NewError(grant.KindValidation, "INVALID_ACTION", "unknown status action")
)
