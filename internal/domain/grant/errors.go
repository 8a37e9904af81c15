package grant

import "errors"

// Kind classifies a domain failure. Every kind is rejected before any mutation.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindState         Kind = "state"
	KindAuthorization Kind = "authorization"
	KindLimit         Kind = "limit"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindArithmetic    Kind = "arithmetic"
)

// Error is a typed domain failure with a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// NewError creates a coded domain error of the given kind.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches kind sentinels (errors without a code) against any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == "" && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Kind
		}
	}
	return ""
}

// Kind sentinels, for errors.Is checks by category.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrState         = &Error{Kind: KindState, Message: "incompatible state"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Message: "unauthorized"}
	ErrLimit         = &Error{Kind: KindLimit, Message: "limit exceeded"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "conflict"}
	ErrArithmetic    = &Error{Kind: KindArithmetic, Message: "arithmetic overflow"}

	kinds = []*Error{ErrValidation, ErrState, ErrAuthorization, ErrLimit, ErrNotFound, ErrConflict, ErrArithmetic}
)

var (
	ErrInvalidTotalAmount   = NewError(KindValidation, "INVALID_TOTAL_AMOUNT", "total amount must be greater than 0")
	ErrInvalidTiming        = NewError(KindValidation, "INVALID_TIMING", "start time must be before end time")
	ErrInvalidCliffTiming   = NewError(KindValidation, "INVALID_CLIFF_TIMING", "cliff time must be between start and end time")
	ErrDescriptionTooLong   = NewError(KindValidation, "DESCRIPTION_TOO_LONG", "description is too long (max 64 characters)")
	ErrInvalidCategory      = NewError(KindValidation, "INVALID_CATEGORY", "invalid payment category")
	ErrInvalidMint          = NewError(KindValidation, "INVALID_MINT", "grant mint must match treasury mint")
	ErrInvalidRecipient     = NewError(KindValidation, "INVALID_RECIPIENT", "recipient is required")
	ErrInvalidAmount        = NewError(KindValidation, "INVALID_AMOUNT", "amount must be greater than 0")
	ErrNotStarted           = NewError(KindValidation, "NOT_STARTED", "schedule has not started yet")
	ErrInsufficientUnlocked = NewError(KindValidation, "INSUFFICIENT_UNLOCKED", "insufficient unlocked tokens for release")
	ErrReleaseOverflow      = NewError(KindArithmetic, "RELEASE_OVERFLOW", "released amount overflow")
	ErrUnauthorized         = NewError(KindAuthorization, "UNAUTHORIZED", "caller is not permitted to perform this operation")
)
