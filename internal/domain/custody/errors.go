package custody

import "github.com/rpggio/grantflow/internal/domain/grant"

var (
	ErrInsufficientFunds    = grant.NewError(grant.KindLimit, "INSUFFICIENT_FUNDS", "insufficient balance for transfer")
	ErrUnauthorizedTransfer = grant.NewError(grant.KindAuthorization, "UNAUTHORIZED_TRANSFER", "transfer authority does not own the source account")
	ErrBalanceOverflow      = grant.NewError(grant.KindArithmetic, "BALANCE_OVERFLOW", "account balance overflow")
	ErrInvalidTransfer      = grant.NewError(grant.KindValidation, "INVALID_TRANSFER", "transfer requires distinct owners, a mint and a positive amount")
)
