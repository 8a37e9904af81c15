package custody

import "context"

// Repository persists account balances. A missing account reads as a zero balance.
type Repository interface {
	Get(ctx context.Context, owner, mint string) (*Account, error)
	Put(ctx context.Context, account *Account) error
}
