package custody

import (
	"context"
	"time"
)

// Account is the balance an owner holds of one mint.
type Account struct {
	Owner     string    `json:"owner"`
	Mint      string    `json:"mint"`
	Balance   uint64    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransferRequest moves Amount of Mint from one owner to another. Authority
// is the party authorizing the debit and must own the source account.
type TransferRequest struct {
	From      string
	To        string
	Authority string
	Mint      string
	Amount    uint64
}

// Gateway moves funded balances between parties.
type Gateway interface {
	Transfer(ctx context.Context, req TransferRequest) error
}
