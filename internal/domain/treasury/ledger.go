package treasury

import (
	"context"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/grant"
)

// Ledger moves grant funds through custody and keeps the treasury counters in
// step with them. Every method must run inside the caller's transaction.
type Ledger struct {
	treasuries Repository
	custody    custody.Gateway
}

func NewLedger(treasuries Repository, gateway custody.Gateway) *Ledger {
	return &Ledger{treasuries: treasuries, custody: gateway}
}

// Admit loads the treasury and checks that caller may create a grant of amount in mint.
func (l *Ledger) Admit(ctx context.Context, treasuryID, caller, mint string, amount uint64) (*Treasury, error) {
	t, err := Load(ctx, l.treasuries, treasuryID)
	if err != nil {
		return nil, err
	}
	if err := t.Authorize(caller); err != nil {
		return nil, err
	}
	if err := t.CheckMint(mint); err != nil {
		return nil, err
	}
	if err := t.Admit(amount); err != nil {
		return nil, err
	}
	return t, nil
}

// Fund records the allocation of an admitted grant and moves amount from the
// funder into the grant's custody account.
func (l *Ledger) Fund(ctx context.Context, t *Treasury, grantID, funder string, amount uint64) error {
	t.RecordAllocation(amount)
	if err := l.treasuries.Update(ctx, t); err != nil {
		return fmt.Errorf("updating treasury: %w", err)
	}
	return l.custody.Transfer(ctx, custody.TransferRequest{
		From:      funder,
		To:        grant.CustodyOwner(grantID),
		Authority: funder,
		Mint:      t.Mint,
		Amount:    amount,
	})
}

// Release pays amount from a grant's custody account to its recipient.
// It fails with ErrPaused while the treasury is paused.
func (l *Ledger) Release(ctx context.Context, treasuryID, grantID, recipient, mint string, amount uint64) error {
	t, err := Load(ctx, l.treasuries, treasuryID)
	if err != nil {
		return err
	}
	if !t.IsActive() {
		return ErrPaused
	}
	t.RecordPayment(amount)
	if err := l.treasuries.Update(ctx, t); err != nil {
		return fmt.Errorf("updating treasury: %w", err)
	}

	custodian := grant.CustodyOwner(grantID)
	return l.custody.Transfer(ctx, custody.TransferRequest{
		From:      custodian,
		To:        recipient,
		Authority: custodian,
		Mint:      mint,
		Amount:    amount,
	})
}
