package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/custody"
)

// CustodyRepository implements custody.Repository for SQLite
type CustodyRepository struct {
	db *DB
}

// NewCustodyRepository creates a new CustodyRepository
func NewCustodyRepository(db *DB) *CustodyRepository {
	return &CustodyRepository{db: db}
}

// Get returns the account of owner for mint; unknown accounts have a zero balance
func (r *CustodyRepository) Get(ctx context.Context, owner, mint string) (*custody.Account, error) {
	query := `SELECT balance, updated_at FROM custody_accounts WHERE owner = ? AND mint = ?`

	acct := custody.Account{Owner: owner, Mint: mint}
	var balance u64
	err := r.db.conn(ctx).QueryRowContext(ctx, query, owner, mint).Scan(&balance, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &acct, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custody account: %w", err)
	}
	acct.Balance = uint64(balance)
	return &acct, nil
}

// Put upserts the balance of an account
func (r *CustodyRepository) Put(ctx context.Context, acct *custody.Account) error {
	query := `
		INSERT INTO custody_accounts (owner, mint, balance, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner, mint) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query, acct.Owner, acct.Mint, u64(acct.Balance), acct.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "save custody account")
	}
	return nil
}
