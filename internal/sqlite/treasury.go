package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/repository"
)

// TreasuryRepository implements treasury.Repository for SQLite
type TreasuryRepository struct {
	db *DB
}

// NewTreasuryRepository creates a new TreasuryRepository
func NewTreasuryRepository(db *DB) *TreasuryRepository {
	return &TreasuryRepository{db: db}
}

// Create inserts a new treasury
func (r *TreasuryRepository) Create(ctx context.Context, t *treasury.Treasury) error {
	query := `
		INSERT INTO treasuries (
			id, authority, mint, total_grants, total_allocated, total_paid,
			is_paused, max_grant_amount, max_total_allocation, governance_updated_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		t.ID,
		t.Authority,
		t.Mint,
		u64(t.TotalGrants),
		u64(t.TotalAllocated),
		u64(t.TotalPaid),
		t.Governance.IsPaused,
		u64(t.Governance.MaxGrantAmount),
		u64(t.Governance.MaxTotalAllocation),
		t.Governance.LastUpdated,
		t.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "create treasury")
	}
	return nil
}

// Get retrieves a treasury by ID
func (r *TreasuryRepository) Get(ctx context.Context, id string) (*treasury.Treasury, error) {
	query := `
		SELECT
			id, authority, mint, total_grants, total_allocated, total_paid,
			is_paused, max_grant_amount, max_total_allocation, governance_updated_at, created_at
		FROM treasuries
		WHERE id = ?
	`

	var (
		t                       treasury.Treasury
		grants, allocated, paid u64
		maxGrant, maxTotal      u64
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Authority,
		&t.Mint,
		&grants,
		&allocated,
		&paid,
		&t.Governance.IsPaused,
		&maxGrant,
		&maxTotal,
		&t.Governance.LastUpdated,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury: %w", err)
	}

	t.TotalGrants = uint64(grants)
	t.TotalAllocated = uint64(allocated)
	t.TotalPaid = uint64(paid)
	t.Governance.MaxGrantAmount = uint64(maxGrant)
	t.Governance.MaxTotalAllocation = uint64(maxTotal)
	return &t, nil
}

// Update writes counters and governance of an existing treasury
func (r *TreasuryRepository) Update(ctx context.Context, t *treasury.Treasury) error {
	query := `
		UPDATE treasuries
		SET total_grants = ?, total_allocated = ?, total_paid = ?,
			is_paused = ?, max_grant_amount = ?, max_total_allocation = ?, governance_updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		u64(t.TotalGrants),
		u64(t.TotalAllocated),
		u64(t.TotalPaid),
		t.Governance.IsPaused,
		u64(t.Governance.MaxGrantAmount),
		u64(t.Governance.MaxTotalAllocation),
		t.Governance.LastUpdated,
		t.ID,
	)
	if err != nil {
		return mapWriteError(err, "update treasury")
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
