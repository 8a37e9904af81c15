package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rpggio/grantflow/internal/repository"
)

// VestingRepository implements vesting.Repository for SQLite
type VestingRepository struct {
	db *DB
}

// NewVestingRepository creates a new VestingRepository
func NewVestingRepository(db *DB) *VestingRepository {
	return &VestingRepository{db: db}
}

const vestingColumns = `
	id, treasury_id, recipient, authority, mint, kind, total_amount, claimed_amount,
	start_time, cliff_time, end_time, category, description, status, created_at, updated_at`

// Create inserts a new vesting grant
func (r *VestingRepository) Create(ctx context.Context, v *vesting.Vesting) error {
	query := `INSERT INTO vestings (` + vestingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		v.ID,
		v.TreasuryID,
		v.Recipient,
		v.Authority,
		v.Mint,
		v.Kind,
		u64(v.TotalAmount),
		u64(v.ClaimedAmount),
		v.StartTime,
		v.CliffTime,
		v.EndTime,
		v.Category,
		v.Description,
		v.Status,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "create vesting")
	}
	return nil
}

// Get retrieves a vesting grant by ID
func (r *VestingRepository) Get(ctx context.Context, id string) (*vesting.Vesting, error) {
	query := `SELECT ` + vestingColumns + ` FROM vestings WHERE id = ?`

	v, err := scanVesting(r.db.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vesting: %w", err)
	}
	return v, nil
}

// Update writes the mutable fields of a vesting grant
func (r *VestingRepository) Update(ctx context.Context, v *vesting.Vesting) error {
	query := `
		UPDATE vestings
		SET claimed_amount = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, u64(v.ClaimedAmount), v.Status, v.UpdatedAt, v.ID)
	if err != nil {
		return mapWriteError(err, "update vesting")
	}
	return requireRow(result)
}

// List returns vesting grants matching the given filters
func (r *VestingRepository) List(ctx context.Context, opts vesting.ListOptions) ([]vesting.Vesting, error) {
	query := `SELECT ` + vestingColumns + ` FROM vestings WHERE treasury_id = ?`
	args := []any{opts.TreasuryID}

	if opts.Recipient != "" {
		query += " AND recipient = ?"
		args = append(args, opts.Recipient)
	}
	if opts.Status != nil {
		query += " AND status = ?"
		args = append(args, *opts.Status)
	}
	query, args = paginate(query+" ORDER BY created_at ASC, id ASC", args, opts.Limit, opts.Offset)

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vestings: %w", err)
	}
	defer rows.Close()

	vestings := []vesting.Vesting{}
	for rows.Next() {
		v, err := scanVesting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vesting: %w", err)
		}
		vestings = append(vestings, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vesting rows: %w", err)
	}
	return vestings, nil
}

func scanVesting(row rowScanner) (*vesting.Vesting, error) {
	var (
		v              vesting.Vesting
		total, claimed u64
	)
	if err := row.Scan(
		&v.ID,
		&v.TreasuryID,
		&v.Recipient,
		&v.Authority,
		&v.Mint,
		&v.Kind,
		&total,
		&claimed,
		&v.StartTime,
		&v.CliffTime,
		&v.EndTime,
		&v.Category,
		&v.Description,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	v.TotalAmount = uint64(total)
	v.ClaimedAmount = uint64(claimed)
	return &v, nil
}
