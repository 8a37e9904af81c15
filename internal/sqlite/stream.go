package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/repository"
)

// StreamRepository implements stream.Repository for SQLite
type StreamRepository struct {
	db *DB
}

// NewStreamRepository creates a new StreamRepository
func NewStreamRepository(db *DB) *StreamRepository {
	return &StreamRepository{db: db}
}

const streamColumns = `
	id, treasury_id, recipient, authority, mint, total_amount, withdrawn_amount,
	start_time, end_time, category, description, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new stream
func (r *StreamRepository) Create(ctx context.Context, s *stream.Stream) error {
	query := `INSERT INTO streams (` + streamColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		s.ID,
		s.TreasuryID,
		s.Recipient,
		s.Authority,
		s.Mint,
		u64(s.TotalAmount),
		u64(s.WithdrawnAmount),
		s.StartTime,
		s.EndTime,
		s.Category,
		s.Description,
		s.Status,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "create stream")
	}
	return nil
}

// Get retrieves a stream by ID
func (r *StreamRepository) Get(ctx context.Context, id string) (*stream.Stream, error) {
	query := `SELECT ` + streamColumns + ` FROM streams WHERE id = ?`

	s, err := scanStream(r.db.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return s, nil
}

// Update writes the mutable fields of a stream
func (r *StreamRepository) Update(ctx context.Context, s *stream.Stream) error {
	query := `
		UPDATE streams
		SET withdrawn_amount = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, u64(s.WithdrawnAmount), s.Status, s.UpdatedAt, s.ID)
	if err != nil {
		return mapWriteError(err, "update stream")
	}
	return requireRow(result)
}

// List returns streams matching the given filters
func (r *StreamRepository) List(ctx context.Context, opts stream.ListOptions) ([]stream.Stream, error) {
	query := `SELECT ` + streamColumns + ` FROM streams WHERE treasury_id = ?`
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
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	defer rows.Close()

	streams := []stream.Stream{}
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		streams = append(streams, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stream rows: %w", err)
	}
	return streams, nil
}

func scanStream(row rowScanner) (*stream.Stream, error) {
	var (
		s                stream.Stream
		total, withdrawn u64
	)
	if err := row.Scan(
		&s.ID,
		&s.TreasuryID,
		&s.Recipient,
		&s.Authority,
		&s.Mint,
		&total,
		&withdrawn,
		&s.StartTime,
		&s.EndTime,
		&s.Category,
		&s.Description,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.TotalAmount = uint64(total)
	s.WithdrawnAmount = uint64(withdrawn)
	return &s, nil
}

// paginate appends LIMIT and OFFSET clauses. An offset without a limit
// skips rows and returns the rest.
func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 && offset <= 0 {
		return query, args
	}
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}
