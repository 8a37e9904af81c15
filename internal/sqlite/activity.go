package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/domain/activity"
)

const activityColumns = `id, treasury_id, grant_id, actor, activity_type, amount, summary, created_at`

// ActivityRepository stores the audit trail of treasuries and their grants.
type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends entry inside the caller's transaction, if any, and sets its ID.
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO activity_log (treasury_id, grant_id, actor, activity_type, amount, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.TreasuryID, entry.GrantID, entry.Actor, entry.ActivityType,
		u64(entry.Amount), entry.Summary, entry.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "log activity")
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns a treasury's entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	where := []string{"treasury_id = ?"}
	args := []any{opts.TreasuryID}
	if opts.GrantID != nil {
		where = append(where, "grant_id = ?")
		args = append(args, *opts.GrantID)
	}
	if opts.ActivityType != nil {
		where = append(where, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}

	query := "SELECT " + activityColumns + " FROM activity_log WHERE " +
		strings.Join(where, " AND ") + " ORDER BY id DESC"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.ActivityEntry{}
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity: %w", err)
	}
	return entries, nil
}

func scanActivity(row rowScanner) (activity.ActivityEntry, error) {
	var (
		entry   activity.ActivityEntry
		grantID sql.NullString
		amount  u64
	)
	err := row.Scan(&entry.ID, &entry.TreasuryID, &grantID, &entry.Actor,
		&entry.ActivityType, &amount, &entry.Summary, &entry.CreatedAt)
	if err != nil {
		return activity.ActivityEntry{}, fmt.Errorf("scanning activity: %w", err)
	}
	if grantID.Valid {
		entry.GrantID = &grantID.String
	}
	entry.Amount = uint64(amount)
	return entry, nil
}
