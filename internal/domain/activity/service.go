package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/events"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append writes entries through repo, stamping any without a time.
// Services call it inside their transaction so the trail commits with the change.
func Append(ctx context.Context, repo Repository, entries ...*ActivityEntry) error {
	for _, entry := range entries {
		if entry == nil || strings.TrimSpace(entry.TreasuryID) == "" || entry.ActivityType == "" {
			return ErrInvalidInput
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		if err := repo.Log(ctx, entry); err != nil {
			return fmt.Errorf("logging %s: %w", entry.ActivityType, err)
		}
	}
	return nil
}

// GetRecentActivity lists activity entries of a treasury, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if strings.TrimSpace(opts.TreasuryID) == "" || opts.Offset < 0 {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}

// Publish sends the entries as lifecycle events. Failures are logged and
// never returned: the entries are already committed.
func Publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, entries ...ActivityEntry) {
	if publisher == nil {
		return
	}
	for _, entry := range entries {
		if err := publisher.Publish(ctx, entry.Event()); err != nil {
			logger.Warn().Err(err).
				Str("type", string(entry.ActivityType)).
				Str("treasury_id", entry.TreasuryID).
				Msg("failed to publish lifecycle event")
		}
	}
}
