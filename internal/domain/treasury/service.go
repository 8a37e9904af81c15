package treasury

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/repository"
	"github.com/rs/zerolog"
)

// Service handles treasury operations.
type Service struct {
	repo     Repository
	activity activity.Repository
	tx       repository.Transactor
	events   events.Publisher
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new treasury service.
func NewService(repo Repository, activityRepo activity.Repository, tx repository.Transactor, publisher events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: activityRepo,
		tx:       tx,
		events:   publisher,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the wall clock used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// InitRequest defines treasury creation inputs.
type InitRequest struct {
	Authority string
	Mint      string
}

// GovernanceRequest defines governance changes. Nil fields are left unchanged.
type GovernanceRequest struct {
	TreasuryID         string
	Caller             string
	IsPaused           *bool
	MaxGrantAmount     *uint64
	MaxTotalAllocation *uint64
}

// Init creates the treasury of an authority with unlimited, unpaused governance.
func (s *Service) Init(ctx context.Context, req InitRequest) (*Treasury, error) {
	if strings.TrimSpace(req.Authority) == "" || strings.TrimSpace(req.Mint) == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	t := &Treasury{
		ID:         grant.DeriveID(grant.KindTreasury, req.Authority),
		Authority:  req.Authority,
		Mint:       req.Mint,
		Governance: DefaultGovernance(now),
		CreatedAt:  now,
	}
	entry := activity.ActivityEntry{
		TreasuryID:   t.ID,
		Actor:        req.Authority,
		ActivityType: activity.TypeTreasuryInitialized,
		Summary:      fmt.Sprintf("treasury initialized for mint %s", req.Mint),
		CreatedAt:    now,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrTreasuryExists
			}
			return fmt.Errorf("creating treasury: %w", err)
		}
		return activity.Append(ctx, s.activity, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("treasury_id", t.ID).Str("authority", t.Authority).Msg("treasury initialized")
	activity.Publish(ctx, s.events, s.logger, entry)
	return t, nil
}

// Get fetches a treasury by ID.
func (s *Service) Get(ctx context.Context, id string) (*Treasury, error) {
	return Load(ctx, s.repo, id)
}

// SetGovernance applies new limits or the pause flag. Authority only.
func (s *Service) SetGovernance(ctx context.Context, req GovernanceRequest) (*Treasury, error) {
	var (
		updated *Treasury
		entry   activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.Get(ctx, req.TreasuryID)
		if err != nil {
			return err
		}
		if err := t.Authorize(req.Caller); err != nil {
			return err
		}

		now := s.now()
		if req.IsPaused != nil {
			t.Governance.IsPaused = *req.IsPaused
		}
		if req.MaxGrantAmount != nil {
			t.Governance.MaxGrantAmount = *req.MaxGrantAmount
		}
		if req.MaxTotalAllocation != nil {
			t.Governance.MaxTotalAllocation = *req.MaxTotalAllocation
		}
		t.Governance.LastUpdated = now

		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("updating treasury: %w", err)
		}
		entry = activity.ActivityEntry{
			TreasuryID:   t.ID,
			Actor:        req.Caller,
			ActivityType: activity.TypeGovernanceUpdated,
			Summary: fmt.Sprintf("governance updated: paused=%t max_grant=%d max_total=%d",
				t.Governance.IsPaused, t.Governance.MaxGrantAmount, t.Governance.MaxTotalAllocation),
			CreatedAt: now,
		}
		if err := activity.Append(ctx, s.activity, &entry); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Publish(ctx, s.events, s.logger, entry)
	return updated, nil
}

// Load fetches a treasury for use inside a caller's unit of work.
func Load(ctx context.Context, repo Repository, id string) (*Treasury, error) {
	t, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTreasuryNotFound
		}
		return nil, fmt.Errorf("loading treasury: %w", err)
	}
	return t, nil
}
