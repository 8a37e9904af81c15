package vesting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/repository"
	"github.com/rs/zerolog"
)

// Service handles vesting operations.
type Service struct {
	repo     Repository
	ledger   *treasury.Ledger
	activity activity.Repository
	tx       repository.Transactor
	events   events.Publisher
	logger   zerolog.Logger
	clock    func() time.Time
}

// NewService creates a new vesting service.
func NewService(
	repo Repository,
	treasuries treasury.Repository,
	gateway custody.Gateway,
	activityRepo activity.Repository,
	tx repository.Transactor,
	publisher events.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		ledger:   treasury.NewLedger(treasuries, gateway),
		activity: activityRepo,
		tx:       tx,
		events:   publisher,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the wall clock used when a call carries no explicit time.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// CreateRequest defines vesting creation inputs. CliffTime is only read for cliff vesting.
type CreateRequest struct {
	TreasuryID  string
	Caller      string
	Recipient   string
	Mint        string
	Kind        Kind
	TotalAmount uint64
	StartTime   int64
	CliffTime   int64
	EndTime     int64
	Category    grant.Category
	Description string
}

// ClaimRequest defines claim inputs. Now defaults to the service clock.
type ClaimRequest struct {
	VestingID string
	Caller    string
	Amount    uint64
	Now       *int64
}

// ControlRequest defines a pause, resume or cancel call.
type ControlRequest struct {
	VestingID string
	Caller    string
	Action    grant.Action
}

// Create validates the request, admits it against the treasury limits and
// funds the vesting custody account from the caller.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Vesting, error) {
	terms := grant.Terms{
		Recipient:   req.Recipient,
		TotalAmount: req.TotalAmount,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSchedule(req.Kind, req.StartTime, req.CliffTime, req.EndTime); err != nil {
		return nil, err
	}
	cliff := req.StartTime
	if req.Kind == KindCliff {
		cliff = req.CliffTime
	}

	var (
		created *Vesting
		entry   activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.ledger.Admit(ctx, req.TreasuryID, req.Caller, req.Mint, req.TotalAmount)
		if err != nil {
			return err
		}

		now := s.clock()
		v := &Vesting{
			ID:          grant.DeriveID(grant.KindVesting, t.ID, req.Recipient),
			TreasuryID:  t.ID,
			Recipient:   req.Recipient,
			Authority:   req.Caller,
			Mint:        t.Mint,
			Kind:        req.Kind,
			TotalAmount: req.TotalAmount,
			StartTime:   req.StartTime,
			CliffTime:   cliff,
			EndTime:     req.EndTime,
			Category:    req.Category,
			Description: req.Description,
			Status:      grant.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, v); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrVestingExists
			}
			return fmt.Errorf("creating vesting: %w", err)
		}

		if err := s.ledger.Fund(ctx, t, v.ID, req.Caller, req.TotalAmount); err != nil {
			return err
		}

		entry = s.entry(v, req.Caller, activity.TypeVestingCreated, req.TotalAmount, now,
			fmt.Sprintf("%s vesting of %d created for %s (%s)", req.Kind, req.TotalAmount, req.Recipient, req.Category))
		if err := activity.Append(ctx, s.activity, &entry); err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("vesting_id", created.ID).
		Str("treasury_id", created.TreasuryID).
		Str("kind", string(created.Kind)).
		Uint64("total_amount", created.TotalAmount).
		Msg("vesting created")
	activity.Publish(ctx, s.events, s.logger, entry)
	return created, nil
}

// Claim releases a vested amount to the recipient.
func (s *Service) Claim(ctx context.Context, req ClaimRequest) (*Vesting, error) {
	var (
		updated *Vesting
		entries []activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.load(ctx, req.VestingID)
		if err != nil {
			return err
		}
		if req.Caller != v.Recipient {
			return grant.ErrUnauthorized
		}

		completed, err := v.Claim(req.Amount, grant.ResolveNow(req.Now, s.clock))
		if err != nil {
			return err
		}

		if err := s.ledger.Release(ctx, v.TreasuryID, v.ID, v.Recipient, v.Mint, req.Amount); err != nil {
			return err
		}

		now := s.clock()
		v.UpdatedAt = now
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("updating vesting: %w", err)
		}

		entries = append(entries, s.entry(v, req.Caller, activity.TypeVestingClaimed, req.Amount, now,
			fmt.Sprintf("claimed %d (%d of %d)", req.Amount, v.ClaimedAmount, v.TotalAmount)))
		if completed {
			entries = append(entries, s.entry(v, req.Caller, activity.TypeVestingCompleted, 0, now, "vesting fully claimed"))
		}
		for i := range entries {
			if err := activity.Append(ctx, s.activity, &entries[i]); err != nil {
				return err
			}
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Publish(ctx, s.events, s.logger, entries...)
	return updated, nil
}

// Control pauses, resumes or cancels a vesting. Only the creating authority may call it.
func (s *Service) Control(ctx context.Context, req ControlRequest) (*Vesting, error) {
	var (
		updated *Vesting
		entry   activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.load(ctx, req.VestingID)
		if err != nil {
			return err
		}
		if req.Caller != v.Authority {
			return grant.ErrUnauthorized
		}
		if err := v.Apply(req.Action); err != nil {
			return err
		}

		now := s.clock()
		v.UpdatedAt = now
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("updating vesting: %w", err)
		}
		entry = s.entry(v, req.Caller, controlActivity[req.Action], 0, now, "vesting "+strings.ToLower(v.Status.String()))
		if err := activity.Append(ctx, s.activity, &entry); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Publish(ctx, s.events, s.logger, entry)
	return updated, nil
}

var controlActivity = map[grant.Action]activity.ActivityType{
	grant.ActionPause:  activity.TypeVestingPaused,
	grant.ActionResume: activity.TypeVestingResumed,
	grant.ActionCancel: activity.TypeVestingCancelled,
}

// Get fetches a vesting by ID.
func (s *Service) Get(ctx context.Context, id string) (*Vesting, error) {
	return s.load(ctx, id)
}

// Find locates the vesting of a recipient under a treasury.
func (s *Service) Find(ctx context.Context, treasuryID, recipient string) (*Vesting, error) {
	return s.load(ctx, grant.DeriveID(grant.KindVesting, treasuryID, recipient))
}

// Quote reports the claimable amount at now, or at the service clock when now is nil.
func (s *Service) Quote(ctx context.Context, id string, now *int64) (grant.Quote, error) {
	v, err := s.load(ctx, id)
	if err != nil {
		return grant.Quote{}, err
	}
	return v.Quote(grant.ResolveNow(now, s.clock)), nil
}

// List returns the vesting grants of a treasury.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Vesting, error) {
	vestings, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing vestings: %w", err)
	}
	return vestings, nil
}

func (s *Service) load(ctx context.Context, id string) (*Vesting, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVestingNotFound
		}
		return nil, fmt.Errorf("getting vesting: %w", err)
	}
	return v, nil
}

func (s *Service) entry(v *Vesting, actor string, typ activity.ActivityType, amount uint64, at time.Time, summary string) activity.ActivityEntry {
	return activity.GrantEntry(v.TreasuryID, v.ID, actor, typ, amount, at, summary)
}
