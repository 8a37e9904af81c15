package stream

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

// Service handles stream operations.
type Service struct {
	repo     Repository
	ledger   *treasury.Ledger
	activity activity.Repository
	tx       repository.Transactor
	events   events.Publisher
	logger   zerolog.Logger
	clock    func() time.Time
}

// NewService creates a new stream service.
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

// CreateRequest defines stream creation inputs.
type CreateRequest struct {
	TreasuryID  string
	Caller      string
	Recipient   string
	Mint        string
	TotalAmount uint64
	StartTime   int64
	EndTime     int64
	Category    grant.Category
	Description string
}

// WithdrawRequest defines withdrawal inputs. Now defaults to the service clock.
type WithdrawRequest struct {
	StreamID string
	Caller   string
	Amount   uint64
	Now      *int64
}

// ControlRequest defines a pause, resume or cancel call.
type ControlRequest struct {
	StreamID string
	Caller   string
	Action   grant.Action
}

// Create validates the request, admits it against the treasury limits and
// funds the stream custody account from the caller.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Stream, error) {
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

	var (
		created *Stream
		entry   activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.ledger.Admit(ctx, req.TreasuryID, req.Caller, req.Mint, req.TotalAmount)
		if err != nil {
			return err
		}

		now := s.clock()
		st := &Stream{
			ID:          grant.DeriveID(grant.KindStream, t.ID, req.Recipient),
			TreasuryID:  t.ID,
			Recipient:   req.Recipient,
			Authority:   req.Caller,
			Mint:        t.Mint,
			TotalAmount: req.TotalAmount,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Category:    req.Category,
			Description: req.Description,
			Status:      grant.StatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, st); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrStreamExists
			}
			return fmt.Errorf("creating stream: %w", err)
		}

		if err := s.ledger.Fund(ctx, t, st.ID, req.Caller, req.TotalAmount); err != nil {
			return err
		}

		entry = s.entry(st, req.Caller, activity.TypeStreamCreated, req.TotalAmount, now,
			fmt.Sprintf("stream of %d created for %s (%s)", req.TotalAmount, req.Recipient, req.Category))
		if err := activity.Append(ctx, s.activity, &entry); err != nil {
			return err
		}
		created = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("stream_id", created.ID).
		Str("treasury_id", created.TreasuryID).
		Uint64("total_amount", created.TotalAmount).
		Msg("stream created")
	activity.Publish(ctx, s.events, s.logger, entry)
	return created, nil
}

// Withdraw releases an unlocked amount to the recipient.
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*Stream, error) {
	var (
		updated *Stream
		entries []activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		st, err := s.load(ctx, req.StreamID)
		if err != nil {
			return err
		}
		if req.Caller != st.Recipient {
			return grant.ErrUnauthorized
		}

		completed, err := st.Withdraw(req.Amount, grant.ResolveNow(req.Now, s.clock))
		if err != nil {
			return err
		}

		if err := s.ledger.Release(ctx, st.TreasuryID, st.ID, st.Recipient, st.Mint, req.Amount); err != nil {
			return err
		}

		now := s.clock()
		st.UpdatedAt = now
		if err := s.repo.Update(ctx, st); err != nil {
			return fmt.Errorf("updating stream: %w", err)
		}

		entries = append(entries, s.entry(st, req.Caller, activity.TypeStreamWithdrawn, req.Amount, now,
			fmt.Sprintf("withdrew %d (%d of %d)", req.Amount, st.WithdrawnAmount, st.TotalAmount)))
		if completed {
			entries = append(entries, s.entry(st, req.Caller, activity.TypeStreamCompleted, 0, now, "stream fully withdrawn"))
		}
		for i := range entries {
			if err := activity.Append(ctx, s.activity, &entries[i]); err != nil {
				return err
			}
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Publish(ctx, s.events, s.logger, entries...)
	return updated, nil
}

// Control pauses, resumes or cancels a stream. Only the creating authority may call it.
func (s *Service) Control(ctx context.Context, req ControlRequest) (*Stream, error) {
	var (
		updated *Stream
		entry   activity.ActivityEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		st, err := s.load(ctx, req.StreamID)
		if err != nil {
			return err
		}
		if req.Caller != st.Authority {
			return grant.ErrUnauthorized
		}
		if err := st.Apply(req.Action); err != nil {
			return err
		}

		now := s.clock()
		st.UpdatedAt = now
		if err := s.repo.Update(ctx, st); err != nil {
			return fmt.Errorf("updating stream: %w", err)
		}
		entry = s.entry(st, req.Caller, controlActivity[req.Action], 0, now, "stream "+strings.ToLower(st.Status.String()))
		if err := activity.Append(ctx, s.activity, &entry); err != nil {
			return err
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Publish(ctx, s.events, s.logger, entry)
	return updated, nil
}

var controlActivity = map[grant.Action]activity.ActivityType{
	grant.ActionPause:  activity.TypeStreamPaused,
	grant.ActionResume: activity.TypeStreamResumed,
	grant.ActionCancel: activity.TypeStreamCancelled,
}

// Get fetches a stream by ID.
func (s *Service) Get(ctx context.Context, id string) (*Stream, error) {
	return s.load(ctx, id)
}

// Find locates the stream of a recipient under a treasury.
func (s *Service) Find(ctx context.Context, treasuryID, recipient string) (*Stream, error) {
	return s.load(ctx, grant.DeriveID(grant.KindStream, treasuryID, recipient))
}

// Quote reports the withdrawable amount at now, or at the service clock when now is nil.
func (s *Service) Quote(ctx context.Context, id string, now *int64) (grant.Quote, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return grant.Quote{}, err
	}
	return st.Quote(grant.ResolveNow(now, s.clock)), nil
}

// List returns the streams of a treasury.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Stream, error) {
	streams, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing streams: %w", err)
	}
	return streams, nil
}

func (s *Service) load(ctx context.Context, id string) (*Stream, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, fmt.Errorf("getting stream: %w", err)
	}
	return st, nil
}

func (s *Service) entry(st *Stream, actor string, typ activity.ActivityType, amount uint64, at time.Time, summary string) activity.ActivityEntry {
	return activity.GrantEntry(st.TreasuryID, st.ID, actor, typ, amount, at, summary)
}
