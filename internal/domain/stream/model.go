package stream

import (
	"time"

	"github.com/rpggio/grantflow/internal/domain/grant"
)

// Stream is a grant that unlocks linearly from start to end and is withdrawn directly.
type Stream struct {
	ID              string         `json:"id"`
	TreasuryID      string         `json:"treasury_id"`
	Recipient       string         `json:"recipient"`
	Authority       string         `json:"authority"`
	Mint            string         `json:"mint"`
	TotalAmount     uint64         `json:"total_amount"`
	WithdrawnAmount uint64         `json:"withdrawn_amount"`
	StartTime       int64          `json:"start_time"`
	EndTime         int64          `json:"end_time"`
	Category        grant.Category `json:"category"`
	Description     string         `json:"description"`
	Status          grant.Status   `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// WithdrawableAmount is the amount the recipient may withdraw at now.
func (s *Stream) WithdrawableAmount(now int64) uint64 {
	if s.Status == grant.StatusPaused || s.Status == grant.StatusCancelled {
		return 0
	}
	return grant.Releasable(s.TotalAmount, s.WithdrawnAmount, s.StartTime, s.EndTime, now)
}

// Withdraw releases amount at now, completing the stream once fully withdrawn.
func (s *Stream) Withdraw(amount uint64, now int64) (completed bool, err error) {
	if err := grant.ValidateRelease(s.Status, s.StartTime, now, amount, s.WithdrawableAmount(now), ErrNotActive); err != nil {
		return false, err
	}
	withdrawn, ok := grant.CheckedAdd(s.WithdrawnAmount, amount)
	if !ok {
		return false, grant.ErrReleaseOverflow
	}
	s.WithdrawnAmount = withdrawn
	if s.WithdrawnAmount >= s.TotalAmount {
		s.Status = grant.StatusCompleted
		return true, nil
	}
	return false, nil
}

// Apply performs a manual status control.
func (s *Stream) Apply(action grant.Action) error {
	next, ok := grant.Transition(s.Status, action)
	if !ok {
		switch action {
		case grant.ActionPause:
			return ErrNotActive
		case grant.ActionResume:
			return ErrNotPaused
		case grant.ActionCancel:
			return ErrCannotCancel
		default:
			return ErrInvalidAction
		}
	}
	s.Status = next
	return nil
}

// Quote reports what the stream can release at now.
func (s *Stream) Quote(now int64) grant.Quote {
	return grant.NewQuote(s.ID, s.Status, s.TotalAmount, s.WithdrawnAmount, s.WithdrawableAmount(now), now)
}

// ListOptions provides filtering options for listing streams.
type ListOptions struct {
	TreasuryID string
	Recipient  string
	Status     *grant.Status
	Limit      int
	Offset     int
}
