package vesting

import (
	"time"

	"github.com/rpggio/grantflow/internal/domain/grant"
)

// Kind selects the unlock schedule. It is fixed at creation.
type Kind string

const (
	KindLinear Kind = "linear"
	KindCliff  Kind = "cliff"
)

func (k Kind) Valid() bool {
	return k == KindLinear || k == KindCliff
}

// Vesting is a grant that unlocks linearly or after a cliff and is claimed explicitly.
type Vesting struct {
	ID            string         `json:"id"`
	TreasuryID    string         `json:"treasury_id"`
	Recipient     string         `json:"recipient"`
	Authority     string         `json:"authority"`
	Mint          string         `json:"mint"`
	Kind          Kind           `json:"kind"`
	TotalAmount   uint64         `json:"total_amount"`
	ClaimedAmount uint64         `json:"claimed_amount"`
	StartTime     int64          `json:"start_time"`
	CliffTime     int64          `json:"cliff_time"`
	EndTime       int64          `json:"end_time"`
	Category      grant.Category `json:"category"`
	Description   string         `json:"description"`
	Status        grant.Status   `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ValidateSchedule checks the kind and, for cliff vesting, start <= cliff <= end.
func ValidateSchedule(kind Kind, start, cliff, end int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if kind == KindCliff && (cliff < start || cliff > end) {
		return grant.ErrInvalidCliffTiming
	}
	return nil
}

// anchor is the time linear unlocking starts from.
func (v *Vesting) anchor() int64 {
	if v.Kind == KindCliff {
		return v.CliffTime
	}
	return v.StartTime
}

// ClaimableAmount is the amount the recipient may claim at now.
func (v *Vesting) ClaimableAmount(now int64) uint64 {
	if v.Status != grant.StatusActive {
		return 0
	}
	return grant.Releasable(v.TotalAmount, v.ClaimedAmount, v.anchor(), v.EndTime, now)
}

// Claim releases amount at now, completing the vesting once fully claimed.
func (v *Vesting) Claim(amount uint64, now int64) (completed bool, err error) {
	if err := grant.ValidateRelease(v.Status, v.StartTime, now, amount, v.ClaimableAmount(now), ErrNotActive); err != nil {
		return false, err
	}
	claimed, ok := grant.CheckedAdd(v.ClaimedAmount, amount)
	if !ok {
		return false, grant.ErrReleaseOverflow
	}
	v.ClaimedAmount = claimed
	if v.ClaimedAmount >= v.TotalAmount {
		v.Status = grant.StatusCompleted
		return true, nil
	}
	return false, nil
}

// Apply performs a manual status control.
func (v *Vesting) Apply(action grant.Action) error {
	next, ok := grant.Transition(v.Status, action)
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
	v.Status = next
	return nil
}

// Quote reports what the vesting can release at now.
func (v *Vesting) Quote(now int64) grant.Quote {
	return grant.NewQuote(v.ID, v.Status, v.TotalAmount, v.ClaimedAmount, v.ClaimableAmount(now), now)
}

// ListOptions provides filtering options for listing vesting grants.
type ListOptions struct {
	TreasuryID string
	Recipient  string
	Status     *grant.Status
	Limit      int
	Offset     int
}
