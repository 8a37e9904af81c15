package treasury

import (
	"math"
	"time"

	"github.com/rpggio/grantflow/internal/domain/grant"
)

// Treasury holds the aggregate statistics and governance limits for one authority.
type Treasury struct {
	ID             string     `json:"id"`
	Authority      string     `json:"authority"`
	Mint           string     `json:"mint"`
	TotalGrants    uint64     `json:"total_grants"`
	TotalAllocated uint64     `json:"total_allocated"`
	TotalPaid      uint64     `json:"total_paid"`
	Governance     Governance `json:"governance"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Governance are the limits an authority can tighten on its treasury.
type Governance struct {
	IsPaused           bool      `json:"is_paused"`
	MaxGrantAmount     uint64    `json:"max_grant_amount"`
	MaxTotalAllocation uint64    `json:"max_total_allocation"`
	LastUpdated        time.Time `json:"last_updated"`
}

// DefaultGovernance is unpaused with no limits.
func DefaultGovernance(now time.Time) Governance {
	return Governance{
		IsPaused:           false,
		MaxGrantAmount:     math.MaxUint64,
		MaxTotalAllocation: math.MaxUint64,
		LastUpdated:        now,
	}
}

// IsActive reports whether creation and release operations are allowed.
func (t *Treasury) IsActive() bool {
	return !t.Governance.IsPaused
}

func (t *Treasury) ValidateGrantAmount(amount uint64) bool {
	return amount <= t.Governance.MaxGrantAmount
}

// ValidateTotalAllocation reports whether amount fits under the allocation cap.
// An addition that would overflow fails validation.
func (t *Treasury) ValidateTotalAllocation(amount uint64) bool {
	sum, ok := grant.CheckedAdd(t.TotalAllocated, amount)
	return ok && sum <= t.Governance.MaxTotalAllocation
}

// RecordAllocation counts a newly created grant.
func (t *Treasury) RecordAllocation(amount uint64) {
	t.TotalGrants = grant.SaturatingAdd(t.TotalGrants, 1)
	t.TotalAllocated = grant.SaturatingAdd(t.TotalAllocated, amount)
}

// RecordPayment counts an amount released to a recipient.
func (t *Treasury) RecordPayment(amount uint64) {
	t.TotalPaid = grant.SaturatingAdd(t.TotalPaid, amount)
}

// Admit checks whether a new grant of amount may be created.
func (t *Treasury) Admit(amount uint64) error {
	if !t.IsActive() {
		return ErrPaused
	}
	if !t.ValidateGrantAmount(amount) {
		return ErrGrantAmountExceedsLimit
	}
	if !t.ValidateTotalAllocation(amount) {
		return ErrTotalAllocationExceedsLimit
	}
	return nil
}

// CheckMint returns grant.ErrInvalidMint when mint is set and differs from the treasury mint.
func (t *Treasury) CheckMint(mint string) error {
	if mint != "" && mint != t.Mint {
		return grant.ErrInvalidMint
	}
	return nil
}

// Authorize returns grant.ErrUnauthorized unless caller is the treasury authority.
func (t *Treasury) Authorize(caller string) error {
	if caller != t.Authority {
		return grant.ErrUnauthorized
	}
	return nil
}
