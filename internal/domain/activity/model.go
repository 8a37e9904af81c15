package activity

import (
	"time"

	"github.com/rpggio/grantflow/internal/events"
)

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeTreasuryInitialized ActivityType = "treasury_initialized"
	TypeGovernanceUpdated   ActivityType = "governance_updated"
	TypeStreamCreated       ActivityType = "stream_created"
	TypeStreamWithdrawn     ActivityType = "stream_withdrawn"
	TypeStreamPaused        ActivityType = "stream_paused"
	TypeStreamResumed       ActivityType = "stream_resumed"
	TypeStreamCancelled     ActivityType = "stream_cancelled"
	TypeStreamCompleted     ActivityType = "stream_completed"
	TypeVestingCreated      ActivityType = "vesting_created"
	TypeVestingClaimed      ActivityType = "vesting_claimed"
	TypeVestingPaused       ActivityType = "vesting_paused"
	TypeVestingResumed      ActivityType = "vesting_resumed"
	TypeVestingCancelled    ActivityType = "vesting_cancelled"
	TypeVestingCompleted    ActivityType = "vesting_completed"
)

// ActivityEntry represents an event in the audit trail of a treasury
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TreasuryID   string       `json:"treasury_id"`
	GrantID      *string      `json:"grant_id,omitempty"`
	Actor        string       `json:"actor"`
	ActivityType ActivityType `json:"type"`
	Amount       uint64       `json:"amount"`
	Summary      string       `json:"summary"`
	CreatedAt    time.Time    `json:"created_at"`
}

// GrantEntry builds the entry for an operation on one grant.
func GrantEntry(treasuryID, grantID, actor string, typ ActivityType, amount uint64, at time.Time, summary string) ActivityEntry {
	return ActivityEntry{
		TreasuryID:   treasuryID,
		GrantID:      &grantID,
		Actor:        actor,
		ActivityType: typ,
		Amount:       amount,
		Summary:      summary,
		CreatedAt:    at,
	}
}

// Event converts the entry into the lifecycle event published after commit.
func (e ActivityEntry) Event() events.Event {
	evt := events.Event{
		Type:       string(e.ActivityType),
		TreasuryID: e.TreasuryID,
		Amount:     e.Amount,
		OccurredAt: e.CreatedAt,
	}
	if e.GrantID != nil {
		evt.GrantID = *e.GrantID
	}
	return evt
}

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	TreasuryID   string
	GrantID      *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
