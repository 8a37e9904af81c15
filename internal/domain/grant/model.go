package grant

import "time"

// Status is the lifecycle state shared by streams and vesting grants.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition or release is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Action is a manual status control.
type Action string

const (
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionCancel Action = "cancel"
)

// Transition returns the status reached by applying action to from.
// The boolean is false when the action is not allowed from that status.
func Transition(from Status, action Action) (Status, bool) {
	switch action {
	case ActionPause:
		if from == StatusActive {
			return StatusPaused, true
		}
	case ActionResume:
		if from == StatusPaused {
			return StatusActive, true
		}
	case ActionCancel:
		if from == StatusActive || from == StatusPaused {
			return StatusCancelled, true
		}
	}
	return from, false
}

// Category is the payment category tag attached to a grant.
type Category string

const (
	CategoryContributors Category = "contributors"
	CategoryGrants       Category = "grants"
	CategoryOperations   Category = "operations"
	CategoryMarketing    Category = "marketing"
	CategoryDevelopment  Category = "development"
	CategoryOther        Category = "other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryContributors,
	CategoryGrants,
	CategoryOperations,
	CategoryMarketing,
	CategoryDevelopment,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Quote is a read-only snapshot of what a grant can release at a given time.
type Quote struct {
	GrantID     string `json:"grant_id"`
	Status      Status `json:"status"`
	Now         int64  `json:"now"`
	Total       uint64 `json:"total_amount"`
	Released    uint64 `json:"released_amount"`
	Releasable  uint64 `json:"releasable_amount"`
	Remaining   uint64 `json:"remaining_amount"`
	ProgressBps uint64 `json:"progress_bps"`
}

// NewQuote builds a quote. Progress counts released plus releasable tokens.
func NewQuote(grantID string, status Status, total, released, releasable uint64, now int64) Quote {
	return Quote{
		GrantID:     grantID,
		Status:      status,
		Now:         now,
		Total:       total,
		Released:    released,
		Releasable:  releasable,
		Remaining:   SaturatingSub(total, released),
		ProgressBps: Progress(total, SaturatingAdd(released, releasable)),
	}
}

// ResolveNow returns *at when set, otherwise the clock reading in Unix seconds.
func ResolveNow(at *int64, clock func() time.Time) int64 {
	if at != nil {
		return *at
	}
	return clock().Unix()
}
