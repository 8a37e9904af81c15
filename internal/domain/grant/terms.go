package grant

import (
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 64

// Terms are the creation inputs common to streams and vesting grants.
type Terms struct {
	Recipient   string
	TotalAmount uint64
	StartTime   int64
	EndTime     int64
	Category    Category
	Description string
}

// Validate checks the creation rules that do not depend on the treasury.
func (t Terms) Validate() error {
	if strings.TrimSpace(t.Recipient) == "" {
		return ErrInvalidRecipient
	}
	if t.TotalAmount == 0 {
		return ErrInvalidTotalAmount
	}
	if t.StartTime >= t.EndTime {
		return ErrInvalidTiming
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateRelease checks a withdraw/claim request against the grant status and schedule.
// releasable is evaluated by the caller at now.
func ValidateRelease(status Status, startTime, now int64, amount, releasable uint64, notActive error) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if status != StatusActive {
		return notActive
	}
	if now < startTime {
		return ErrNotStarted
	}
	if amount > releasable {
		return ErrInsufficientUnlocked
	}
	return nil
}
