package domain

import "time"

// AccountStatus enumerates possible moderation states for a user account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusBanned    AccountStatus = "banned"
)

// SanctionState mirrors the persisted representation in the user_sanctions table.
// Version is bumped on every write and guards concurrent updates.
type SanctionState struct {
	UserID           string
	StrikeCount      int
	SuspensionCount  int
	Status           AccountStatus
	SuspensionEndsAt *time.Time
	LastViolationAt  *time.Time
	BannedAt         *time.Time
	BannedReason     *string
	Version          int64
	UpdatedAt        time.Time
}

// NewSanctionState returns the default state assigned when a user record is created.
func NewSanctionState(userID string, at time.Time) SanctionState {
	return SanctionState{
		UserID:    userID,
		Status:    AccountStatusActive,
		UpdatedAt: at.UTC(),
	}
}

// IsSuspensionExpired reports whether a suspension window has elapsed at the supplied moment.
func (s SanctionState) IsSuspensionExpired(at time.Time) bool {
	if s.Status != AccountStatusSuspended || s.SuspensionEndsAt == nil {
		return false
	}
	return !s.SuspensionEndsAt.After(at)
}

// AuditEntry records a single applied (or attempted) moderation action.
// Entries are append-only; sanction history is a permanent audit trail.
type AuditEntry struct {
	ID              string
	UserID          string
	Action          ActionKind
	Actor           string
	Reason          string
	PreviousStatus  AccountStatus
	NewStatus       AccountStatus
	StrikeCount     int
	SuspensionCount int
	CreatedAt       time.Time
}
