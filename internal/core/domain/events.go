package domain

import "time"

// StrikeRecordedEvent represents the payload for moderation.strike.recorded messages.
type StrikeRecordedEvent struct {
	EventID     string
	UserID      string
	Actor       string
	Reason      string
	StrikeCount int
	RecordedAt  time.Time
	Metadata    map[string]any
}

// UserSuspendedEvent represents the payload for moderation.user.suspended messages.
type UserSuspendedEvent struct {
	EventID          string
	UserID           string
	Actor            string
	Reason           string
	SuspensionCount  int
	SuspensionEndsAt time.Time
	Automatic        bool
	SuspendedAt      time.Time
	Metadata         map[string]any
}

// UserBannedEvent represents the payload for moderation.user.banned messages.
type UserBannedEvent struct {
	EventID         string
	UserID          string
	Actor           string
	Reason          string
	SuspensionCount int
	Automatic       bool
	BannedAt        time.Time
	Metadata        map[string]any
}

// SanctionLiftedEvent represents the payload for moderation.sanction.lifted messages.
// It covers both lift-suspension and lift-ban; PreviousStatus disambiguates.
type SanctionLiftedEvent struct {
	EventID        string
	UserID         string
	Actor          string
	Reason         string
	PreviousStatus AccountStatus
	LiftedAt       time.Time
	Metadata       map[string]any
}
