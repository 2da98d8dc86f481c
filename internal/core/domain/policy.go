package domain

import (
	"errors"
	"strings"
	"time"
)

// ActionKind identifies a moderation event applied to a user's sanction state.
type ActionKind string

const (
	ActionAddStrike      ActionKind = "add_strike"
	ActionRemoveStrike   ActionKind = "remove_strike"
	ActionSuspend        ActionKind = "suspend"
	ActionBan            ActionKind = "ban"
	ActionLiftSuspension ActionKind = "lift_suspension"
	ActionLiftBan        ActionKind = "lift_ban"
)

// Outcome tags the result of an applied action for event routing and metrics.
type Outcome string

const (
	OutcomeStrikeRecorded   Outcome = "strike_recorded"
	OutcomeStrikeRemoved    Outcome = "strike_removed"
	OutcomeSuspended        Outcome = "suspended"
	OutcomeBanned           Outcome = "banned"
	OutcomeSuspensionLifted Outcome = "suspension_lifted"
	OutcomeBanLifted        Outcome = "ban_lifted"
)

var (
	// ErrInvalidTransition indicates the action is not applicable to the current status.
	ErrInvalidTransition = errors.New("invalid sanction transition")
	// ErrReasonRequired indicates the action mandates a non-empty reason.
	ErrReasonRequired = errors.New("reason is required")
	// ErrUnknownAction indicates the action kind is not part of the event union.
	ErrUnknownAction = errors.New("unknown moderation action")
)

// ModerationAction is a single admin- or system-initiated event.
type ModerationAction struct {
	Kind   ActionKind
	Actor  string
	Reason string
	At     time.Time
}

// Decision is the evaluator output: the next state plus the side effects the
// caller must apply (persist the state, append the audit entry).
type Decision struct {
	Outcome Outcome
	State   SanctionState
	Audit   AuditEntry
	Changed bool
}

// Policy holds the escalation thresholds. Strikes at StrikeLimit convert into a
// suspension; the suspension that would be the SuspensionLimit-th (or beyond)
// becomes a permanent ban instead.
type Policy struct {
	StrikeLimit        int
	SuspensionLimit    int
	SuspensionDuration time.Duration
}

// DefaultPolicy returns the production escalation thresholds: three strikes per
// suspension, a permanent ban on the third suspension, seven-day windows.
func DefaultPolicy() Policy {
	return Policy{
		StrikeLimit:        3,
		SuspensionLimit:    3,
		SuspensionDuration: 7 * 24 * time.Hour,
	}
}

// Apply evaluates a moderation action against the current state. It is pure:
// no I/O, no clock access (the action carries its timestamp), safe for
// concurrent use. On error the returned decision is zero and the input state
// is untouched.
func (p Policy) Apply(state SanctionState, action ModerationAction) (Decision, error) {
	reason := strings.TrimSpace(action.Reason)
	if reason == "" && requiresReason(action.Kind) {
		return Decision{}, ErrReasonRequired
	}

	at := action.At.UTC()
	prev := state.Status
	next := state

	var outcome Outcome
	switch action.Kind {
	case ActionAddStrike:
		next.StrikeCount++
		next.LastViolationAt = &at
		outcome = OutcomeStrikeRecorded
		// Escalation only applies to active accounts. Strikes against
		// suspended or banned users are still counted for the record.
		if next.Status == AccountStatusActive && next.StrikeCount >= p.StrikeLimit {
			next.SuspensionCount++
			next.StrikeCount = 0
			if next.SuspensionCount >= p.SuspensionLimit {
				next.Status = AccountStatusBanned
				next.BannedAt = &at
				bannedReason := reason
				next.BannedReason = &bannedReason
				next.SuspensionEndsAt = nil
				outcome = OutcomeBanned
			} else {
				next.Status = AccountStatusSuspended
				endsAt := at.Add(p.SuspensionDuration)
				next.SuspensionEndsAt = &endsAt
				outcome = OutcomeSuspended
			}
		}

	case ActionRemoveStrike:
		if next.StrikeCount > 0 {
			next.StrikeCount--
		}
		outcome = OutcomeStrikeRemoved

	case ActionSuspend:
		if state.Status != AccountStatusActive {
			return Decision{}, ErrInvalidTransition
		}
		next.Status = AccountStatusSuspended
		next.SuspensionCount++
		endsAt := at.Add(p.SuspensionDuration)
		next.SuspensionEndsAt = &endsAt
		outcome = OutcomeSuspended

	case ActionBan:
		if state.Status == AccountStatusBanned {
			return Decision{}, ErrInvalidTransition
		}
		next.Status = AccountStatusBanned
		next.BannedAt = &at
		bannedReason := reason
		next.BannedReason = &bannedReason
		next.SuspensionEndsAt = nil
		outcome = OutcomeBanned

	case ActionLiftSuspension:
		if state.Status != AccountStatusSuspended {
			return Decision{}, ErrInvalidTransition
		}
		next.Status = AccountStatusActive
		next.StrikeCount = 0
		next.SuspensionEndsAt = nil
		outcome = OutcomeSuspensionLifted

	case ActionLiftBan:
		if state.Status != AccountStatusBanned {
			return Decision{}, ErrInvalidTransition
		}
		next.Status = AccountStatusActive
		next.StrikeCount = 0
		next.BannedAt = nil
		next.BannedReason = nil
		outcome = OutcomeBanLifted

	default:
		return Decision{}, ErrUnknownAction
	}

	next.UpdatedAt = at

	return Decision{
		Outcome: outcome,
		State:   next,
		Changed: prev != next.Status,
		Audit: AuditEntry{
			UserID:          state.UserID,
			Action:          action.Kind,
			Actor:           action.Actor,
			Reason:          reason,
			PreviousStatus:  prev,
			NewStatus:       next.Status,
			StrikeCount:     next.StrikeCount,
			SuspensionCount: next.SuspensionCount,
			CreatedAt:       at,
		},
	}, nil
}

// requiresReason reports whether the action mandates a free-text reason.
// Lifting a sanction may omit it.
func requiresReason(kind ActionKind) bool {
	switch kind {
	case ActionAddStrike, ActionRemoveStrike, ActionSuspend, ActionBan:
		return true
	}
	return false
}
