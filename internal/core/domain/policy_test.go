package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func action(kind ActionKind, reason string) ModerationAction {
	return ModerationAction{Kind: kind, Actor: "admin-1", Reason: reason, At: testNow}
}

func freshState() SanctionState {
	return NewSanctionState("user-1", testNow)
}

func TestPolicyThreeStrikesSuspends(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()

	for i := 0; i < 2; i++ {
		decision, err := policy.Apply(state, action(ActionAddStrike, "spam"))
		if err != nil {
			t.Fatalf("Apply strike %d returned error: %v", i+1, err)
		}
		if decision.State.Status != AccountStatusActive {
			t.Fatalf("expected active after %d strikes, got %s", i+1, decision.State.Status)
		}
		if decision.Outcome != OutcomeStrikeRecorded {
			t.Fatalf("expected strike_recorded outcome, got %s", decision.Outcome)
		}
		state = decision.State
	}

	if state.StrikeCount != 2 {
		t.Fatalf("expected 2 strikes at rest, got %d", state.StrikeCount)
	}

	decision, err := policy.Apply(state, action(ActionAddStrike, "spam"))
	if err != nil {
		t.Fatalf("Apply third strike returned error: %v", err)
	}
	if decision.Outcome != OutcomeSuspended {
		t.Fatalf("expected suspension on third strike, got %s", decision.Outcome)
	}
	if decision.State.Status != AccountStatusSuspended {
		t.Fatalf("expected suspended status, got %s", decision.State.Status)
	}
	if decision.State.StrikeCount != 0 {
		t.Fatalf("expected strikes consumed by suspension, got %d", decision.State.StrikeCount)
	}
	if decision.State.SuspensionCount != 1 {
		t.Fatalf("expected suspension count 1, got %d", decision.State.SuspensionCount)
	}
	if decision.State.SuspensionEndsAt == nil {
		t.Fatalf("expected suspension window to be set")
	}
	if got, want := *decision.State.SuspensionEndsAt, testNow.Add(7*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expected window ending %v, got %v", want, got)
	}
}

func TestPolicyThirdSuspensionCycleBans(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()

	for cycle := 1; cycle <= 3; cycle++ {
		for i := 0; i < 3; i++ {
			decision, err := policy.Apply(state, action(ActionAddStrike, "abuse"))
			if err != nil {
				t.Fatalf("cycle %d strike %d: %v", cycle, i+1, err)
			}
			state = decision.State
		}

		if cycle < 3 {
			if state.Status != AccountStatusSuspended {
				t.Fatalf("cycle %d: expected suspension, got %s", cycle, state.Status)
			}
			decision, err := policy.Apply(state, action(ActionLiftSuspension, ""))
			if err != nil {
				t.Fatalf("cycle %d lift: %v", cycle, err)
			}
			state = decision.State
			if state.Status != AccountStatusActive {
				t.Fatalf("cycle %d: expected active after lift, got %s", cycle, state.Status)
			}
			if state.SuspensionCount != cycle {
				t.Fatalf("cycle %d: expected suspension count preserved at %d, got %d", cycle, cycle, state.SuspensionCount)
			}
		}
	}

	if state.Status != AccountStatusBanned {
		t.Fatalf("expected permanent ban on third cycle, got %s", state.Status)
	}
	if state.SuspensionCount != 3 {
		t.Fatalf("expected suspension count 3, got %d", state.SuspensionCount)
	}
	if state.BannedAt == nil {
		t.Fatalf("expected banned_at to be set")
	}
}

func TestPolicyStrikeWithOneSuspensionSuspendsAgain(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()
	state.StrikeCount = 2
	state.SuspensionCount = 1

	decision, err := policy.Apply(state, action(ActionAddStrike, "harassment"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if decision.State.Status != AccountStatusSuspended {
		t.Fatalf("expected suspended, got %s", decision.State.Status)
	}
	if decision.State.StrikeCount != 0 || decision.State.SuspensionCount != 2 {
		t.Fatalf("expected {0 strikes, 2 suspensions}, got {%d, %d}",
			decision.State.StrikeCount, decision.State.SuspensionCount)
	}
	if decision.State.SuspensionEndsAt == nil || !decision.State.SuspensionEndsAt.Equal(testNow.Add(7*24*time.Hour)) {
		t.Fatalf("expected 7 day window from event time")
	}
}

func TestPolicyStrikeWithTwoSuspensionsBans(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()
	state.StrikeCount = 2
	state.SuspensionCount = 2

	decision, err := policy.Apply(state, action(ActionAddStrike, "harassment"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if decision.State.Status != AccountStatusBanned {
		t.Fatalf("expected banned, got %s", decision.State.Status)
	}
	if decision.State.SuspensionCount != 3 {
		t.Fatalf("expected suspension count 3, got %d", decision.State.SuspensionCount)
	}
	if decision.State.BannedAt == nil || !decision.State.BannedAt.Equal(testNow) {
		t.Fatalf("expected banned_at = event time")
	}
	if decision.Outcome != OutcomeBanned {
		t.Fatalf("expected banned outcome, got %s", decision.Outcome)
	}
}

func TestPolicyOverThresholdSuspensionCountStillBans(t *testing.T) {
	// A state already past the limit (manual admin adjustments) must still
	// resolve to a ban: the check is >=, not ==.
	policy := DefaultPolicy()
	state := freshState()
	state.StrikeCount = 2
	state.SuspensionCount = 5

	decision, err := policy.Apply(state, action(ActionAddStrike, "abuse"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if decision.State.Status != AccountStatusBanned {
		t.Fatalf("expected banned, got %s", decision.State.Status)
	}
	if decision.State.SuspensionCount != 6 {
		t.Fatalf("expected suspension count 6, got %d", decision.State.SuspensionCount)
	}
}

func TestPolicyRemoveStrikeFloorsAtZero(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()

	decision, err := policy.Apply(state, action(ActionRemoveStrike, "appeal accepted"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if decision.State.StrikeCount != 0 {
		t.Fatalf("expected strike count to stay at 0, got %d", decision.State.StrikeCount)
	}
	if decision.State.Status != AccountStatusActive {
		t.Fatalf("expected status unchanged, got %s", decision.State.Status)
	}
}

func TestPolicyDoubleLiftRejected(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()

	decision, err := policy.Apply(state, action(ActionSuspend, "ToS violation"))
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	state = decision.State

	decision, err = policy.Apply(state, action(ActionLiftSuspension, ""))
	if err != nil {
		t.Fatalf("first lift: %v", err)
	}
	state = decision.State

	if _, err := policy.Apply(state, action(ActionLiftSuspension, "")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double lift, got %v", err)
	}
}

func TestPolicyLiftBanPreservesSuspensionCount(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()
	state.StrikeCount = 2
	state.SuspensionCount = 2

	decision, err := policy.Apply(state, action(ActionBan, "fraud"))
	if err != nil {
		t.Fatalf("ban: %v", err)
	}
	state = decision.State
	if state.SuspensionCount != 2 {
		t.Fatalf("direct ban must not touch suspension count, got %d", state.SuspensionCount)
	}

	decision, err = policy.Apply(state, action(ActionLiftBan, ""))
	if err != nil {
		t.Fatalf("lift ban: %v", err)
	}
	if decision.State.Status != AccountStatusActive {
		t.Fatalf("expected active, got %s", decision.State.Status)
	}
	if decision.State.StrikeCount != 0 {
		t.Fatalf("expected strikes reset, got %d", decision.State.StrikeCount)
	}
	if decision.State.SuspensionCount != 2 {
		t.Fatalf("expected suspension history preserved, got %d", decision.State.SuspensionCount)
	}
	if decision.State.BannedAt != nil || decision.State.BannedReason != nil {
		t.Fatalf("expected ban fields cleared")
	}
}

func TestPolicyDirectBanFromSuspended(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()

	decision, err := policy.Apply(state, action(ActionSuspend, "ToS violation"))
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	state = decision.State

	decision, err = policy.Apply(state, action(ActionBan, "repeat offender"))
	if err != nil {
		t.Fatalf("ban from suspended: %v", err)
	}
	if decision.State.Status != AccountStatusBanned {
		t.Fatalf("expected banned, got %s", decision.State.Status)
	}
	if decision.State.SuspensionEndsAt != nil {
		t.Fatalf("expected suspension window cleared on ban")
	}
}

func TestPolicyStrikeOnSuspendedCountsWithoutEscalation(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()
	state.Status = AccountStatusSuspended
	state.StrikeCount = 2

	decision, err := policy.Apply(state, action(ActionAddStrike, "continued abuse"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if decision.State.Status != AccountStatusSuspended {
		t.Fatalf("expected status unchanged, got %s", decision.State.Status)
	}
	if decision.State.StrikeCount != 3 {
		t.Fatalf("expected strike recorded for audit, got %d", decision.State.StrikeCount)
	}
	if decision.State.SuspensionCount != 0 {
		t.Fatalf("expected no escalation while suspended, got %d", decision.State.SuspensionCount)
	}
}

func TestPolicyInvalidTransitions(t *testing.T) {
	policy := DefaultPolicy()

	banned := freshState()
	banned.Status = AccountStatusBanned

	cases := []struct {
		name   string
		state  SanctionState
		action ModerationAction
	}{
		{"lift ban on active", freshState(), action(ActionLiftBan, "")},
		{"lift suspension on active", freshState(), action(ActionLiftSuspension, "")},
		{"suspend banned", banned, action(ActionSuspend, "x")},
		{"ban banned", banned, action(ActionBan, "x")},
	}

	for _, tc := range cases {
		if _, err := policy.Apply(tc.state, tc.action); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s: expected ErrInvalidTransition, got %v", tc.name, err)
		}
	}
}

func TestPolicyReasonRequired(t *testing.T) {
	policy := DefaultPolicy()

	for _, kind := range []ActionKind{ActionAddStrike, ActionRemoveStrike, ActionSuspend, ActionBan} {
		if _, err := policy.Apply(freshState(), action(kind, "   ")); !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("%s: expected ErrReasonRequired, got %v", kind, err)
		}
	}
}

func TestPolicyAuditEntryReflectsTransition(t *testing.T) {
	policy := DefaultPolicy()
	state := freshState()
	state.StrikeCount = 2
	state.SuspensionCount = 1

	decision, err := policy.Apply(state, action(ActionAddStrike, "spam"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	audit := decision.Audit
	if audit.UserID != "user-1" || audit.Actor != "admin-1" {
		t.Fatalf("unexpected audit identity: %+v", audit)
	}
	if audit.PreviousStatus != AccountStatusActive || audit.NewStatus != AccountStatusSuspended {
		t.Fatalf("unexpected audit statuses: %s -> %s", audit.PreviousStatus, audit.NewStatus)
	}
	if audit.StrikeCount != 0 || audit.SuspensionCount != 2 {
		t.Fatalf("audit counts should reflect the post-transition state, got {%d, %d}",
			audit.StrikeCount, audit.SuspensionCount)
	}
	if !decision.Changed {
		t.Fatalf("expected Changed to be true on status transition")
	}
}
