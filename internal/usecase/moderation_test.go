package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/repository"
)

func fixedNow() time.Time {
	return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
}

type stubSanctionRepo struct {
	states map[string]domain.SanctionState
	audits []domain.AuditEntry

	conflictsLeft int
	getCalls      int
	createCalls   int
	lastFilter    port.SanctionFilter
}

func newStubSanctionRepo(states ...domain.SanctionState) *stubSanctionRepo {
	repo := &stubSanctionRepo{states: make(map[string]domain.SanctionState)}
	for _, state := range states {
		repo.states[state.UserID] = state
	}
	return repo
}

func (r *stubSanctionRepo) Create(_ context.Context, state domain.SanctionState) error {
	r.createCalls++
	if _, exists := r.states[state.UserID]; exists {
		return repository.ErrDuplicate
	}
	r.states[state.UserID] = state
	return nil
}

func (r *stubSanctionRepo) GetByUserID(_ context.Context, userID string) (*domain.SanctionState, error) {
	r.getCalls++
	state, ok := r.states[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := state
	return &copied, nil
}

func (r *stubSanctionRepo) List(_ context.Context, filter port.SanctionFilter) ([]domain.SanctionState, error) {
	r.lastFilter = filter
	out := make([]domain.SanctionState, 0, len(r.states))
	for _, state := range r.states {
		if filter.Status != "" && state.Status != filter.Status {
			continue
		}
		out = append(out, state)
	}
	return out, nil
}

func (r *stubSanctionRepo) ApplyDecision(_ context.Context, decision domain.Decision, expectedVersion int64) (*domain.SanctionState, error) {
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		// Simulate a lost race: some other writer bumped the version.
		current := r.states[decision.State.UserID]
		current.Version++
		r.states[decision.State.UserID] = current
		return nil, repository.ErrVersionConflict
	}

	current, ok := r.states[decision.State.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if current.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}

	next := decision.State
	next.Version = expectedVersion + 1
	r.states[next.UserID] = next
	r.audits = append(r.audits, decision.Audit)

	copied := next
	return &copied, nil
}

func (r *stubSanctionRepo) ListExpiredSuspensions(_ context.Context, reference time.Time, limit int) ([]domain.SanctionState, error) {
	out := make([]domain.SanctionState, 0)
	for _, state := range r.states {
		if state.IsSuspensionExpired(reference) {
			out = append(out, state)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubSanctionCache struct {
	states  map[string]domain.SanctionState
	deletes []string
	sets    int
}

func newStubSanctionCache() *stubSanctionCache {
	return &stubSanctionCache{states: make(map[string]domain.SanctionState)}
}

func (c *stubSanctionCache) GetSanctionState(_ context.Context, userID string) (*domain.SanctionState, error) {
	state, ok := c.states[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := state
	return &copied, nil
}

func (c *stubSanctionCache) SetSanctionState(_ context.Context, state domain.SanctionState, _ time.Duration) error {
	c.sets++
	c.states[state.UserID] = state
	return nil
}

func (c *stubSanctionCache) DeleteSanctionState(_ context.Context, userID string) error {
	c.deletes = append(c.deletes, userID)
	delete(c.states, userID)
	return nil
}

type publishedEvent struct {
	eventType string
	userID    string
	actor     string
	automatic bool
}

type stubEventPublisher struct {
	events []publishedEvent
}

func (p *stubEventPublisher) PublishStrikeRecorded(_ context.Context, event domain.StrikeRecordedEvent) error {
	p.events = append(p.events, publishedEvent{eventType: "strike.recorded", userID: event.UserID, actor: event.Actor})
	return nil
}

func (p *stubEventPublisher) PublishUserSuspended(_ context.Context, event domain.UserSuspendedEvent) error {
	p.events = append(p.events, publishedEvent{eventType: "user.suspended", userID: event.UserID, actor: event.Actor, automatic: event.Automatic})
	return nil
}

func (p *stubEventPublisher) PublishUserBanned(_ context.Context, event domain.UserBannedEvent) error {
	p.events = append(p.events, publishedEvent{eventType: "user.banned", userID: event.UserID, actor: event.Actor, automatic: event.Automatic})
	return nil
}

func (p *stubEventPublisher) PublishSanctionLifted(_ context.Context, event domain.SanctionLiftedEvent) error {
	p.events = append(p.events, publishedEvent{eventType: "sanction.lifted", userID: event.UserID, actor: event.Actor})
	return nil
}

func newTestModerationService(repo *stubSanctionRepo, cache *stubSanctionCache, publisher *stubEventPublisher) *ModerationService {
	return NewModerationService(repo, cache, publisher, domain.DefaultPolicy(), time.Minute).WithNow(fixedNow)
}

func TestModerationAddStrikePublishesEvent(t *testing.T) {
	repo := newStubSanctionRepo(domain.NewSanctionState("user-1", fixedNow()))
	cache := newStubSanctionCache()
	publisher := &stubEventPublisher{}
	service := newTestModerationService(repo, cache, publisher)

	result, err := service.AddStrike(context.Background(), "user-1", "mod-1", "spam")
	if err != nil {
		t.Fatalf("AddStrike returned error: %v", err)
	}
	if result.Outcome != domain.OutcomeStrikeRecorded {
		t.Fatalf("unexpected outcome: %s", result.Outcome)
	}
	if result.State.StrikeCount != 1 {
		t.Fatalf("expected 1 strike, got %d", result.State.StrikeCount)
	}

	if len(publisher.events) != 1 || publisher.events[0].eventType != "strike.recorded" {
		t.Fatalf("expected strike.recorded event, got %+v", publisher.events)
	}
	if len(cache.deletes) != 1 || cache.deletes[0] != "user-1" {
		t.Fatalf("expected cache invalidation for user-1, got %v", cache.deletes)
	}
	if len(repo.audits) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(repo.audits))
	}
	if repo.audits[0].ID == "" {
		t.Fatal("expected audit entry to carry a generated id")
	}
}

func TestModerationThirdStrikeSuspendsAutomatically(t *testing.T) {
	state := domain.NewSanctionState("user-1", fixedNow())
	state.StrikeCount = 2
	repo := newStubSanctionRepo(state)
	publisher := &stubEventPublisher{}
	service := newTestModerationService(repo, newStubSanctionCache(), publisher)

	result, err := service.AddStrike(context.Background(), "user-1", "mod-1", "third offense")
	if err != nil {
		t.Fatalf("AddStrike returned error: %v", err)
	}
	if result.Outcome != domain.OutcomeSuspended {
		t.Fatalf("unexpected outcome: %s", result.Outcome)
	}
	if result.State.Status != domain.AccountStatusSuspended {
		t.Fatalf("unexpected status: %s", result.State.Status)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.eventType != "user.suspended" {
		t.Fatalf("unexpected event: %s", event.eventType)
	}
	if !event.automatic {
		t.Fatal("expected suspension flagged automatic")
	}
}

func TestModerationFirstStrikeCreatesBaselineState(t *testing.T) {
	repo := newStubSanctionRepo()
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	result, err := service.AddStrike(context.Background(), "user-new", "mod-1", "spam")
	if err != nil {
		t.Fatalf("AddStrike returned error: %v", err)
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected one baseline create, got %d", repo.createCalls)
	}
	if result.State.StrikeCount != 1 {
		t.Fatalf("expected 1 strike, got %d", result.State.StrikeCount)
	}
}

func TestModerationVersionConflictRetries(t *testing.T) {
	repo := newStubSanctionRepo(domain.NewSanctionState("user-1", fixedNow()))
	repo.conflictsLeft = 2
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	result, err := service.AddStrike(context.Background(), "user-1", "mod-1", "spam")
	if err != nil {
		t.Fatalf("AddStrike returned error after retries: %v", err)
	}
	if result.State.StrikeCount != 1 {
		t.Fatalf("expected 1 strike after retry, got %d", result.State.StrikeCount)
	}
}

func TestModerationVersionConflictExhaustion(t *testing.T) {
	repo := newStubSanctionRepo(domain.NewSanctionState("user-1", fixedNow()))
	repo.conflictsLeft = applyRetryLimit
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	_, err := service.AddStrike(context.Background(), "user-1", "mod-1", "spam")
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
}

func TestModerationInvalidTransitionLeavesStateUntouched(t *testing.T) {
	state := domain.NewSanctionState("user-1", fixedNow())
	repo := newStubSanctionRepo(state)
	publisher := &stubEventPublisher{}
	service := newTestModerationService(repo, newStubSanctionCache(), publisher)

	_, err := service.LiftBan(context.Background(), "user-1", "mod-1", "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	stored := repo.states["user-1"]
	if stored.Version != state.Version || stored.Status != state.Status {
		t.Fatalf("state mutated by rejected action: %+v", stored)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %d", len(publisher.events))
	}
	if len(repo.audits) != 0 {
		t.Fatalf("expected no audit entries, got %d", len(repo.audits))
	}
}

func TestModerationRequiresActor(t *testing.T) {
	repo := newStubSanctionRepo(domain.NewSanctionState("user-1", fixedNow()))
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	if _, err := service.Ban(context.Background(), "user-1", "  ", "fraud"); !errors.Is(err, ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
	if _, err := service.Ban(context.Background(), "", "mod-1", "fraud"); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestModerationBanRequiresReason(t *testing.T) {
	repo := newStubSanctionRepo(domain.NewSanctionState("user-1", fixedNow()))
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	if _, err := service.Ban(context.Background(), "user-1", "mod-1", "  "); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestModerationGetSanctionReadsThroughCache(t *testing.T) {
	state := domain.NewSanctionState("user-1", fixedNow())
	repo := newStubSanctionRepo(state)
	cache := newStubSanctionCache()
	service := newTestModerationService(repo, cache, &stubEventPublisher{})

	first, err := service.GetSanction(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSanction returned error: %v", err)
	}
	if first.UserID != "user-1" {
		t.Fatalf("unexpected user id: %s", first.UserID)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache population on miss, got %d sets", cache.sets)
	}

	repoCallsAfterFirst := repo.getCalls
	if _, err := service.GetSanction(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetSanction returned error: %v", err)
	}
	if repo.getCalls != repoCallsAfterFirst {
		t.Fatal("expected second read served from cache")
	}
}

func TestModerationListSanctionsNormalizesFilter(t *testing.T) {
	suspended := domain.NewSanctionState("user-1", fixedNow())
	suspended.Status = domain.AccountStatusSuspended
	active := domain.NewSanctionState("user-2", fixedNow())
	repo := newStubSanctionRepo(suspended, active)
	service := newTestModerationService(repo, newStubSanctionCache(), &stubEventPublisher{})

	states, err := service.ListSanctions(context.Background(), port.SanctionFilter{
		Status: domain.AccountStatusSuspended,
		Limit:  0,
		Offset: -5,
	})
	if err != nil {
		t.Fatalf("ListSanctions returned error: %v", err)
	}
	if len(states) != 1 || states[0].UserID != "user-1" {
		t.Fatalf("unexpected states: %+v", states)
	}

	if repo.lastFilter.Limit != defaultSanctionPageSize {
		t.Fatalf("expected default limit %d, got %d", defaultSanctionPageSize, repo.lastFilter.Limit)
	}
	if repo.lastFilter.Offset != 0 {
		t.Fatalf("expected offset floored to 0, got %d", repo.lastFilter.Offset)
	}

	if _, err := service.ListSanctions(context.Background(), port.SanctionFilter{Limit: 10000}); err != nil {
		t.Fatalf("ListSanctions returned error: %v", err)
	}
	if repo.lastFilter.Limit != maxSanctionPageSize {
		t.Fatalf("expected limit capped at %d, got %d", maxSanctionPageSize, repo.lastFilter.Limit)
	}
}

func TestModerationListSanctionsRejectsUnknownStatus(t *testing.T) {
	service := newTestModerationService(newStubSanctionRepo(), newStubSanctionCache(), &stubEventPublisher{})

	_, err := service.ListSanctions(context.Background(), port.SanctionFilter{Status: "shadowbanned"})
	if !errors.Is(err, ErrInvalidStatusFilter) {
		t.Fatalf("expected ErrInvalidStatusFilter, got %v", err)
	}
}

func TestModerationGetSanctionUnknownUser(t *testing.T) {
	service := newTestModerationService(newStubSanctionRepo(), newStubSanctionCache(), &stubEventPublisher{})

	_, err := service.GetSanction(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
