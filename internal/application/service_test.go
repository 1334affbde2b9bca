package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/memory"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
)

type capturePublisher struct {
	mu        sync.Mutex
	domain    []contracts.EventEnvelope
	analytics []contracts.EventEnvelope
	dlq       []contracts.DLQRecord
}

func (p *capturePublisher) PublishDomain(_ context.Context, event contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.domain = append(p.domain, event)
	return nil
}

func (p *capturePublisher) PublishAnalytics(_ context.Context, event contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analytics = append(p.analytics, event)
	return nil
}

func (p *capturePublisher) PublishDLQ(_ context.Context, record contracts.DLQRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dlq = append(p.dlq, record)
	return nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memory.Repositories, *capturePublisher) {
	repos := memory.NewRepositories()
	pub := &capturePublisher{}
	svc := NewService(Dependencies{
		Config:       Config{WebhookBearerToken: "test-secret"},
		Contacts:     repos.Contacts,
		Interactions: repos.Interactions,
		Transitions:  repos.Transitions,
		DailyActions: repos.DailyActions,
		Idempotency:  repos.Idempotency,
		Outbox:       repos.Outbox,
		EventDedup:   repos.EventDedup,
		FocusCache:   repos.FocusCache,
		DomainEvents: pub,
		Analytics:    pub,
		DLQ:          pub,
	})
	svc.nowFn = func() time.Time { return testNow }
	return svc, repos, pub
}

func seedContact(t *testing.T, repos *memory.Repositories, row domain.ContactRecord) domain.ContactRecord {
	t.Helper()
	if row.LastContactAt.IsZero() {
		row.LastContactAt = testNow
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = testNow
	}
	if err := repos.Contacts.Create(context.Background(), row); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return row
}

func TestCreateContactDefaults(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	actor := Actor{SubjectID: "agent-1", Role: "agent"}

	row, err := svc.CreateContact(context.Background(), actor, CreateContactInput{Name: "Dana Hill"})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	if row.Stage != domain.StageLead {
		t.Fatalf("expected default stage Lead, got %s", row.Stage)
	}
	if row.Motivation != domain.MotivationUnknown || row.Timeframe != domain.TimeframeUnknown {
		t.Fatalf("expected unknown motivation/timeframe, got %s/%s", row.Motivation, row.Timeframe)
	}
	if !row.LastContactAt.Equal(testNow) {
		t.Fatalf("creation should start the staleness clock at now")
	}

	stored, err := repos.Contacts.GetByID(context.Background(), "agent-1", row.ContactID)
	if err != nil {
		t.Fatalf("stored contact not found: %v", err)
	}
	if stored.Name != "Dana Hill" {
		t.Fatalf("unexpected stored name %q", stored.Name)
	}
}

func TestCreateContactRejectsUnknownEnums(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	actor := Actor{SubjectID: "agent-1"}

	cases := []CreateContactInput{
		{Name: "A", PipelineStage: "Prospect"},
		{Name: "A", MotivationLevel: "Extreme"},
		{Name: "A", Timeframe: "Someday"},
	}
	for _, input := range cases {
		if _, err := svc.CreateContact(context.Background(), actor, input); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("expected configuration error for %+v, got %v", input, err)
		}
	}
	if _, err := svc.CreateContact(context.Background(), actor, CreateContactInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input without a name, got %v", err)
	}
}

func TestEvaluateContactWritesBackAndEmitsAnalytics(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{
		ContactID:     "c-1",
		AgentID:       "agent-1",
		Name:          "Lee",
		Stage:         domain.StageActiveOpportunity,
		Motivation:    domain.MotivationHigh,
		Timeframe:     domain.TimeframeImmediate,
		LastContactAt: testNow.AddDate(0, 0, -10),
	})

	evaluation, err := svc.EvaluateContact(context.Background(), Actor{SubjectID: "agent-1"}, row.ContactID)
	if err != nil {
		t.Fatalf("EvaluateContact: %v", err)
	}
	if !evaluation.Monitor.ShouldFlag {
		t.Fatalf("expected seven-day flag after 10 untouched days")
	}
	if evaluation.Recommendation.Urgency != 10 {
		t.Fatalf("expected critical urgency, got %d", evaluation.Recommendation.Urgency)
	}
	if evaluation.Contact.PriorityScore != 100 {
		t.Fatalf("expected clamped score 100, got %d", evaluation.Contact.PriorityScore)
	}

	stored, _ := repos.Contacts.GetByID(context.Background(), "agent-1", row.ContactID)
	if stored.PriorityScore != 100 || !stored.SevenDayFlag {
		t.Fatalf("cached score/flag not written back: score=%d flag=%v", stored.PriorityScore, stored.SevenDayFlag)
	}

	pending, _ := repos.Outbox.ListPending(context.Background(), 10)
	if len(pending) != 1 || pending[0].Envelope.EventType != domain.EventPriorityUpdated {
		t.Fatalf("expected one priority_updated outbox record, got %+v", pending)
	}
	if pending[0].EventClass != domain.CanonicalEventClassAnalyticsOnly {
		t.Fatalf("priority updates are analytics-only, got class %s", pending[0].EventClass)
	}
}

func TestEvaluateContactScopedToAgent(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageLead})

	if _, err := svc.EvaluateContact(context.Background(), Actor{SubjectID: "agent-2"}, row.ContactID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for a different agent, got %v", err)
	}
	if _, err := svc.EvaluateContact(context.Background(), Actor{}, row.ContactID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without subject, got %v", err)
	}
}

func TestDailyFocusListRankingAndFiltering(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	// Critical: active opportunity untouched for 10 days.
	seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-critical", AgentID: "agent-1", Name: "Lee",
		Stage: domain.StageActiveOpportunity, Motivation: domain.MotivationHigh, Timeframe: domain.TimeframeImmediate,
		LastContactAt: testNow.AddDate(0, 0, -10),
	})
	// Cold lead on a long horizon scores below the default floor of 30.
	seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-cold", AgentID: "agent-1", Name: "Ana",
		Stage: domain.StageLead, Motivation: domain.MotivationLow, Timeframe: domain.TimeframeLong,
		LastContactAt: testNow,
	})
	// Mid-range new opportunity.
	seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-mid", AgentID: "agent-1", Name: "Sam",
		Stage: domain.StageNewOpportunity, Motivation: domain.MotivationMedium, Timeframe: domain.TimeframeShort,
		LastContactAt: testNow.AddDate(0, 0, -5),
	})
	// Corrupt row: unknown motivation must be skipped, not abort the batch.
	seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-bad", AgentID: "agent-1", Name: "Ghost",
		Stage: domain.StageLead, Motivation: "Bizarre", Timeframe: domain.TimeframeShort,
		LastContactAt: testNow,
	})

	list, err := svc.DailyFocusList(context.Background(), Actor{SubjectID: "agent-1"}, FocusListOptions{})
	if err != nil {
		t.Fatalf("DailyFocusList: %v", err)
	}
	if list.Skipped != 1 {
		t.Fatalf("expected 1 skipped record, got %d", list.Skipped)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items above the floor, got %d", len(list.Items))
	}
	if list.Items[0].Contact.ContactID != "c-critical" || list.Items[1].Contact.ContactID != "c-mid" {
		t.Fatalf("wrong ranking: %s then %s", list.Items[0].Contact.ContactID, list.Items[1].Contact.ContactID)
	}
	if list.Items[0].Contact.PriorityScore < list.Items[1].Contact.PriorityScore {
		t.Fatalf("list not sorted descending")
	}

	// Newly flagged contact emits a followup_due domain event.
	pending, _ := repos.Outbox.ListPending(context.Background(), 10)
	found := false
	for _, rec := range pending {
		if rec.Envelope.EventType == domain.EventFollowupDue {
			found = true
			if rec.EventClass != domain.CanonicalEventClassDomain {
				t.Fatalf("followup_due must be a domain event, got %s", rec.EventClass)
			}
		}
	}
	if !found {
		t.Fatalf("expected a followup_due outbox record")
	}
}

func TestDailyFocusListStableTieBreak(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	for _, id := range []string{"c-first", "c-second", "c-third"} {
		seedContact(t, repos, domain.ContactRecord{
			ContactID: id, AgentID: "agent-1", Name: id,
			Stage: domain.StageNewOpportunity, Motivation: domain.MotivationMedium, Timeframe: domain.TimeframeShort,
			LastContactAt: testNow.AddDate(0, 0, -5),
		})
	}
	list, err := svc.DailyFocusList(context.Background(), Actor{SubjectID: "agent-1"}, FocusListOptions{})
	if err != nil {
		t.Fatalf("DailyFocusList: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
	for i, want := range []string{"c-first", "c-second", "c-third"} {
		if list.Items[i].Contact.ContactID != want {
			t.Fatalf("tie-break must preserve input order: slot %d got %s", i, list.Items[i].Contact.ContactID)
		}
	}
}

func TestDailyFocusListCapsAndCaches(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	for i := 0; i < 5; i++ {
		seedContact(t, repos, domain.ContactRecord{
			ContactID: "c-" + string(rune('a'+i)), AgentID: "agent-1", Name: "Contact",
			Stage: domain.StageActiveOpportunity, Motivation: domain.MotivationHigh, Timeframe: domain.TimeframeImmediate,
			LastContactAt: testNow.AddDate(0, 0, -10),
		})
	}

	list, err := svc.DailyFocusList(context.Background(), Actor{SubjectID: "agent-1"}, FocusListOptions{MaximumDailyActions: 3})
	if err != nil {
		t.Fatalf("DailyFocusList: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected cap at 3, got %d", len(list.Items))
	}

	// Second call without refresh serves the cached list.
	if _, ok, _ := repos.FocusCache.Get(context.Background(), "agent-1"); !ok {
		t.Fatalf("expected cached payload after first build")
	}
	again, err := svc.DailyFocusList(context.Background(), Actor{SubjectID: "agent-1"}, FocusListOptions{})
	if err != nil {
		t.Fatalf("DailyFocusList cached: %v", err)
	}
	if len(again.Items) != 3 {
		t.Fatalf("cached list should match, got %d items", len(again.Items))
	}

	// ForceRefresh bypasses the cache and honors new options.
	fresh, err := svc.DailyFocusList(context.Background(), Actor{SubjectID: "agent-1"}, FocusListOptions{ForceRefresh: true, MaximumDailyActions: 5})
	if err != nil {
		t.Fatalf("DailyFocusList refresh: %v", err)
	}
	if len(fresh.Items) != 5 {
		t.Fatalf("expected 5 items on refresh, got %d", len(fresh.Items))
	}
}

func TestRecordInteractionResetsStalenessAndAdvances(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-1", AgentID: "agent-1", Name: "Sam",
		Stage: domain.StageNewOpportunity, Motivation: domain.MotivationMedium, Timeframe: domain.TimeframeShort,
		Preapproved: true, SevenDayFlag: true,
		LastContactAt: testNow.AddDate(0, 0, -9),
	})

	actor := Actor{SubjectID: "agent-1", IdempotencyKey: "idem-1"}
	result, err := svc.RecordInteraction(context.Background(), actor, row.ContactID, RecordInteractionInput{
		InteractionType: "Call",
		Notes:           "Did two showings this week",
		HadShowings:     true,
	})
	if err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}
	if result.StageEvaluation.NewStage != domain.StageActiveOpportunity || result.StageEvaluation.Confidence != 85 {
		t.Fatalf("expected advancement to Active Opportunity at 85, got %s/%d", result.StageEvaluation.NewStage, result.StageEvaluation.Confidence)
	}

	stored, _ := repos.Contacts.GetByID(context.Background(), "agent-1", row.ContactID)
	if !stored.LastContactAt.Equal(testNow) {
		t.Fatalf("staleness clock not reset")
	}
	if stored.SevenDayFlag {
		t.Fatalf("seven-day flag should clear on a new interaction")
	}
	if stored.Stage != domain.StageActiveOpportunity {
		t.Fatalf("stage not advanced, still %s", stored.Stage)
	}

	transitions, _ := repos.Transitions.ListByContact(context.Background(), "agent-1", row.ContactID, 10)
	if len(transitions) != 1 || transitions[0].Trigger != domain.TransitionTriggerInteraction {
		t.Fatalf("expected one interaction-triggered transition, got %+v", transitions)
	}

	pending, _ := repos.Outbox.ListPending(context.Background(), 10)
	found := false
	for _, rec := range pending {
		if rec.Envelope.EventType == domain.EventStageAdvanced {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stage_advanced outbox record")
	}
}

func TestRecordInteractionIdempotency(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageLead,
		LastContactAt: testNow.AddDate(0, 0, -1),
	})
	actor := Actor{SubjectID: "agent-1", IdempotencyKey: "idem-1"}
	input := RecordInteractionInput{InteractionType: "Text"}

	first, err := svc.RecordInteraction(context.Background(), actor, row.ContactID, input)
	if err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}
	replay, err := svc.RecordInteraction(context.Background(), actor, row.ContactID, input)
	if err != nil {
		t.Fatalf("RecordInteraction replay: %v", err)
	}
	if replay.Interaction.InteractionID != first.Interaction.InteractionID {
		t.Fatalf("replay must return the original result")
	}
	logged, _ := repos.Interactions.ListByContact(context.Background(), "agent-1", row.ContactID, 10)
	if len(logged) != 1 {
		t.Fatalf("expected exactly one logged interaction, got %d", len(logged))
	}

	if _, err := svc.RecordInteraction(context.Background(), actor, row.ContactID, RecordInteractionInput{InteractionType: "Email"}); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict for a different payload, got %v", err)
	}
	if _, err := svc.RecordInteraction(context.Background(), Actor{SubjectID: "agent-1"}, row.ContactID, input); !errors.Is(err, domain.ErrIdempotencyRequired) {
		t.Fatalf("expected idempotency key requirement, got %v", err)
	}
}

func TestUpdateContactManualOverride(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-1", AgentID: "agent-1", Name: "Kim", Stage: domain.StageUnderContract,
	})

	// Manual overrides may move backward, unlike the advisor.
	back := string(domain.StageActiveOpportunity)
	updated, err := svc.UpdateContact(context.Background(), Actor{SubjectID: "agent-1"}, row.ContactID, UpdateContactInput{PipelineStage: &back})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if updated.Stage != domain.StageActiveOpportunity {
		t.Fatalf("expected manual move to Active Opportunity, got %s", updated.Stage)
	}

	transitions, _ := repos.Transitions.ListByContact(context.Background(), "agent-1", row.ContactID, 10)
	if len(transitions) != 1 || transitions[0].Trigger != domain.TransitionTriggerManualOverride {
		t.Fatalf("expected a manual_override transition, got %+v", transitions)
	}
	if transitions[0].Confidence != 0 {
		t.Fatalf("manual override carries no advisor confidence, got %d", transitions[0].Confidence)
	}

	bad := "Paused"
	if _, err := svc.UpdateContact(context.Background(), Actor{SubjectID: "agent-1"}, row.ContactID, UpdateContactInput{PipelineStage: &bad}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown stage, got %v", err)
	}
}

func TestConversationWebhookAdvancesAndDedupes(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageActiveOpportunity,
		LastContactAt: testNow.AddDate(0, 0, -2),
	})

	input := ConversationAnalyzedInput{
		EventID:          "evt-1",
		EventType:        domain.EventConversationAnalyzed,
		OccurredAt:       testNow.Format(time.RFC3339),
		SourceService:    "conversation-analysis",
		TraceID:          "trace-1",
		SchemaVersion:    "v1",
		PartitionKeyPath: "data.contact_id",
		PartitionKey:     "c-1",
		ContactID:        "c-1",
		AgentID:          "agent-1",
		OfferAccepted:    true,
	}

	if _, err := svc.HandleConversationAnalyzedWebhook(context.Background(), "wrong-secret", input); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bad bearer, got %v", err)
	}

	ack, err := svc.HandleConversationAnalyzedWebhook(context.Background(), "test-secret", input)
	if err != nil {
		t.Fatalf("HandleConversationAnalyzedWebhook: %v", err)
	}
	if ack["accepted"] != true {
		t.Fatalf("expected acceptance ack, got %v", ack)
	}
	stored, _ := repos.Contacts.GetByID(context.Background(), "agent-1", "c-1")
	if stored.Stage != domain.StageUnderContract {
		t.Fatalf("expected advancement to Under Contract, got %s", stored.Stage)
	}

	// Replay of the same event is a no-op.
	if _, err := svc.HandleConversationAnalyzedWebhook(context.Background(), "test-secret", input); err != nil {
		t.Fatalf("replay should be accepted: %v", err)
	}
	transitions, _ := repos.Transitions.ListByContact(context.Background(), "agent-1", "c-1", 10)
	if len(transitions) != 1 {
		t.Fatalf("replayed event must not re-apply, got %d transitions", len(transitions))
	}
}

func TestConversationWebhookPartitionKeyInvariant(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	seedContact(t, repos, domain.ContactRecord{ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageLead})

	input := ConversationAnalyzedInput{
		EventID:          "evt-1",
		EventType:        domain.EventConversationAnalyzed,
		SourceService:    "conversation-analysis",
		TraceID:          "trace-1",
		SchemaVersion:    "v1",
		PartitionKeyPath: "data.contact_id",
		PartitionKey:     "someone-else",
		ContactID:        "c-1",
		AgentID:          "agent-1",
	}
	if _, err := svc.HandleConversationAnalyzedWebhook(context.Background(), "test-secret", input); !errors.Is(err, domain.ErrInvalidEnvelope) {
		t.Fatalf("expected invalid envelope for mismatched partition key, got %v", err)
	}
}

func TestHandleCanonicalEventValidation(t *testing.T) {
	t.Parallel()
	svc, repos, _ := newTestService()
	seedContact(t, repos, domain.ContactRecord{ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageUnderContract})

	valid := contracts.EventEnvelope{
		EventID:          "evt-1",
		EventType:        domain.EventConversationAnalyzed,
		EventClass:       domain.CanonicalEventClassDomain,
		OccurredAt:       testNow,
		PartitionKeyPath: "data.contact_id",
		PartitionKey:     "c-1",
		SourceService:    "conversation-analysis",
		TraceID:          "trace-1",
		SchemaVersion:    "v1",
		Data:             []byte(`{"contact_id":"c-1","agent_id":"agent-1","closing_completed":true}`),
	}
	if err := svc.HandleCanonicalEvent(context.Background(), valid); err != nil {
		t.Fatalf("HandleCanonicalEvent: %v", err)
	}
	stored, _ := repos.Contacts.GetByID(context.Background(), "agent-1", "c-1")
	if stored.Stage != domain.StageClosed {
		t.Fatalf("expected closing to complete the pipeline, got %s", stored.Stage)
	}

	unsupported := valid
	unsupported.EventID = "evt-2"
	unsupported.EventType = "payment.settled"
	if err := svc.HandleCanonicalEvent(context.Background(), unsupported); !errors.Is(err, domain.ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported event type, got %v", err)
	}

	missing := valid
	missing.TraceID = ""
	if err := svc.HandleCanonicalEvent(context.Background(), missing); !errors.Is(err, domain.ErrInvalidEnvelope) {
		t.Fatalf("expected invalid envelope, got %v", err)
	}
}

func TestFlushOutboxRoutesByClass(t *testing.T) {
	t.Parallel()
	svc, repos, pub := newTestService()
	row := seedContact(t, repos, domain.ContactRecord{
		ContactID: "c-1", AgentID: "agent-1", Stage: domain.StageActiveOpportunity,
		Motivation: domain.MotivationHigh, Timeframe: domain.TimeframeImmediate,
		LastContactAt: testNow.AddDate(0, 0, -10),
	})
	if _, err := svc.EvaluateContact(context.Background(), Actor{SubjectID: "agent-1"}, row.ContactID); err != nil {
		t.Fatalf("EvaluateContact: %v", err)
	}

	if err := svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("FlushOutbox: %v", err)
	}
	if len(pub.analytics) != 1 || pub.analytics[0].EventType != domain.EventPriorityUpdated {
		t.Fatalf("expected one analytics publish, got %+v", pub.analytics)
	}
	if len(pub.domain) != 0 {
		t.Fatalf("no domain events expected here, got %+v", pub.domain)
	}
	pending, _ := repos.Outbox.ListPending(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("flushed records must be marked sent, %d still pending", len(pending))
	}
}

func TestCompleteDailyActionsAndConsistency(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	actor := Actor{SubjectID: "agent-1"}

	if _, err := svc.CompleteDailyActions(context.Background(), actor, CompleteDailyActionsInput{Date: "2026-03-20", Completed: true}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection of a future date, got %v", err)
	}
	if _, err := svc.CompleteDailyActions(context.Background(), actor, CompleteDailyActionsInput{Date: "not-a-date", Completed: true}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection of a malformed date, got %v", err)
	}

	// day-4 done, day-2 done, today done; gaps count as missed.
	for _, day := range []string{"2026-03-11", "2026-03-13", "2026-03-15"} {
		if _, err := svc.CompleteDailyActions(context.Background(), actor, CompleteDailyActionsInput{Date: day, Completed: true}); err != nil {
			t.Fatalf("CompleteDailyActions(%s): %v", day, err)
		}
	}
	record, err := svc.GetConsistency(context.Background(), actor)
	if err != nil {
		t.Fatalf("GetConsistency: %v", err)
	}
	// 3 of 5 tracked days completed.
	if record.Score != 60 {
		t.Fatalf("expected score 60, got %d", record.Score)
	}
	if record.Streak != 1 {
		t.Fatalf("expected streak 1 (yesterday was a gap), got %d", record.Streak)
	}
	if len(record.Last7Days) != 5 {
		t.Fatalf("expected 5 tracked days, got %d", len(record.Last7Days))
	}
}

func TestGetConsistencyEmptyHistory(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	record, err := svc.GetConsistency(context.Background(), Actor{SubjectID: "agent-1"})
	if err != nil {
		t.Fatalf("GetConsistency: %v", err)
	}
	if record.Score != 0 || record.Streak != 0 || len(record.Last7Days) != 0 {
		t.Fatalf("expected zero record for a new agent, got %+v", record)
	}
}
