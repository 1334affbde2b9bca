package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
)

// EvaluateContact runs one full engine pass over a single contact: seven-day
// monitor first, then the priority scorer, then the action recommender. The
// refreshed score and flag are written back as cached values on the row.
func (s *Service) EvaluateContact(ctx context.Context, actor Actor, contactID string) (ContactEvaluation, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return ContactEvaluation{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(contactID) == "" {
		return ContactEvaluation{}, domain.ErrInvalidInput
	}
	row, err := s.contacts.GetByID(ctx, actor.SubjectID, strings.TrimSpace(contactID))
	if err != nil {
		return ContactEvaluation{}, err
	}
	now := s.nowFn()
	evaluation, err := s.evaluateSnapshot(row.Snapshot(now))
	if err != nil {
		return ContactEvaluation{}, err
	}

	if row.PriorityScore != evaluation.Contact.PriorityScore || row.SevenDayFlag != evaluation.Monitor.ShouldFlag {
		row.PriorityScore = evaluation.Contact.PriorityScore
		row.SevenDayFlag = evaluation.Monitor.ShouldFlag
		row.UpdatedAt = now
		if err := s.contacts.Update(ctx, row); err != nil {
			return ContactEvaluation{}, err
		}
	}
	s.enqueueAnalytics(ctx, domain.EventPriorityUpdated, "data.contact_id", row.ContactID, contracts.PriorityUpdatedData{
		ContactID:     row.ContactID,
		AgentID:       row.AgentID,
		PriorityScore: evaluation.Contact.PriorityScore,
		SevenDayFlag:  evaluation.Monitor.ShouldFlag,
		EvaluatedAt:   now.Format(time.RFC3339),
	})
	return evaluation, nil
}

// evaluateSnapshot is the pure core of an evaluation; it touches no storage.
func (s *Service) evaluateSnapshot(snapshot domain.Contact) (ContactEvaluation, error) {
	monitor := domain.CheckSevenDay(snapshot)
	score, err := domain.PriorityScore(snapshot, monitor.ShouldFlag)
	if err != nil {
		return ContactEvaluation{}, err
	}
	recommendation, err := domain.RecommendNextAction(snapshot, monitor)
	if err != nil {
		return ContactEvaluation{}, err
	}
	snapshot.PriorityScore = score
	snapshot.SevenDayFlag = monitor.ShouldFlag
	return ContactEvaluation{Contact: snapshot, Monitor: monitor, Recommendation: recommendation}, nil
}

// DailyFocusList scores every contact the agent owns and returns the ranked
// "needs attention today" list. Evaluation is isolated per contact: a malformed
// record is counted as skipped and never aborts the batch.
func (s *Service) DailyFocusList(ctx context.Context, actor Actor, opts FocusListOptions) (FocusList, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return FocusList{}, domain.ErrUnauthorized
	}
	minPriority := s.cfg.MinimumPriority
	if opts.MinimumPriority > 0 {
		minPriority = opts.MinimumPriority
	}
	maxActions := s.cfg.MaximumDailyActions
	if opts.MaximumDailyActions > 0 {
		maxActions = opts.MaximumDailyActions
	}

	if s.focusCache != nil && !opts.ForceRefresh {
		if payload, ok, err := s.focusCache.Get(ctx, actor.SubjectID); err == nil && ok {
			var cached FocusList
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.contacts.ListByAgent(ctx, actor.SubjectID)
	if err != nil {
		return FocusList{}, err
	}
	now := s.nowFn()
	list := FocusList{Items: []FocusItem{}, GeneratedAt: now}
	for _, row := range rows {
		evaluation, err := s.evaluateSnapshot(row.Snapshot(now))
		if err != nil {
			list.Skipped++
			continue
		}
		if evaluation.Monitor.ShouldFlag && !row.SevenDayFlag && s.followupWanted(ctx, row.AgentID) {
			s.enqueueDomainEvent(ctx, domain.EventFollowupDue, "data.contact_id", row.ContactID, contracts.FollowupDueData{
				ContactID:        row.ContactID,
				AgentID:          row.AgentID,
				Stage:            string(row.Stage),
				DaysSinceContact: evaluation.Monitor.DaysSinceContact,
				PriorityScore:    evaluation.Contact.PriorityScore,
				Reason:           evaluation.Monitor.Reason,
			})
		}
		if row.PriorityScore != evaluation.Contact.PriorityScore || row.SevenDayFlag != evaluation.Monitor.ShouldFlag {
			row.PriorityScore = evaluation.Contact.PriorityScore
			row.SevenDayFlag = evaluation.Monitor.ShouldFlag
			row.UpdatedAt = now
			_ = s.contacts.Update(ctx, row)
		}
		if evaluation.Contact.PriorityScore < minPriority {
			continue
		}
		list.Items = append(list.Items, FocusItem{
			Contact:        evaluation.Contact,
			Monitor:        evaluation.Monitor,
			Recommendation: evaluation.Recommendation,
		})
	}

	// Stable sort: descending score, input order is the only tie-break.
	sort.SliceStable(list.Items, func(i, j int) bool {
		return list.Items[i].Contact.PriorityScore > list.Items[j].Contact.PriorityScore
	})
	if len(list.Items) > maxActions {
		list.Items = list.Items[:maxActions]
	}

	if s.focusCache != nil {
		if payload, err := json.Marshal(list); err == nil {
			_ = s.focusCache.Set(ctx, actor.SubjectID, payload, s.cfg.FocusListCacheTTL)
		}
	}
	return list, nil
}

func (s *Service) CreateContact(ctx context.Context, actor Actor, input CreateContactInput) (domain.ContactRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ContactRecord{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.ContactRecord{}, domain.ErrInvalidInput
	}
	stageRaw := strings.TrimSpace(input.PipelineStage)
	if stageRaw == "" {
		stageRaw = string(domain.StageLead)
	}
	stage, err := domain.ParseStage(stageRaw)
	if err != nil {
		return domain.ContactRecord{}, err
	}
	motivation, err := domain.ParseMotivation(input.MotivationLevel)
	if err != nil {
		return domain.ContactRecord{}, err
	}
	timeframe, err := domain.ParseTimeframe(input.Timeframe)
	if err != nil {
		return domain.ContactRecord{}, err
	}

	now := s.nowFn()
	row := domain.ContactRecord{
		ContactID:     uuid.NewString(),
		AgentID:       actor.SubjectID,
		Name:          strings.TrimSpace(input.Name),
		Stage:         stage,
		Motivation:    motivation,
		Timeframe:     timeframe,
		Preapproved:   input.Preapproved,
		LastContactAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.contacts.Create(ctx, row); err != nil {
		return domain.ContactRecord{}, err
	}
	s.invalidateFocusCache(ctx, actor.SubjectID)
	return row, nil
}

// UpdateContact applies a partial update. A stage change here is the manual
// override path: unlike the advisor it may move backward, and it is recorded as
// a manual_override transition.
func (s *Service) UpdateContact(ctx context.Context, actor Actor, contactID string, input UpdateContactInput) (domain.ContactRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ContactRecord{}, domain.ErrUnauthorized
	}
	row, err := s.contacts.GetByID(ctx, actor.SubjectID, strings.TrimSpace(contactID))
	if err != nil {
		return domain.ContactRecord{}, err
	}
	now := s.nowFn()

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.MotivationLevel != nil {
		motivation, err := domain.ParseMotivation(*input.MotivationLevel)
		if err != nil {
			return domain.ContactRecord{}, err
		}
		row.Motivation = motivation
	}
	if input.Timeframe != nil {
		timeframe, err := domain.ParseTimeframe(*input.Timeframe)
		if err != nil {
			return domain.ContactRecord{}, err
		}
		row.Timeframe = timeframe
	}
	if input.Preapproved != nil {
		row.Preapproved = *input.Preapproved
	}
	if input.PipelineStage != nil {
		stage, err := domain.ParseStage(*input.PipelineStage)
		if err != nil {
			return domain.ContactRecord{}, err
		}
		if stage != row.Stage {
			if s.transitions != nil {
				_ = s.transitions.Create(ctx, domain.StageTransition{
					TransitionID: uuid.NewString(),
					ContactID:    row.ContactID,
					AgentID:      row.AgentID,
					FromStage:    row.Stage,
					ToStage:      stage,
					Confidence:   0,
					Rationale:    "Manual stage override.",
					Trigger:      domain.TransitionTriggerManualOverride,
					CreatedAt:    now,
				})
			}
			row.Stage = stage
		}
	}

	row.UpdatedAt = now
	if err := s.contacts.Update(ctx, row); err != nil {
		return domain.ContactRecord{}, err
	}
	s.invalidateFocusCache(ctx, actor.SubjectID)
	return row, nil
}

// RecordInteraction logs a touch on the contact and resets the staleness clock.
// This is the single place days-since-contact returns to zero. Fresh interaction
// evidence then feeds the stage advisor, which may advance the contact one hop.
func (s *Service) RecordInteraction(ctx context.Context, actor Actor, contactID string, input RecordInteractionInput) (InteractionResult, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return InteractionResult{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(actor.IdempotencyKey) == "" {
		return InteractionResult{}, domain.ErrIdempotencyRequired
	}
	if strings.TrimSpace(contactID) == "" || strings.TrimSpace(input.InteractionType) == "" {
		return InteractionResult{}, domain.ErrInvalidInput
	}
	requestHash := hashPayload(input)
	if cached, ok, err := s.getIdempotentInteraction(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return InteractionResult{}, err
	} else if ok {
		return cached, nil
	}

	row, err := s.contacts.GetByID(ctx, actor.SubjectID, strings.TrimSpace(contactID))
	if err != nil {
		return InteractionResult{}, err
	}
	now := s.nowFn()
	interaction := domain.Interaction{
		InteractionID:   uuid.NewString(),
		ContactID:       row.ContactID,
		AgentID:         row.AgentID,
		InteractionType: strings.TrimSpace(input.InteractionType),
		Notes:           strings.TrimSpace(input.Notes),
		OccurredAt:      now,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return InteractionResult{}, err
	}

	row.LastContactAt = now
	row.SevenDayFlag = false
	s.enqueueAnalytics(ctx, domain.EventInteractionLogged, "data.contact_id", row.ContactID, contracts.InteractionLoggedData{
		InteractionID:   interaction.InteractionID,
		ContactID:       row.ContactID,
		AgentID:         row.AgentID,
		InteractionType: interaction.InteractionType,
		OccurredAt:      now.Format(time.RFC3339),
	})

	analysis := domain.StageAnalysis{
		CurrentStage:       row.Stage,
		HasTimeframe:       input.HasTimeframe || (row.Timeframe != domain.TimeframeUnknown && row.Timeframe != ""),
		PropertyIdentified: input.PropertyIdentified,
		Motivation:         row.Motivation,
		HadShowings:        input.HadShowings,
		DaysSinceActivity:  0,
		OfferAccepted:      input.OfferAccepted,
		ClosingCompleted:   input.ClosingCompleted,
	}
	trigger := domain.TransitionTriggerInteraction
	if input.AnalyzeConversation && s.conversation != nil {
		if insights, err := s.conversation.GetConversationInsights(ctx, row.AgentID, row.ContactID); err == nil {
			analysis.HasTimeframe = analysis.HasTimeframe || insights.HasTimeframe
			analysis.PropertyIdentified = analysis.PropertyIdentified || insights.PropertyIdentified
			analysis.HadShowings = analysis.HadShowings || insights.HadShowings
			analysis.OfferAccepted = analysis.OfferAccepted || insights.OfferAccepted
			analysis.ClosingCompleted = analysis.ClosingCompleted || insights.ClosingCompleted
			if motivation, mErr := domain.ParseMotivation(insights.MotivationLevel); mErr == nil && motivation != domain.MotivationUnknown {
				analysis.Motivation = motivation
			}
			trigger = domain.TransitionTriggerConversation
		}
	}

	evaluation, err := domain.EvaluateStageTransition(analysis)
	if err != nil {
		return InteractionResult{}, err
	}
	if evaluation.Confidence > 0 && evaluation.NewStage != row.Stage {
		if err := s.applyAdvancement(ctx, &row, evaluation, trigger, now); err != nil {
			return InteractionResult{}, err
		}
	}

	row.UpdatedAt = now
	if err := s.contacts.Update(ctx, row); err != nil {
		return InteractionResult{}, err
	}
	s.invalidateFocusCache(ctx, actor.SubjectID)

	result := InteractionResult{Interaction: interaction, StageEvaluation: evaluation}
	if err := s.completeIdempotent(ctx, actor.IdempotencyKey, 201, result); err != nil {
		return InteractionResult{}, err
	}
	return result, nil
}

// applyAdvancement records a forward transition proposed by the advisor and
// emits the stage_advanced domain event. Backward proposals never reach here.
func (s *Service) applyAdvancement(ctx context.Context, row *domain.ContactRecord, evaluation domain.StageEvaluation, trigger string, now time.Time) error {
	transition := domain.StageTransition{
		TransitionID: uuid.NewString(),
		ContactID:    row.ContactID,
		AgentID:      row.AgentID,
		FromStage:    row.Stage,
		ToStage:      evaluation.NewStage,
		Confidence:   evaluation.Confidence,
		Rationale:    evaluation.Rationale,
		Trigger:      trigger,
		CreatedAt:    now,
	}
	if s.transitions != nil {
		if err := s.transitions.Create(ctx, transition); err != nil {
			return err
		}
	}
	fromStage := row.Stage
	row.Stage = evaluation.NewStage
	s.enqueueDomainEvent(ctx, domain.EventStageAdvanced, "data.contact_id", row.ContactID, contracts.StageAdvancedData{
		ContactID:      row.ContactID,
		AgentID:        row.AgentID,
		FromStage:      string(fromStage),
		ToStage:        string(evaluation.NewStage),
		Confidence:     evaluation.Confidence,
		Rationale:      evaluation.Rationale,
		TransitionID:   transition.TransitionID,
		TransitionedAt: now.Format(time.RFC3339),
	})
	return nil
}

func (s *Service) GetContact(ctx context.Context, actor Actor, contactID string) (domain.ContactRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ContactRecord{}, domain.ErrUnauthorized
	}
	return s.contacts.GetByID(ctx, actor.SubjectID, strings.TrimSpace(contactID))
}

func (s *Service) ListTransitions(ctx context.Context, actor Actor, contactID string, limit int) ([]domain.StageTransition, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if s.transitions == nil {
		return []domain.StageTransition{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.transitions.ListByContact(ctx, actor.SubjectID, strings.TrimSpace(contactID), limit)
}

// followupWanted checks the agent's notification preferences before a
// followup_due event is emitted. Unreachable preferences default to emitting.
func (s *Service) followupWanted(ctx context.Context, agentID string) bool {
	if s.notifications == nil {
		return true
	}
	prefs, err := s.notifications.GetNotificationPreferences(ctx, agentID)
	if err != nil {
		return true
	}
	return prefs.PushEnabled || prefs.EmailEnabled
}

func (s *Service) invalidateFocusCache(ctx context.Context, agentID string) {
	if s.focusCache != nil {
		_ = s.focusCache.Invalidate(ctx, agentID)
	}
}

func (s *Service) getIdempotentInteraction(ctx context.Context, key, requestHash string) (InteractionResult, bool, error) {
	if s.idempotency == nil {
		return InteractionResult{}, false, nil
	}
	now := s.nowFn()
	existing, err := s.idempotency.Get(ctx, key, now)
	if err != nil {
		return InteractionResult{}, false, err
	}
	if existing != nil {
		if existing.RequestHash != requestHash {
			return InteractionResult{}, false, domain.ErrIdempotencyConflict
		}
		var cached InteractionResult
		if err := json.Unmarshal(existing.ResponseBody, &cached); err != nil {
			return InteractionResult{}, false, err
		}
		return cached, true, nil
	}
	if err := s.idempotency.Reserve(ctx, key, requestHash, now.Add(s.cfg.IdempotencyTTL)); err != nil {
		return InteractionResult{}, false, err
	}
	return InteractionResult{}, false, nil
}

func (s *Service) completeIdempotent(ctx context.Context, key string, code int, payload any) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.idempotency.Complete(ctx, key, code, b, s.nowFn())
}

func hashPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// IsConfiguration reports whether err is a configuration error so batch callers
// can decide to skip the record instead of aborting.
func IsConfiguration(err error) bool {
	return errors.Is(err, domain.ErrConfiguration)
}
