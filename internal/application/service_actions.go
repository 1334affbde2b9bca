package application

import (
	"context"
	"strings"
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
)

const dayFormat = "2006-01-02"

// CompleteDailyActions records whether the agent finished their assigned action
// set for a day. Upserts so a late correction overwrites the earlier mark.
func (s *Service) CompleteDailyActions(ctx context.Context, actor Actor, input CompleteDailyActionsInput) (domain.ConsistencyRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ConsistencyRecord{}, domain.ErrUnauthorized
	}
	now := s.nowFn()
	day := strings.TrimSpace(input.Date)
	if day == "" {
		day = now.Format(dayFormat)
	}
	parsed, err := time.Parse(dayFormat, day)
	if err != nil || parsed.After(now) {
		return domain.ConsistencyRecord{}, domain.ErrInvalidInput
	}
	if err := s.dailyActions.Upsert(ctx, domain.DailyActionEntry{
		AgentID:   actor.SubjectID,
		Day:       day,
		Completed: input.Completed,
		UpdatedAt: now,
	}); err != nil {
		return domain.ConsistencyRecord{}, err
	}
	return s.GetConsistency(ctx, actor)
}

// GetConsistency builds the trailing completion history for the agent, newest
// last, and scores it. Days between the first logged entry and today with no
// log count as missed; an agent with no history at all gets a zero record.
func (s *Service) GetConsistency(ctx context.Context, actor Actor) (domain.ConsistencyRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ConsistencyRecord{}, domain.ErrUnauthorized
	}
	now := s.nowFn()
	windowStart := now.AddDate(0, 0, -(s.cfg.ConsistencyWindowDays - 1))
	entries, err := s.dailyActions.ListRecent(ctx, actor.SubjectID, windowStart.Format(dayFormat))
	if err != nil {
		return domain.ConsistencyRecord{}, err
	}
	history := buildHistory(entries, now)
	return domain.ScoreConsistency(history, s.cfg.ConsistencyWindowDays), nil
}

func buildHistory(entries []domain.DailyActionEntry, now time.Time) []bool {
	if len(entries) == 0 {
		return nil
	}
	byDay := make(map[string]bool, len(entries))
	earliest := ""
	for _, entry := range entries {
		byDay[entry.Day] = entry.Completed
		if earliest == "" || entry.Day < earliest {
			earliest = entry.Day
		}
	}
	start, err := time.Parse(dayFormat, earliest)
	if err != nil {
		return nil
	}
	today := now.Format(dayFormat)
	history := make([]bool, 0, 31)
	for day := start; day.Format(dayFormat) <= today; day = day.AddDate(0, 0, 1) {
		history = append(history, byDay[day.Format(dayFormat)])
	}
	return history
}
