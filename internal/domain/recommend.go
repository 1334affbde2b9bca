package domain

import "fmt"

// Behavioral factor tags recorded by the recommender, in evaluation order.
// Downstream prioritization lists and the dashboard render these directly.
const (
	FactorSevenDayViolation  = "7-Day Rule Violation"
	FactorHighMotivation     = "High Motivation"
	FactorUnknownTimeframe   = "Unknown Timeframe"
	FactorLongTimeframe      = "Long Timeframe"
	FactorMissingPreapproval = "Missing Pre-approval"
	FactorPreapproved        = "Pre-approved"
	FactorUnderContract      = "Under Contract"
	FactorRecentClosing      = "Recent Closing"
	FactorPastClient         = "Past Client"
)

// testimonialWindowDays bounds how long after closing a review ask still lands.
const testimonialWindowDays = 30

// RecommendNextAction chooses the single next outreach action for a contact.
// One branch per pipeline stage; an unrecognized stage is a configuration
// error, never a silent default, because a default branch would corrupt the
// urgency semantics downstream.
func RecommendNextAction(c Contact, monitor SevenDayResult) (RecommendedAction, error) {
	factors := make([]string, 0, 4)
	if monitor.ShouldFlag {
		factors = append(factors, FactorSevenDayViolation)
	}
	if c.Motivation == MotivationHigh {
		factors = append(factors, FactorHighMotivation)
	}

	switch c.Stage {
	case StageLead:
		return recommendForLead(c, monitor, factors), nil
	case StageNewOpportunity:
		return recommendForNewOpportunity(c, factors), nil
	case StageActiveOpportunity:
		return recommendForActiveOpportunity(c, monitor, factors), nil
	case StageUnderContract:
		factors = append(factors, FactorUnderContract)
		return RecommendedAction{
			ActionType:        ActionText,
			Urgency:           4,
			Script:            fmt.Sprintf("Quick check-in for %s: everything is on track for closing. Text them a short status update so there are no surprises.", displayName(c)),
			Rationale:         "Under contract: low-touch reassurance while the closing process runs.",
			BehavioralFactors: factors,
		}, nil
	case StageClosed:
		return recommendForClosed(c, factors), nil
	}
	return RecommendedAction{}, invalidStage(c.Stage)
}

func recommendForLead(c Contact, monitor SevenDayResult, factors []string) RecommendedAction {
	if monitor.ShouldFlag {
		return RecommendedAction{
			ActionType:        ActionCall,
			Urgency:           8,
			Script:            fmt.Sprintf("It's been %d days since you connected with %s. Call today before this lead goes cold.", c.DaysSinceContact, displayName(c)),
			Rationale:         fmt.Sprintf("Lead untouched for %d days; stale leads convert poorly without a direct call.", c.DaysSinceContact),
			BehavioralFactors: factors,
		}
	}
	if c.Timeframe == TimeframeUnknown || c.Timeframe == "" {
		factors = append(factors, FactorUnknownTimeframe)
		return RecommendedAction{
			ActionType:        ActionCall,
			Urgency:           6,
			Script:            fmt.Sprintf("Call %s and ask what timeframe they are working with. You can't prioritize this lead until you know.", displayName(c)),
			Rationale:         "Timeframe not yet qualified; a quick call unblocks prioritization.",
			BehavioralFactors: factors,
		}
	}
	if c.Timeframe == TimeframeLong {
		factors = append(factors, FactorLongTimeframe)
		return RecommendedAction{
			ActionType:        ActionCall,
			Urgency:           4,
			Script:            fmt.Sprintf("Touch base with %s. No pressure on a 6+ month horizon, just stay on their radar.", displayName(c)),
			Rationale:         "Long timeframe (6+ months): keep the relationship warm without pushing.",
			BehavioralFactors: factors,
		}
	}
	return RecommendedAction{
		ActionType:        ActionFollowUp,
		Urgency:           3,
		Script:            fmt.Sprintf("Send %s something useful, a market update or a listing that matches what they mentioned.", displayName(c)),
		Rationale:         "Qualified lead on a known timeframe; steady nurture keeps it moving.",
		BehavioralFactors: factors,
	}
}

func recommendForNewOpportunity(c Contact, factors []string) RecommendedAction {
	if !c.Preapproved {
		factors = append(factors, FactorMissingPreapproval)
		return RecommendedAction{
			ActionType:        ActionCall,
			Urgency:           7,
			Script:            fmt.Sprintf("Call %s about getting their pre-approval started. Nothing moves until the financing is lined up.", displayName(c)),
			Rationale:         "Missing pre-approval is the primary blocker for a new opportunity.",
			BehavioralFactors: factors,
		}
	}
	factors = append(factors, FactorPreapproved)
	return RecommendedAction{
		ActionType:        ActionSendListing,
		Urgency:           5,
		Script:            fmt.Sprintf("%s is pre-approved. Send over two or three listings that fit their criteria and offer to set up showings.", displayName(c)),
		Rationale:         "Pre-approval in hand; the next step is getting them in front of properties.",
		BehavioralFactors: factors,
	}
}

func recommendForActiveOpportunity(c Contact, monitor SevenDayResult, factors []string) RecommendedAction {
	if monitor.ShouldFlag {
		return RecommendedAction{
			ActionType:        ActionCall,
			Urgency:           10,
			Script:            fmt.Sprintf("Call %s right now. An active buyer has gone %d days without contact and may already be working with someone else.", displayName(c), c.DaysSinceContact),
			Rationale:         fmt.Sprintf("CRITICAL: 7-day rule violated on an active opportunity (%d days without contact).", c.DaysSinceContact),
			BehavioralFactors: factors,
		}
	}
	return RecommendedAction{
		ActionType:        ActionSendListing,
		Urgency:           6,
		Script:            fmt.Sprintf("Keep momentum with %s: send fresh listings or line up the next showing.", displayName(c)),
		Rationale:         "Active opportunity in regular contact; sustain the cadence.",
		BehavioralFactors: factors,
	}
}

func recommendForClosed(c Contact, factors []string) RecommendedAction {
	if c.DaysSinceContact <= testimonialWindowDays {
		factors = append(factors, FactorRecentClosing)
		return RecommendedAction{
			ActionType:        ActionEmail,
			Urgency:           5,
			Script:            fmt.Sprintf("Email %s while the closing is still fresh and ask for a review. Include the direct link.", displayName(c)),
			Rationale:         "Recently closed; review and testimonial requests land best within the first month.",
			BehavioralFactors: factors,
		}
	}
	factors = append(factors, FactorPastClient)
	return RecommendedAction{
		ActionType:        ActionFollowUp,
		Urgency:           3,
		Script:            fmt.Sprintf("Check in with %s. Past clients are the best referral source, a short personal note is enough.", displayName(c)),
		Rationale:         "Past client on relationship-maintenance cadence.",
		BehavioralFactors: factors,
	}
}

func displayName(c Contact) string {
	if c.Name != "" {
		return c.Name
	}
	return "this contact"
}
