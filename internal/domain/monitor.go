package domain

import "fmt"

// SevenDayThreshold is the stagnation policy: any non-closed contact untouched
// for at least this many days requires escalated outreach.
const SevenDayThreshold = 7

type SevenDayResult struct {
	ShouldFlag       bool   `json:"should_flag"`
	DaysSinceContact int    `json:"days_since_contact"`
	Reason           string `json:"reason,omitempty"`
}

// CheckSevenDay is a pure threshold predicate over the current snapshot; it
// keeps no history and applies no hysteresis.
func CheckSevenDay(c Contact) SevenDayResult {
	result := SevenDayResult{DaysSinceContact: c.DaysSinceContact}
	if c.Stage == StageClosed {
		return result
	}
	if c.DaysSinceContact < SevenDayThreshold {
		return result
	}
	result.ShouldFlag = true
	result.Reason = fmt.Sprintf("%s contact with no touch in %d days", c.Stage, c.DaysSinceContact)
	return result
}
