package contracts

type CreateContactRequest struct {
	Name            string `json:"name"`
	PipelineStage   string `json:"pipeline_stage"`
	MotivationLevel string `json:"motivation_level"`
	Timeframe       string `json:"timeframe"`
	Preapproved     bool   `json:"preapproval_status"`
}

type UpdateContactRequest struct {
	Name            *string `json:"name,omitempty"`
	PipelineStage   *string `json:"pipeline_stage,omitempty"`
	MotivationLevel *string `json:"motivation_level,omitempty"`
	Timeframe       *string `json:"timeframe,omitempty"`
	Preapproved     *bool   `json:"preapproval_status,omitempty"`
}

type RecordInteractionRequest struct {
	InteractionType     string `json:"interaction_type"`
	Notes               string `json:"notes,omitempty"`
	HasTimeframe        bool   `json:"has_timeframe"`
	PropertyIdentified  bool   `json:"property_identified"`
	HadShowings         bool   `json:"had_showings"`
	OfferAccepted       bool   `json:"offer_accepted"`
	ClosingCompleted    bool   `json:"closing_completed"`
	AnalyzeConversation bool   `json:"analyze_conversation"`
}

type CompleteDailyActionsRequest struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}
