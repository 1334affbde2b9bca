package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/application"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
)

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	row, err := h.service.CreateContact(r.Context(), actor, application.CreateContactInput{
		Name:            strings.TrimSpace(req.Name),
		PipelineStage:   strings.TrimSpace(req.PipelineStage),
		MotivationLevel: strings.TrimSpace(req.MotivationLevel),
		Timeframe:       strings.TrimSpace(req.Timeframe),
		Preapproved:     req.Preapproved,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "", row)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	row, err := h.service.GetContact(r.Context(), actor, chi.URLParam(r, "contact_id"))
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", row)
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	row, err := h.service.UpdateContact(r.Context(), actor, chi.URLParam(r, "contact_id"), application.UpdateContactInput{
		Name:            req.Name,
		PipelineStage:   req.PipelineStage,
		MotivationLevel: req.MotivationLevel,
		Timeframe:       req.Timeframe,
		Preapproved:     req.Preapproved,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", row)
}

func (h *Handler) evaluateContact(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	evaluation, err := h.service.EvaluateContact(r.Context(), actor, chi.URLParam(r, "contact_id"))
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", evaluation)
}

func (h *Handler) listTransitions(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.service.ListTransitions(r.Context(), actor, chi.URLParam(r, "contact_id"), limit)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", rows)
}

func (h *Handler) recordInteraction(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	result, err := h.service.RecordInteraction(r.Context(), actor, chi.URLParam(r, "contact_id"), application.RecordInteractionInput{
		InteractionType:     strings.TrimSpace(req.InteractionType),
		Notes:               strings.TrimSpace(req.Notes),
		HasTimeframe:        req.HasTimeframe,
		PropertyIdentified:  req.PropertyIdentified,
		HadShowings:         req.HadShowings,
		OfferAccepted:       req.OfferAccepted,
		ClosingCompleted:    req.ClosingCompleted,
		AnalyzeConversation: req.AnalyzeConversation,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "", result)
}

func (h *Handler) dailyFocusList(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	minPriority, _ := strconv.Atoi(r.URL.Query().Get("min_priority"))
	maxActions, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	forceRefresh := r.URL.Query().Get("refresh") == "true"
	list, err := h.service.DailyFocusList(r.Context(), actor, application.FocusListOptions{
		MinimumPriority:     minPriority,
		MaximumDailyActions: maxActions,
		ForceRefresh:        forceRefresh,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", list)
}

func (h *Handler) completeDailyActions(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.CompleteDailyActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	record, err := h.service.CompleteDailyActions(r.Context(), actor, application.CompleteDailyActionsInput{
		Date:      strings.TrimSpace(req.Date),
		Completed: req.Completed,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", record)
}

func (h *Handler) getConsistency(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	record, err := h.service.GetConsistency(r.Context(), actor)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", record)
}

func (h *Handler) handleConversationAnalyzedWebhook(w http.ResponseWriter, r *http.Request) {
	var req contracts.ConversationAnalyzedWebhook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	bearer := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(bearer), "bearer ") {
		bearer = strings.TrimSpace(bearer[7:])
	}
	result, err := h.service.HandleConversationAnalyzedWebhook(r.Context(), bearer, application.ConversationAnalyzedInput{
		EventID:            strings.TrimSpace(req.EventID),
		EventType:          strings.TrimSpace(req.EventType),
		OccurredAt:         strings.TrimSpace(req.OccurredAt),
		SourceService:      strings.TrimSpace(req.SourceService),
		TraceID:            strings.TrimSpace(req.TraceID),
		SchemaVersion:      strings.TrimSpace(req.SchemaVersion),
		PartitionKeyPath:   strings.TrimSpace(req.PartitionKeyPath),
		PartitionKey:       strings.TrimSpace(req.PartitionKey),
		ContactID:          strings.TrimSpace(req.Data.ContactID),
		AgentID:            strings.TrimSpace(req.Data.AgentID),
		HasTimeframe:       req.Data.HasTimeframe,
		PropertyIdentified: req.Data.PropertyIdentified,
		MotivationLevel:    strings.TrimSpace(req.Data.MotivationLevel),
		HadShowings:        req.Data.HadShowings,
		OfferAccepted:      req.Data.OfferAccepted,
		ClosingCompleted:   req.Data.ClosingCompleted,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusAccepted, "", result)
}
