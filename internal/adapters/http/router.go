package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(jwtSecret))
			r.Post("/contacts", handler.createContact)
			r.Get("/contacts/{contact_id}", handler.getContact)
			r.Patch("/contacts/{contact_id}", handler.updateContact)
			r.Get("/contacts/{contact_id}/evaluation", handler.evaluateContact)
			r.Get("/contacts/{contact_id}/transitions", handler.listTransitions)
			r.Post("/contacts/{contact_id}/interactions", handler.recordInteraction)
			r.Get("/contacts/daily-focus", handler.dailyFocusList)
			r.Post("/actions/complete", handler.completeDailyActions)
			r.Get("/consistency", handler.getConsistency)
		})
		r.Post("/webhooks/conversation-analyzed", handler.handleConversationAnalyzedWebhook)
	})

	return r
}
