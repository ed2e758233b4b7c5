package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gabbaihq/luach/internal/boardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *boardservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Columns CRUD.
	r.Get("/columns", h.ListColumns)
	r.Post("/columns", h.CreateColumn)
	r.Get("/columns/{id}", h.GetColumn)
	r.Put("/columns/{id}", h.UpdateColumn)
	r.Delete("/columns/{id}", h.DeleteColumn)

	// Per-column event operations.
	r.Get("/columns/{id}/events", h.ListEvents)
	r.Post("/columns/{id}/reorder", h.ReorderEvents)
	r.Post("/columns/{id}/import", h.ImportEvents)

	// Events CRUD.
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{id}", h.GetEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)

	// Resolved board snapshot and zmanim.
	r.Get("/board", h.Board)
	r.Get("/zmanim", h.Zmanim)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
