package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gabbaihq/luach/internal/apperr"
	"github.com/gabbaihq/luach/internal/boardservice"
	"github.com/gabbaihq/luach/internal/checksum"
	"github.com/gabbaihq/luach/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *boardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	var vErrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.As(err, &vErrs):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListColumns handles GET /api/columns.
//
//	@Summary	List board columns
//	@Tags		columns
//	@Produce	json
//	@Success	200	{object}	ColumnListResponse
//	@Security	BearerAuth
//	@Router		/columns [get]
func (h *Handler) ListColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.Columns(r.Context())
	if err != nil {
		writeError(w, "list columns", err)
		return
	}
	if cols == nil {
		cols = []models.Column{}
	}
	writeJSON(w, http.StatusOK, ColumnListResponse{Columns: cols})
}

// CreateColumn handles POST /api/columns.
//
//	@Summary	Create a column
//	@Tags		columns
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ColumnRequest	true	"Column to create"
//	@Success	201		{object}	models.Column
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns [post]
func (h *Handler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var req ColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	col, err := h.svc.CreateColumn(r.Context(), req.toModel())
	if err != nil {
		writeError(w, "create column", err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

// GetColumn handles GET /api/columns/{id}.
//
//	@Summary	Get a column by id
//	@Tags		columns
//	@Produce	json
//	@Param		id	path		string	true	"Column id"
//	@Success	200	{object}	models.Column
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id} [get]
func (h *Handler) GetColumn(w http.ResponseWriter, r *http.Request) {
	col, err := h.svc.GetColumn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get column", err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

// UpdateColumn handles PUT /api/columns/{id}.
//
//	@Summary	Update a column
//	@Tags		columns
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Column id"
//	@Param		body	body		ColumnRequest	true	"Updated column"
//	@Success	200		{object}	models.Column
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id} [put]
func (h *Handler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	var req ColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	col, err := h.svc.UpdateColumn(r.Context(), chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeError(w, "update column", err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

// DeleteColumn handles DELETE /api/columns/{id}.
//
//	@Summary	Delete a column and its events
//	@Tags		columns
//	@Param		id	path	string	true	"Column id"
//	@Success	204	"Column deleted"
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id} [delete]
func (h *Handler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteColumn(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete column", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/columns/{id}/events.
//
//	@Summary	List a column's events in stored order
//	@Tags		events
//	@Produce	json
//	@Param		id	path		string	true	"Column id"
//	@Success	200	{object}	EventListResponse
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id}/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, EventListResponse{Events: events})
}

// ReorderEvents handles POST /api/columns/{id}/reorder.
//
//	@Summary	Reorder a column's events
//	@Tags		events
//	@Accept		json
//	@Param		id		path	string			true	"Column id"
//	@Param		body	body	ReorderRequest	true	"New event order"
//	@Success	204		"Reordered"
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id}/reorder [post]
func (h *Handler) ReorderEvents(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.EventIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("eventIds is required"))
		return
	}
	if err := h.svc.ReorderEvents(r.Context(), chi.URLParam(r, "id"), req.EventIDs); err != nil {
		writeError(w, "reorder events", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportEvents handles POST /api/columns/{id}/import.
//
//	@Summary	Bulk-import events from schedule-line text
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Column id"
//	@Param		body	body		ImportRequest	true	"Schedule lines"
//	@Success	200		{object}	ImportResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/columns/{id}/import [post]
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	created, errs, err := h.svc.ImportEvents(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, "import events", err)
		return
	}
	if created == nil {
		created = []models.Event{}
	}
	writeJSON(w, http.StatusOK, ImportResponse{Created: created, Errors: importErrors(errs)})
}

// CreateEvent handles POST /api/events.
//
//	@Summary	Create an event
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Param		body	body		EventRequest	true	"Event to create"
//	@Success	201		{object}	models.Event
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev, err := h.svc.CreateEvent(r.Context(), req.toModel())
	if err != nil {
		writeError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary	Get an event by id
//	@Tags		events
//	@Produce	json
//	@Param		id	path		string	true	"Event id"
//	@Success	200	{object}	models.Event
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// UpdateEvent handles PUT /api/events/{id}.
//
//	@Summary	Update an event
//	@Tags		events
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Event id"
//	@Param		body	body		EventRequest	true	"Updated event"
//	@Success	200		{object}	models.Event
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeError(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/events/{id}.
//
//	@Summary	Delete an event
//	@Tags		events
//	@Param		id	path	string	true	"Event id"
//	@Success	204	"Event deleted"
//	@Failure	404	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Board handles GET /api/board.
//
//	@Summary	Get the fully resolved board snapshot
//	@Tags		board
//	@Produce	json
//	@Success	200	{object}	BoardView
//	@Success	304	"Not modified"
//	@Security	BearerAuth
//	@Router		/board [get]
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Board(r.Context())
	if err != nil {
		writeError(w, "board", err)
		return
	}

	// ETag over the content only; the generation timestamp changes on
	// every call and must not break If-None-Match.
	stable := *view
	stable.GeneratedAt = time.Time{}
	etagSrc, err := json.Marshal(stable)
	if err != nil {
		writeError(w, "board encode", err)
		return
	}
	etag := checksum.ETag(etagSrc)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, view)
}

// Zmanim handles GET /api/zmanim.
//
//	@Summary	Get the current astronomical time bundle
//	@Tags		board
//	@Produce	json
//	@Success	200	{object}	zmanim.Bundle
//	@Security	BearerAuth
//	@Router		/zmanim [get]
func (h *Handler) Zmanim(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Zmanim(r.Context()))
}
