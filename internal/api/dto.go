package api

import (
	"github.com/gabbaihq/luach/internal/boardservice"
	"github.com/gabbaihq/luach/internal/models"
	"github.com/gabbaihq/luach/internal/parser"
)

// ColumnRequest is the request body for creating or updating a column.
type ColumnRequest struct {
	Title        string `json:"title"`
	Order        int    `json:"order"`
	ColumnType   string `json:"columnType"`
	SpecificDate string `json:"specificDate,omitempty"`
	ManualOrder  bool   `json:"manualOrder,omitempty"`
}

func (r ColumnRequest) toModel() models.Column {
	return models.Column{
		Title:        r.Title,
		Order:        r.Order,
		ColumnType:   r.ColumnType,
		SpecificDate: r.SpecificDate,
		ManualOrder:  r.ManualOrder,
	}
}

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Name           string                 `json:"name"`
	Type           string                 `json:"type"`
	ColumnID       string                 `json:"columnId"`
	Order          int                    `json:"order"`
	TimeDefinition *models.TimeDefinition `json:"timeDefinition,omitempty"`
	Note           string                 `json:"note,omitempty"`
	IsHighlighted  bool                   `json:"isHighlighted,omitempty"`
}

func (r EventRequest) toModel() models.Event {
	return models.Event{
		Name:           r.Name,
		Type:           r.Type,
		ColumnID:       r.ColumnID,
		Order:          r.Order,
		TimeDefinition: r.TimeDefinition,
		Note:           r.Note,
		IsHighlighted:  r.IsHighlighted,
	}
}

// ReorderRequest is the request body for reordering a column's events.
type ReorderRequest struct {
	EventIDs []string `json:"eventIds"`
}

// ImportRequest is the request body for bulk-importing schedule lines.
type ImportRequest struct {
	Text string `json:"text"`
}

// ImportResponse reports the outcome of a bulk import.
type ImportResponse struct {
	Created []models.Event `json:"created"`
	Errors  []string       `json:"errors"`
}

func importErrors(errs []parser.Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// ColumnListResponse wraps column listings.
type ColumnListResponse struct {
	Columns []models.Column `json:"columns"`
}

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []models.Event `json:"events"`
}

// BoardView is the resolved board snapshot (aliased from the domain layer).
type BoardView = boardservice.BoardView
