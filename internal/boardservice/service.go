// Package boardservice coordinates the store, the zmanim calculator, and the
// resolution engine into the board operations the API and MCP layers expose.
package boardservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabbaihq/luach/internal/apperr"
	"github.com/gabbaihq/luach/internal/engine"
	"github.com/gabbaihq/luach/internal/models"
	"github.com/gabbaihq/luach/internal/parser"
	"github.com/gabbaihq/luach/internal/store"
	"github.com/gabbaihq/luach/internal/zmanim"
)

// Placeholder is displayed for timed events whose time could not be resolved.
const Placeholder = "--:--"

// ChangeCallback is invoked after every successful mutation.
// kind is "column.created", "event.updated", etc.
type ChangeCallback func(kind, id string)

// EventView is an event enriched with its resolved display time.
type EventView struct {
	models.Event
	DisplayTime string `json:"displayTime"`
	Resolved    bool   `json:"resolved"`
}

// ColumnView is a column with its ordered, resolved events.
type ColumnView struct {
	models.Column
	Events []EventView `json:"events"`
}

// BoardView is the full resolved board snapshot served to display clients.
type BoardView struct {
	Columns     []ColumnView   `json:"columns"`
	Zmanim      *zmanim.Bundle `json:"zmanim"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Service coordinates persistence and time resolution.
type Service struct {
	store    store.BoardStore
	onChange ChangeCallback
	now      func() time.Time

	mu       sync.RWMutex
	calc     *zmanim.Calculator
	resolver *engine.Resolver
}

// NewService creates a board service. cb may be nil.
func NewService(st store.BoardStore, calc *zmanim.Calculator, cb ChangeCallback) *Service {
	return &Service{
		store:    st,
		calc:     calc,
		resolver: engine.New(calc),
		onChange: cb,
		now:      time.Now,
	}
}

// SetLocation swaps the calculator for new location settings. Used by config
// hot reload; subsequent snapshots resolve against the new location.
func (s *Service) SetLocation(loc models.Location, candleOffsetMin, havdalahOffsetMin int) error {
	calc, err := zmanim.NewCalculator(loc, candleOffsetMin, havdalahOffsetMin)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.calc = calc
	s.resolver = engine.New(calc)
	s.mu.Unlock()
	s.emit("board.updated", "")
	return nil
}

func (s *Service) emit(kind, id string) {
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

// Columns returns all columns in display order.
func (s *Service) Columns(_ context.Context) ([]models.Column, error) {
	return s.store.ListColumns()
}

// GetColumn returns one column.
func (s *Service) GetColumn(_ context.Context, id string) (*models.Column, error) {
	return s.store.GetColumn(id)
}

// CreateColumn validates and persists a new column, assigning its id.
func (s *Service) CreateColumn(_ context.Context, c models.Column) (*models.Column, error) {
	c.ID = uuid.NewString()
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertColumn(c); err != nil {
		return nil, err
	}
	s.emit("column.created", c.ID)
	return &c, nil
}

// UpdateColumn applies changes to an existing column.
func (s *Service) UpdateColumn(_ context.Context, id string, c models.Column) (*models.Column, error) {
	existing, err := s.store.GetColumn(id)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now().UTC()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertColumn(c); err != nil {
		return nil, err
	}
	s.emit("column.updated", id)
	return &c, nil
}

// DeleteColumn removes a column and its events.
func (s *Service) DeleteColumn(_ context.Context, id string) error {
	if err := s.store.DeleteColumn(id); err != nil {
		return err
	}
	s.emit("column.deleted", id)
	return nil
}

// Events returns one column's events in stored order.
func (s *Service) Events(_ context.Context, columnID string) ([]models.Event, error) {
	if _, err := s.store.GetColumn(columnID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(columnID)
}

// GetEvent returns one event.
func (s *Service) GetEvent(_ context.Context, id string) (*models.Event, error) {
	return s.store.GetEvent(id)
}

// CreateEvent validates and persists a new event, assigning its id.
func (s *Service) CreateEvent(_ context.Context, e models.Event) (*models.Event, error) {
	if _, err := s.store.GetColumn(e.ColumnID); err != nil {
		return nil, fmt.Errorf("column %s: %w", e.ColumnID, err)
	}
	e.ID = uuid.NewString()
	now := s.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReference(e); err != nil {
		return nil, err
	}
	if err := s.store.UpsertEvent(e); err != nil {
		return nil, err
	}
	s.emit("event.created", e.ID)
	return &e, nil
}

// UpdateEvent applies changes to an existing event. The owning column cannot
// be changed.
func (s *Service) UpdateEvent(_ context.Context, id string, e models.Event) (*models.Event, error) {
	existing, err := s.store.GetEvent(id)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.ColumnID = existing.ColumnID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReference(e); err != nil {
		return nil, err
	}
	if err := s.store.UpsertEvent(e); err != nil {
		return nil, err
	}
	s.emit("event.updated", id)
	return &e, nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(_ context.Context, id string) error {
	if err := s.store.DeleteEvent(id); err != nil {
		return err
	}
	s.emit("event.deleted", id)
	return nil
}

// ReorderEvents renumbers a column's events to match ids.
func (s *Service) ReorderEvents(_ context.Context, columnID string, ids []string) error {
	if _, err := s.store.GetColumn(columnID); err != nil {
		return err
	}
	if err := s.store.ReorderEvents(columnID, ids); err != nil {
		return err
	}
	s.emit("column.updated", columnID)
	return nil
}

// checkReference enforces that relative definitions point at an existing
// event in the same column. The engine tolerates violations at resolution
// time; this catches them at write time where they are fixable.
func (s *Service) checkReference(e models.Event) error {
	def := e.TimeDefinition
	if def == nil || def.Mode != models.ModeRelative {
		return nil
	}
	if def.RelativeEventID == e.ID {
		return fmt.Errorf("event cannot reference itself: %w", apperr.ErrConflict)
	}
	ref, err := s.store.GetEvent(def.RelativeEventID)
	if err != nil {
		return fmt.Errorf("referenced event %s: %w", def.RelativeEventID, err)
	}
	if ref.ColumnID != e.ColumnID {
		return fmt.Errorf("referenced event %s is in another column: %w", ref.ID, apperr.ErrConflict)
	}
	return nil
}

// Zmanim returns the current astronomical bundle.
func (s *Service) Zmanim(_ context.Context) *zmanim.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calc.BundleFor(s.now())
}

// Board resolves every event and assembles the display snapshot. Columns in
// manual-order mode keep their stored ordering; all others are sorted by
// resolved time.
func (s *Service) Board(_ context.Context) (*BoardView, error) {
	columns, err := s.store.ListColumns()
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListAllEvents()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	resolver := s.resolver
	bundle := s.calc.BundleFor(s.now())
	s.mu.RUnlock()

	resolved, err := resolver.Resolve(events, columns, bundle)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string][]models.Event)
	for _, ev := range events {
		byColumn[ev.ColumnID] = append(byColumn[ev.ColumnID], ev)
	}

	view := &BoardView{
		Columns:     make([]ColumnView, 0, len(columns)),
		Zmanim:      bundle,
		GeneratedAt: s.now().UTC(),
	}
	for _, col := range columns {
		colEvents := byColumn[col.ID]
		if !col.ManualOrder {
			colEvents = engine.SortEvents(colEvents, resolved)
		}
		cv := ColumnView{Column: col, Events: make([]EventView, 0, len(colEvents))}
		for _, ev := range colEvents {
			cv.Events = append(cv.Events, eventView(ev, resolved[ev.ID]))
		}
		view.Columns = append(view.Columns, cv)
	}
	return view, nil
}

func eventView(ev models.Event, res *engine.Resolved) EventView {
	v := EventView{Event: ev}
	switch {
	case res != nil:
		v.DisplayTime = res.Display
		v.Resolved = true
	case ev.TimeDefinition != nil:
		v.DisplayTime = Placeholder
	}
	return v
}

// ImportEvents bulk-creates events in a column from schedule-line text.
// Parse failures and unresolvable "after" references are reported per line;
// good lines are still imported.
func (s *Service) ImportEvents(ctx context.Context, columnID, text string) ([]models.Event, []parser.Error, error) {
	if _, err := s.store.GetColumn(columnID); err != nil {
		return nil, nil, err
	}
	existing, err := s.store.ListEvents(columnID)
	if err != nil {
		return nil, nil, err
	}

	lines, errs := parser.Parse(text)

	// Names resolvable by "after" references: already-stored events plus
	// events created earlier in this import.
	byName := make(map[string]string, len(existing))
	for _, ev := range existing {
		byName[strings.ToLower(ev.Name)] = ev.ID
	}

	var created []models.Event
	pos := len(existing)
	for _, line := range lines {
		ev := models.Event{
			Name:     line.Name,
			Type:     models.EventPrayer,
			ColumnID: columnID,
			Order:    pos,
		}
		if line.Def == nil {
			ev.Type = models.EventFreeText
		} else {
			def := *line.Def
			if def.Mode == models.ModeRelative {
				refID, ok := byName[strings.ToLower(line.RefName)]
				if !ok {
					errs = append(errs, parser.Error{
						Msg: fmt.Sprintf("unknown event %q referenced by %q", line.RefName, line.Name),
					})
					continue
				}
				def.RelativeEventID = refID
			}
			ev.TimeDefinition = &def
		}

		saved, err := s.CreateEvent(ctx, ev)
		if err != nil {
			errs = append(errs, parser.Error{
				Msg: fmt.Sprintf("import %q: %v", line.Name, err),
			})
			continue
		}
		byName[strings.ToLower(saved.Name)] = saved.ID
		created = append(created, *saved)
		pos++
	}
	return created, errs, nil
}
