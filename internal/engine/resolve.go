// Package engine resolves every event's time definition into a concrete
// clock time. Definitions form a directed graph (absolute anchors, offsets
// from other events, offsets from astronomical instants); the engine walks it
// depth-first with memoization and per-path cycle detection. A resolution
// pass is a pure function of its inputs: no state survives between calls.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/gabbaihq/luach/internal/models"
	"github.com/gabbaihq/luach/internal/zmanim"
)

// DaySource supplies date-specific sun times for moed columns. The zmanim
// calculator implements it; the engine treats it as a black box.
type DaySource interface {
	SunTimes(date time.Time) (rise, set time.Time, err error)
}

// Resolved is one computed event time: minutes since midnight plus the
// zero-padded display string.
type Resolved struct {
	Minutes int    `json:"minutes"`
	Display string `json:"display"`
}

// Resolver resolves event graphs. It carries only the moed day source and is
// safe for concurrent use; every Resolve call builds its own scratch state.
type Resolver struct {
	days DaySource
}

// New creates a resolver. days may be nil, in which case moed date-specific
// lookups are unavailable and resolve to unknown.
func New(days DaySource) *Resolver {
	return &Resolver{days: days}
}

// Resolve computes a time for every event. The returned map has exactly one
// entry per input event id; nil means the time could not be determined
// (missing definition, broken or cross-column reference, dependency cycle,
// missing zman data). Those cases never fail the call. The only error is an
// invalid rounding increment, which is a corrupt configuration.
func (r *Resolver) Resolve(events []models.Event, columns []models.Column, bundle *zmanim.Bundle) (map[string]*Resolved, error) {
	byID := make(map[string]*models.Event, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}
	colByID := make(map[string]*models.Column, len(columns))
	for i := range columns {
		colByID[columns[i].ID] = &columns[i]
	}

	p := &pass{
		resolver: r,
		byID:     byID,
		colByID:  colByID,
		bundle:   bundle,
		memo:     make(map[string]*Resolved, len(events)),
	}

	out := make(map[string]*Resolved, len(events))
	for i := range events {
		res, err := p.resolve(events[i].ID, nil)
		if err != nil {
			return nil, err
		}
		out[events[i].ID] = res
	}
	return out, nil
}

// pass is the scratch state of a single Resolve call.
type pass struct {
	resolver *Resolver
	byID     map[string]*models.Event
	colByID  map[string]*models.Column
	bundle   *zmanim.Bundle
	memo     map[string]*Resolved
}

// resolve computes one event, memoizing the result. path holds the event ids
// on the current dependency chain; each recursive call gets its own copy so
// sibling branches never share cycle state.
func (p *pass) resolve(id string, path map[string]struct{}) (*Resolved, error) {
	if res, done := p.memo[id]; done {
		return res, nil
	}
	if _, onPath := path[id]; onPath {
		// Cycle: break the chain without memoizing from inside it. The
		// cycle's entry frame records nil once it unwinds.
		return nil, nil
	}

	ev, ok := p.byID[id]
	if !ok {
		return nil, nil
	}

	res, err := p.compute(ev, path)
	if err != nil {
		return nil, err
	}
	p.memo[id] = res
	return res, nil
}

func (p *pass) compute(ev *models.Event, path map[string]struct{}) (*Resolved, error) {
	def := ev.TimeDefinition
	if def == nil {
		return nil, nil
	}
	col, ok := p.colByID[ev.ColumnID]
	if !ok {
		return nil, nil
	}

	var minutes float64
	switch def.Mode {
	case models.ModeAbsolute:
		t, err := time.Parse("15:04", def.AbsoluteTime)
		if err != nil {
			return nil, nil
		}
		minutes = float64(t.Hour()*60 + t.Minute())

	case models.ModeRelative:
		ref, ok := p.byID[def.RelativeEventID]
		if !ok || ref.ColumnID != ev.ColumnID {
			return nil, nil
		}
		next := make(map[string]struct{}, len(path)+1)
		for k := range path {
			next[k] = struct{}{}
		}
		next[ev.ID] = struct{}{}
		base, err := p.resolve(ref.ID, next)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, nil
		}
		minutes = float64(base.Minutes + def.OffsetMinutes)

	case models.ModeRelativeToZman:
		instant, ok := p.zmanInstant(col, def.Zman)
		if !ok {
			return nil, nil
		}
		h, m, s := instant.Clock()
		minutes = float64(h*60+m) + float64(s)/60 + float64(def.OffsetMinutes)

	default:
		return nil, nil
	}

	if def.Rounding != nil {
		rounded, err := Round(minutes, def.Rounding.Direction, def.Rounding.Increment)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		minutes = rounded
	}

	mi := int(math.Floor(minutes))
	mi = ((mi % 1440) + 1440) % 1440
	return &Resolved{
		Minutes: mi,
		Display: fmt.Sprintf("%02d:%02d", mi/60, mi%60),
	}, nil
}

// zmanInstant selects the instant for a zman key according to the owning
// column's type:
//   - shabbat: the bundle field matching the key.
//   - weekdays: sunset comes from the earliest Sunday–Thursday sunset; every
//     other key falls back to the bundle.
//   - moed: sunrise/sunset are recomputed for the column's specific date;
//     every other key falls back to the bundle.
//
// A nil bundle makes every lookup unavailable, including moed recomputes.
func (p *pass) zmanInstant(col *models.Column, key string) (time.Time, bool) {
	if p.bundle == nil {
		return time.Time{}, false
	}

	switch col.ColumnType {
	case models.ColumnWeekdays:
		if key == models.ZmanSunset {
			if p.bundle.WeekdaySunset.IsZero() {
				return time.Time{}, false
			}
			return p.bundle.WeekdaySunset, true
		}

	case models.ColumnMoed:
		if key == models.ZmanSunrise || key == models.ZmanSunset {
			if p.resolver.days == nil {
				return time.Time{}, false
			}
			date, err := time.Parse("2006-01-02", col.SpecificDate)
			if err != nil {
				return time.Time{}, false
			}
			// Anchor at local noon so DST transitions cannot shift the
			// calendar day.
			rise, set, err := p.resolver.days.SunTimes(date.Add(12 * time.Hour))
			if err != nil {
				return time.Time{}, false
			}
			if key == models.ZmanSunrise {
				return rise, true
			}
			return set, true
		}
	}

	return p.bundle.Lookup(key)
}
