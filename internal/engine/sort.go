package engine

import (
	"sort"

	"github.com/gabbaihq/luach/internal/models"
)

// SortEvents orders a column's events for display: ascending by resolved
// minutes-of-day, unresolved events after all resolved ones, ties broken by
// name then id. The input slice is not modified.
func SortEvents(events []models.Event, resolved map[string]*Resolved) []models.Event {
	out := make([]models.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := resolved[out[i].ID], resolved[out[j].ID]
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && a.Minutes != b.Minutes:
			return a.Minutes < b.Minutes
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
