package engine

import (
	"fmt"
	"math"

	"github.com/gabbaihq/luach/internal/models"
)

// Round snaps a minutes-of-day value to a multiple of increment.
//
// The input may carry a fractional (sub-minute) component; it is part of the
// rounding base, so 8:12:30 rounded up by 5 yields 8:15. Nearest rounds half
// up. A non-positive increment is a corrupt configuration and is rejected
// rather than silently ignored.
func Round(minutes float64, direction string, increment int) (float64, error) {
	if increment <= 0 {
		return 0, fmt.Errorf("engine: rounding increment must be positive, got %d", increment)
	}
	step := float64(increment)
	switch direction {
	case models.RoundUp:
		return math.Ceil(minutes/step) * step, nil
	case models.RoundDown:
		return math.Floor(minutes/step) * step, nil
	case models.RoundNearest:
		return math.Floor(minutes/step+0.5) * step, nil
	default:
		return 0, fmt.Errorf("engine: unknown rounding direction %q", direction)
	}
}
