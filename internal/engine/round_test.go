package engine

import (
	"testing"

	"github.com/gabbaihq/luach/internal/models"
)

func TestRound(t *testing.T) {
	cases := []struct {
		name      string
		minutes   float64
		direction string
		increment int
		want      float64
	}{
		{"up", 8*60 + 12, models.RoundUp, 5, 8*60 + 15},
		{"up already aligned", 8*60 + 15, models.RoundUp, 5, 8*60 + 15},
		{"down", 8*60 + 12, models.RoundDown, 5, 8*60 + 10},
		{"nearest rounds down", 8*60 + 12, models.RoundNearest, 5, 8*60 + 10},
		{"nearest rounds up", 8*60 + 13, models.RoundNearest, 5, 8*60 + 15},
		{"nearest half up", 8*60 + 12.5, models.RoundNearest, 5, 8*60 + 15},
		{"seconds included in base", 8*60 + 12.5, models.RoundUp, 5, 8*60 + 15},
		{"increment one is identity", 8*60 + 12, models.RoundUp, 1, 8*60 + 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Round(tc.minutes, tc.direction, tc.increment)
			if err != nil {
				t.Fatalf("Round: %v", err)
			}
			if got != tc.want {
				t.Errorf("Round(%v, %s, %d) = %v, want %v",
					tc.minutes, tc.direction, tc.increment, got, tc.want)
			}
		})
	}
}

func TestRound_InvalidIncrement(t *testing.T) {
	for _, inc := range []int{0, -5} {
		if _, err := Round(100, models.RoundUp, inc); err == nil {
			t.Errorf("Round with increment %d: expected error", inc)
		}
	}
}

func TestRound_UnknownDirection(t *testing.T) {
	if _, err := Round(100, "sideways", 5); err == nil {
		t.Error("expected error for unknown direction")
	}
}
