package zmanim

import (
	"testing"
	"time"

	"github.com/gabbaihq/luach/internal/models"
)

func jerusalem() models.Location {
	return models.Location{
		Latitude:  31.778,
		Longitude: 35.235,
		Elevation: 754,
		Timezone:  "Asia/Jerusalem",
	}
}

func testCalc(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(jerusalem(), 0, 0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

// Wednesday 2025-11-05, Jerusalem local time.
func wednesday(t *testing.T) time.Time {
	t.Helper()
	tz, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatal(err)
	}
	d := time.Date(2025, 11, 5, 10, 0, 0, 0, tz)
	if d.Weekday() != time.Wednesday {
		t.Fatalf("fixture date is %s, want Wednesday", d.Weekday())
	}
	return d
}

func TestNewCalculator_BadTimezone(t *testing.T) {
	loc := jerusalem()
	loc.Timezone = "Mars/Olympus"
	if _, err := NewCalculator(loc, 0, 0); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestSunTimes_Ordering(t *testing.T) {
	c := testCalc(t)
	rise, set, err := c.SunTimes(wednesday(t))
	if err != nil {
		t.Fatalf("SunTimes: %v", err)
	}
	if !rise.Before(set) {
		t.Errorf("sunrise %v not before sunset %v", rise, set)
	}
	if rise.Location().String() != "Asia/Jerusalem" {
		t.Errorf("sunrise tz = %s, want Asia/Jerusalem", rise.Location())
	}
}

func TestSunTimes_PolarNight(t *testing.T) {
	c, err := NewCalculator(models.Location{Latitude: 80, Longitude: 0, Timezone: "UTC"}, 0, 0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	if _, _, err := c.SunTimes(time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC)); err == nil {
		t.Fatal("expected error during polar night")
	}
}

func TestBundleFor_AnchorsOnUpcomingSaturday(t *testing.T) {
	c := testCalc(t)
	b := c.BundleFor(wednesday(t))

	if b.Date.Weekday() != time.Saturday {
		t.Fatalf("anchor weekday = %s, want Saturday", b.Date.Weekday())
	}
	if y, m, d := b.Date.Date(); y != 2025 || m != time.November || d != 8 {
		t.Errorf("anchor = %04d-%02d-%02d, want 2025-11-08", y, m, d)
	}
	if b.Sunrise.Day() != 8 || b.Sunset.Day() != 8 {
		t.Errorf("shabbat sun times on day %d/%d, want 8", b.Sunrise.Day(), b.Sunset.Day())
	}
	if b.FridaySunset.Day() != 7 {
		t.Errorf("friday sunset on day %d, want 7", b.FridaySunset.Day())
	}
}

func TestBundleFor_SaturdayAnchorsOnItself(t *testing.T) {
	c := testCalc(t)
	sat := wednesday(t).AddDate(0, 0, 3)
	b := c.BundleFor(sat)
	if y, m, d := b.Date.Date(); y != 2025 || m != time.November || d != 8 {
		t.Errorf("anchor = %04d-%02d-%02d, want 2025-11-08", y, m, d)
	}
}

func TestBundleFor_Offsets(t *testing.T) {
	c := testCalc(t)
	b := c.BundleFor(wednesday(t))

	if got := b.FridaySunset.Sub(b.ShabbatCandles); got != DefaultCandleOffsetMin*time.Minute {
		t.Errorf("candle offset = %v, want %dm", got, DefaultCandleOffsetMin)
	}
	if got := b.ShabbatEnd.Sub(b.Sunset); got != DefaultHavdalahOffsetMin*time.Minute {
		t.Errorf("havdalah offset = %v, want %dm", got, DefaultHavdalahOffsetMin)
	}
}

func TestBundleFor_CustomOffsets(t *testing.T) {
	c, err := NewCalculator(jerusalem(), 40, 72)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	b := c.BundleFor(wednesday(t))
	if got := b.FridaySunset.Sub(b.ShabbatCandles); got != 40*time.Minute {
		t.Errorf("candle offset = %v, want 40m", got)
	}
	if got := b.ShabbatEnd.Sub(b.Sunset); got != 72*time.Minute {
		t.Errorf("havdalah offset = %v, want 72m", got)
	}
}

// In early November (northern hemisphere) sunsets get earlier every day, so
// the earliest sunset in any Sunday–Thursday span falls on its Thursday.
func TestWeekdaySunset_SpanSelection(t *testing.T) {
	c := testCalc(t)

	cases := []struct {
		name    string
		dayStep int // offset from the Wednesday fixture
		wantDay int // day of month of the expected Thursday
	}{
		{"midweek uses current span", 0, 6},    // Wed Nov 5 -> Sun Nov 2..Thu Nov 6
		{"friday skips to next span", 2, 13},   // Fri Nov 7 -> Sun Nov 9..Thu Nov 13
		{"saturday skips to next span", 3, 13}, // Sat Nov 8 -> Sun Nov 9..Thu Nov 13
		{"sunday uses its own span", 4, 13},    // Sun Nov 9 -> Sun Nov 9..Thu Nov 13
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := c.BundleFor(wednesday(t).AddDate(0, 0, tc.dayStep))
			if b.WeekdaySunset.IsZero() {
				t.Fatal("weekday sunset unavailable")
			}
			if got := b.WeekdaySunset.Day(); got != tc.wantDay {
				t.Errorf("weekday sunset on day %d, want %d", got, tc.wantDay)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	c := testCalc(t)
	b := c.BundleFor(wednesday(t))

	for _, key := range models.ZmanKeys {
		if _, ok := b.Lookup(key); !ok {
			t.Errorf("Lookup(%s) unavailable", key)
		}
	}
	if _, ok := b.Lookup("chatzot"); ok {
		t.Error("unknown key must not resolve")
	}

	var nilBundle *Bundle
	if _, ok := nilBundle.Lookup(models.ZmanSunset); ok {
		t.Error("nil bundle must not resolve")
	}
}
