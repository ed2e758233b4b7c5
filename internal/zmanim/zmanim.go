// Package zmanim computes the astronomical time bundle that board columns
// resolve zman lookups against: sunrise/sunset for the upcoming Shabbat and
// its Friday, candle-lighting and Shabbat-end offsets, and the earliest
// weekday sunset.
package zmanim

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/gabbaihq/luach/internal/models"
)

// Default halachic offsets in minutes. Communities override these in config.
const (
	DefaultCandleOffsetMin   = 18
	DefaultHavdalahOffsetMin = 42
)

// Bundle holds the precomputed instants for one Shabbat cycle, localized to
// the configured timezone. A zero instant means the value is unavailable
// (e.g. polar day/night).
type Bundle struct {
	Date           time.Time `json:"date"`
	Sunrise        time.Time `json:"sunrise"`
	Sunset         time.Time `json:"sunset"`
	FridaySunrise  time.Time `json:"fridaySunrise"`
	FridaySunset   time.Time `json:"fridaySunset"`
	ShabbatCandles time.Time `json:"shabbatCandles"`
	ShabbatEnd     time.Time `json:"shabbatEnd"`
	WeekdaySunset  time.Time `json:"weekdaySunset"`
}

// Lookup returns the instant for a zman key, reporting false when the key is
// unknown or the value is unavailable.
func (b *Bundle) Lookup(key string) (time.Time, bool) {
	if b == nil {
		return time.Time{}, false
	}
	var t time.Time
	switch key {
	case models.ZmanSunrise:
		t = b.Sunrise
	case models.ZmanSunset:
		t = b.Sunset
	case models.ZmanFridaySunrise:
		t = b.FridaySunrise
	case models.ZmanFridaySunset:
		t = b.FridaySunset
	case models.ZmanCandles:
		t = b.ShabbatCandles
	case models.ZmanShabbatEnd:
		t = b.ShabbatEnd
	default:
		return time.Time{}, false
	}
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Calculator derives bundles and per-date sun times for a fixed location.
type Calculator struct {
	loc         models.Location
	tz          *time.Location
	candleMin   int
	havdalahMin int
}

// NewCalculator creates a calculator for the given location. Non-positive
// offsets fall back to the defaults.
func NewCalculator(loc models.Location, candleOffsetMin, havdalahOffsetMin int) (*Calculator, error) {
	tz, err := loc.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("zmanim: load timezone %q: %w", loc.Timezone, err)
	}
	if candleOffsetMin <= 0 {
		candleOffsetMin = DefaultCandleOffsetMin
	}
	if havdalahOffsetMin <= 0 {
		havdalahOffsetMin = DefaultHavdalahOffsetMin
	}
	return &Calculator{
		loc:         loc,
		tz:          tz,
		candleMin:   candleOffsetMin,
		havdalahMin: havdalahOffsetMin,
	}, nil
}

// Location returns the calculator's location settings.
func (c *Calculator) Location() models.Location {
	return c.loc
}

// SunTimes returns localized sunrise and sunset for the calendar day of date.
// It errors when the sun neither rises nor sets there on that day.
func (c *Calculator) SunTimes(date time.Time) (rise, set time.Time, err error) {
	y, m, d := date.In(c.tz).Date()
	rise, set = sunrise.SunriseSunset(c.loc.Latitude, c.loc.Longitude, y, m, d)
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("zmanim: no sunrise/sunset at %.4f,%.4f on %04d-%02d-%02d",
			c.loc.Latitude, c.loc.Longitude, y, m, d)
	}
	return rise.In(c.tz), set.In(c.tz), nil
}

// BundleFor builds the bundle anchored on the upcoming Saturday (today, if
// today is Saturday). Unavailable instants stay zero; lookups treat them as
// missing.
func (c *Calculator) BundleFor(now time.Time) *Bundle {
	now = now.In(c.tz)
	shabbat := now.AddDate(0, 0, (int(time.Saturday)-int(now.Weekday())+7)%7)
	friday := shabbat.AddDate(0, 0, -1)

	b := &Bundle{
		Date: time.Date(shabbat.Year(), shabbat.Month(), shabbat.Day(), 0, 0, 0, 0, c.tz),
	}
	if rise, set, err := c.SunTimes(shabbat); err == nil {
		b.Sunrise = rise
		b.Sunset = set
		b.ShabbatEnd = set.Add(time.Duration(c.havdalahMin) * time.Minute)
	}
	if rise, set, err := c.SunTimes(friday); err == nil {
		b.FridaySunrise = rise
		b.FridaySunset = set
		b.ShabbatCandles = set.Add(-time.Duration(c.candleMin) * time.Minute)
	}
	b.WeekdaySunset = c.earliestWeekdaySunset(now)
	return b
}

// earliestWeekdaySunset returns the earliest sunset over the Sunday–Thursday
// span. On Friday or Saturday the span starts next Sunday; otherwise it starts
// from the most recent Sunday. The skip rule follows the community convention
// the board has always displayed; do not re-derive it.
func (c *Calculator) earliestWeekdaySunset(now time.Time) time.Time {
	var start time.Time
	switch now.Weekday() {
	case time.Friday:
		start = now.AddDate(0, 0, 2)
	case time.Saturday:
		start = now.AddDate(0, 0, 1)
	default:
		start = now.AddDate(0, 0, -int(now.Weekday()))
	}

	var earliest time.Time
	for i := 0; i < 5; i++ {
		_, set, err := c.SunTimes(start.AddDate(0, 0, i))
		if err != nil {
			continue
		}
		// Compare by time of day, not by instant: the span covers five
		// different dates.
		if earliest.IsZero() || minuteOfDay(set) < minuteOfDay(earliest) {
			earliest = set
		}
	}
	return earliest
}

func minuteOfDay(t time.Time) float64 {
	h, m, s := t.Clock()
	return float64(h*60+m) + float64(s)/60
}
