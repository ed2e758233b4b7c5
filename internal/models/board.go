// Package models defines the domain types for the Luach schedule board.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Event types.
const (
	EventPrayer   = "prayer"
	EventClass    = "class"
	EventFreeText = "freeText"
)

// Column types.
const (
	ColumnShabbat  = "shabbat"
	ColumnWeekdays = "weekdays"
	ColumnMoed     = "moed"
)

// Time definition modes.
const (
	ModeAbsolute       = "absolute"
	ModeRelative       = "relative"
	ModeRelativeToZman = "relativeToZman"
)

// Zman keys selectable in relativeToZman definitions.
const (
	ZmanSunrise       = "sunrise"
	ZmanSunset        = "sunset"
	ZmanFridaySunrise = "fridaySunrise"
	ZmanFridaySunset  = "fridaySunset"
	ZmanCandles       = "shabbatCandles"
	ZmanShabbatEnd    = "shabbatEnd"
)

// Rounding directions.
const (
	RoundUp      = "up"
	RoundDown    = "down"
	RoundNearest = "nearest"
)

// ZmanKeys lists every selectable zman key.
var ZmanKeys = []string{
	ZmanSunrise, ZmanSunset, ZmanFridaySunrise,
	ZmanFridaySunset, ZmanCandles, ZmanShabbatEnd,
}

// Rounding snaps a resolved time to a minute increment.
type Rounding struct {
	Direction string `json:"direction"`
	Increment int    `json:"increment"`
}

// Validate validates a rounding spec.
func (r Rounding) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Direction, validation.Required,
			validation.In(RoundUp, RoundDown, RoundNearest)),
		validation.Field(&r.Increment, validation.Required, validation.Min(1)),
	)
}

// TimeDefinition is a tagged union keyed by Mode. Exactly one of the
// mode-specific field groups is meaningful:
//   - absolute:       AbsoluteTime ("HH:MM")
//   - relative:       RelativeEventID + OffsetMinutes (+ optional Rounding)
//   - relativeToZman: Zman + OffsetMinutes (+ optional Rounding)
type TimeDefinition struct {
	Mode            string    `json:"mode"`
	AbsoluteTime    string    `json:"absoluteTime,omitempty"`
	RelativeEventID string    `json:"relativeEventId,omitempty"`
	Zman            string    `json:"zman,omitempty"`
	OffsetMinutes   int       `json:"offsetMinutes,omitempty"`
	Rounding        *Rounding `json:"rounding,omitempty"`
}

// Validate validates a time definition according to its mode.
func (d TimeDefinition) Validate() error {
	zmanRules := make([]any, len(ZmanKeys))
	for i, k := range ZmanKeys {
		zmanRules[i] = k
	}
	return validation.ValidateStruct(&d,
		validation.Field(&d.Mode, validation.Required,
			validation.In(ModeAbsolute, ModeRelative, ModeRelativeToZman)),
		validation.Field(&d.AbsoluteTime,
			validation.Required.When(d.Mode == ModeAbsolute),
			validation.Empty.When(d.Mode != ModeAbsolute),
			validation.Date("15:04")),
		validation.Field(&d.RelativeEventID,
			validation.Required.When(d.Mode == ModeRelative),
			validation.Empty.When(d.Mode != ModeRelative)),
		validation.Field(&d.Zman,
			validation.Required.When(d.Mode == ModeRelativeToZman),
			validation.Empty.When(d.Mode != ModeRelativeToZman),
			validation.In(zmanRules...)),
		validation.Field(&d.Rounding,
			validation.Nil.When(d.Mode == ModeAbsolute)),
	)
}

// Event is a single board entry inside a column.
type Event struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	ColumnID       string          `json:"columnId"`
	Order          int             `json:"order"`
	TimeDefinition *TimeDefinition `json:"timeDefinition,omitempty"`
	Note           string          `json:"note,omitempty"`
	IsHighlighted  bool            `json:"isHighlighted,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate validates an event. Non-freeText events must carry a time
// definition; freeText events must not.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Type, validation.Required,
			validation.In(EventPrayer, EventClass, EventFreeText)),
		validation.Field(&e.ColumnID, validation.Required),
		validation.Field(&e.TimeDefinition,
			validation.Required.When(e.Type != EventFreeText),
			validation.Nil.When(e.Type == EventFreeText)),
	)
}

// Column is a board partition (one displayed list of events).
type Column struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Order        int       `json:"order"`
	ColumnType   string    `json:"columnType"`
	SpecificDate string    `json:"specificDate,omitempty"` // ISO date, moed only
	ManualOrder  bool      `json:"manualOrder,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate validates a column. SpecificDate is required for moed columns
// and forbidden otherwise.
func (c Column) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.ColumnType, validation.Required,
			validation.In(ColumnShabbat, ColumnWeekdays, ColumnMoed)),
		validation.Field(&c.SpecificDate,
			validation.Required.When(c.ColumnType == ColumnMoed),
			validation.Empty.When(c.ColumnType != ColumnMoed),
			validation.Date("2006-01-02")),
	)
}

// Location holds the geographic settings the zmanim calculator works from.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Elevation float64 `json:"elevation" yaml:"elevation"`
	Timezone  string  `json:"timezone" yaml:"timezone"`
}

// Validate validates the location settings.
func (l Location) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&l.Timezone, validation.Required),
	)
}

// TimeLocation resolves the configured IANA timezone.
func (l Location) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(l.Timezone)
}
