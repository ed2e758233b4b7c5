// Package parser parses the plain-text schedule line format used for bulk
// import and assistant tools. One event per line:
//
//	Shacharis @ 8:30                     absolute time
//	Mincha @ sunset -20                  offset from a zman
//	Maariv @ +50 after Mincha            offset from another event (by name)
//	Kiddush in the hall                  no "@" -> free-text entry
//
// Any timed form may end with "round <up|down|nearest> <minutes>". Blank
// lines and lines starting with "//" are skipped.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabbaihq/luach/internal/models"
)

var (
	roundRe    = regexp.MustCompile(`(?i)\s+round\s+(up|down|nearest)\s+(\d+)\s*$`)
	absoluteRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	zmanRe     = regexp.MustCompile(`^(\w+)\s*(?:([+-])\s*(\d+))?$`)
	afterRe    = regexp.MustCompile(`(?i)^([+-])?\s*(\d+)\s+after\s+(\S.*)$`)
)

// Line is one parsed schedule entry. Def is nil for free-text entries. For
// relative entries Def.RelativeEventID is left empty and RefName carries the
// referenced event's display name; the caller binds it to an id.
type Line struct {
	Name    string
	Def     *models.TimeDefinition
	RefName string
}

// Error describes a single unparseable line.
type Error struct {
	Line int
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse parses the whole text. Bad lines are collected as errors and do not
// stop parsing of the rest.
func Parse(text string) ([]Line, []Error) {
	var (
		out  []Line
		errs []Error
	)
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		parsed, err := parseLine(line)
		if err != "" {
			errs = append(errs, Error{Line: i + 1, Msg: err})
			continue
		}
		out = append(out, parsed)
	}
	return out, errs
}

func parseLine(line string) (Line, string) {
	name, expr, timed := strings.Cut(line, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return Line{}, "missing event name"
	}
	if !timed {
		return Line{Name: name}, ""
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Line{}, "missing time expression after @"
	}

	var rounding *models.Rounding
	if m := roundRe.FindStringSubmatch(expr); m != nil {
		inc, err := strconv.Atoi(m[2])
		if err != nil || inc <= 0 {
			return Line{}, fmt.Sprintf("invalid rounding increment %q", m[2])
		}
		rounding = &models.Rounding{Direction: strings.ToLower(m[1]), Increment: inc}
		expr = strings.TrimSpace(expr[:len(expr)-len(m[0])])
	}

	if m := absoluteRe.FindStringSubmatch(expr); m != nil {
		if rounding != nil {
			return Line{}, "rounding is not allowed on absolute times"
		}
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h > 23 || min > 59 {
			return Line{}, fmt.Sprintf("invalid clock time %q", expr)
		}
		return Line{Name: name, Def: &models.TimeDefinition{
			Mode:         models.ModeAbsolute,
			AbsoluteTime: fmt.Sprintf("%02d:%02d", h, min),
		}}, ""
	}

	if m := afterRe.FindStringSubmatch(expr); m != nil {
		offset, _ := strconv.Atoi(m[2])
		if m[1] == "-" {
			offset = -offset
		}
		return Line{
			Name:    name,
			RefName: strings.TrimSpace(m[3]),
			Def: &models.TimeDefinition{
				Mode:          models.ModeRelative,
				OffsetMinutes: offset,
				Rounding:      rounding,
			},
		}, ""
	}

	if m := zmanRe.FindStringSubmatch(expr); m != nil {
		key, ok := zmanKey(m[1])
		if !ok {
			return Line{}, fmt.Sprintf("unknown zman %q", m[1])
		}
		offset := 0
		if m[3] != "" {
			offset, _ = strconv.Atoi(m[3])
			if m[2] == "-" {
				offset = -offset
			}
		}
		return Line{Name: name, Def: &models.TimeDefinition{
			Mode:          models.ModeRelativeToZman,
			Zman:          key,
			OffsetMinutes: offset,
			Rounding:      rounding,
		}}, ""
	}

	return Line{}, fmt.Sprintf("cannot parse time expression %q", expr)
}

// zmanKey matches a case-insensitive zman name against the known keys.
func zmanKey(s string) (string, bool) {
	for _, k := range models.ZmanKeys {
		if strings.EqualFold(s, k) {
			return k, true
		}
	}
	return "", false
}
