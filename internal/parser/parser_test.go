package parser

import (
	"testing"

	"github.com/gabbaihq/luach/internal/models"
)

func parseOne(t *testing.T, line string) Line {
	t.Helper()
	lines, errs := Parse(line)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	return lines[0]
}

func TestParse_Absolute(t *testing.T) {
	l := parseOne(t, "Shacharis @ 8:30")
	if l.Name != "Shacharis" {
		t.Errorf("name = %q", l.Name)
	}
	if l.Def == nil || l.Def.Mode != models.ModeAbsolute {
		t.Fatalf("def = %+v, want absolute", l.Def)
	}
	if l.Def.AbsoluteTime != "08:30" {
		t.Errorf("time = %q, want zero-padded 08:30", l.Def.AbsoluteTime)
	}
}

func TestParse_Zman(t *testing.T) {
	l := parseOne(t, "Mincha @ sunset -20")
	if l.Def == nil || l.Def.Mode != models.ModeRelativeToZman {
		t.Fatalf("def = %+v, want relativeToZman", l.Def)
	}
	if l.Def.Zman != models.ZmanSunset {
		t.Errorf("zman = %q", l.Def.Zman)
	}
	if l.Def.OffsetMinutes != -20 {
		t.Errorf("offset = %d, want -20", l.Def.OffsetMinutes)
	}
}

func TestParse_ZmanCaseInsensitiveNoOffset(t *testing.T) {
	l := parseOne(t, "Candle lighting @ ShabbatCandles")
	if l.Def.Zman != models.ZmanCandles {
		t.Errorf("zman = %q, want %q", l.Def.Zman, models.ZmanCandles)
	}
	if l.Def.OffsetMinutes != 0 {
		t.Errorf("offset = %d, want 0", l.Def.OffsetMinutes)
	}
}

func TestParse_After(t *testing.T) {
	l := parseOne(t, "Maariv @ +50 after Mincha")
	if l.Def == nil || l.Def.Mode != models.ModeRelative {
		t.Fatalf("def = %+v, want relative", l.Def)
	}
	if l.RefName != "Mincha" {
		t.Errorf("ref = %q, want Mincha", l.RefName)
	}
	if l.Def.OffsetMinutes != 50 {
		t.Errorf("offset = %d, want 50", l.Def.OffsetMinutes)
	}

	l = parseOne(t, "Early class @ -90 after Kabbalat Shabbat")
	if l.Def.OffsetMinutes != -90 {
		t.Errorf("offset = %d, want -90", l.Def.OffsetMinutes)
	}
	if l.RefName != "Kabbalat Shabbat" {
		t.Errorf("ref = %q, multi-word names must survive", l.RefName)
	}
}

func TestParse_Rounding(t *testing.T) {
	l := parseOne(t, "Mincha @ sunset -20 round down 5")
	if l.Def.Rounding == nil {
		t.Fatal("rounding missing")
	}
	if l.Def.Rounding.Direction != models.RoundDown || l.Def.Rounding.Increment != 5 {
		t.Errorf("rounding = %+v", l.Def.Rounding)
	}
}

func TestParse_FreeText(t *testing.T) {
	l := parseOne(t, "Kiddush in the hall")
	if l.Def != nil {
		t.Errorf("free text carries def %+v", l.Def)
	}
	if l.Name != "Kiddush in the hall" {
		t.Errorf("name = %q", l.Name)
	}
}

func TestParse_SkipsBlankAndComments(t *testing.T) {
	lines, errs := Parse("\n// morning block\nShacharis @ 8:30\n\n")
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}

func TestParse_BadLinesCollected(t *testing.T) {
	text := "Shacharis @ 8:30\nMincha @ moonset -20\nMaariv @ 25:99\n@ 9:00"
	lines, errs := Parse(text)
	if len(lines) != 1 {
		t.Errorf("got %d good lines, want 1", len(lines))
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	if errs[0].Line != 2 {
		t.Errorf("first error on line %d, want 2", errs[0].Line)
	}
}

func TestParse_RoundingOnAbsoluteRejected(t *testing.T) {
	_, errs := Parse("Shacharis @ 8:30 round up 5")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
}
