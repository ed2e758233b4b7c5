package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gabbaihq/luach/internal/apperr"
	"github.com/gabbaihq/luach/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "luach-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testColumn(id string, pos int) models.Column {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Column{
		ID: id, Title: "Shabbat", Order: pos, ColumnType: models.ColumnShabbat,
		CreatedAt: now, UpdatedAt: now,
	}
}

func testEvent(id, columnID string, pos int) models.Event {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Event{
		ID: id, Name: "Mincha", Type: models.EventPrayer, ColumnID: columnID, Order: pos,
		TimeDefinition: &models.TimeDefinition{
			Mode: models.ModeRelativeToZman, Zman: models.ZmanSunset, OffsetMinutes: -20,
			Rounding: &models.Rounding{Direction: models.RoundDown, Increment: 5},
		},
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestColumnRoundTrip(t *testing.T) {
	db := testDB(t)
	col := testColumn("c1", 0)
	col.SpecificDate = ""
	if err := db.UpsertColumn(col); err != nil {
		t.Fatalf("UpsertColumn: %v", err)
	}

	got, err := db.GetColumn("c1")
	if err != nil {
		t.Fatalf("GetColumn: %v", err)
	}
	if got.Title != col.Title || got.ColumnType != col.ColumnType {
		t.Errorf("got %+v", got)
	}

	got.Title = "Shabbos"
	got.ManualOrder = true
	if err := db.UpsertColumn(*got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = db.GetColumn("c1")
	if err != nil {
		t.Fatalf("GetColumn after update: %v", err)
	}
	if got.Title != "Shabbos" || !got.ManualOrder {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestGetColumn_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetColumn("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListColumns_Order(t *testing.T) {
	db := testDB(t)
	for i, id := range []string{"b", "a", "c"} {
		col := testColumn(id, 2-i) // positions 2, 1, 0
		if err := db.UpsertColumn(col); err != nil {
			t.Fatalf("UpsertColumn: %v", err)
		}
	}
	cols, err := db.ListColumns()
	if err != nil {
		t.Fatalf("ListColumns: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("got %d columns", len(cols))
	}
	if cols[0].ID != "c" || cols[1].ID != "a" || cols[2].ID != "b" {
		t.Errorf("order = %s %s %s, want c a b", cols[0].ID, cols[1].ID, cols[2].ID)
	}
}

func TestEventRoundTrip(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertColumn(testColumn("c1", 0)); err != nil {
		t.Fatal(err)
	}
	ev := testEvent("e1", "c1", 0)
	ev.Note = "bring siddur"
	ev.IsHighlighted = true
	if err := db.UpsertEvent(ev); err != nil {
		t.Fatalf("UpsertEvent: %v", err)
	}

	got, err := db.GetEvent("e1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Name != "Mincha" || got.Note != "bring siddur" || !got.IsHighlighted {
		t.Errorf("got %+v", got)
	}
	def := got.TimeDefinition
	if def == nil || def.Mode != models.ModeRelativeToZman || def.Zman != models.ZmanSunset {
		t.Fatalf("time definition = %+v", def)
	}
	if def.OffsetMinutes != -20 {
		t.Errorf("offset = %d", def.OffsetMinutes)
	}
	if def.Rounding == nil || def.Rounding.Increment != 5 {
		t.Errorf("rounding = %+v", def.Rounding)
	}
}

func TestEvent_NilDefinition(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertColumn(testColumn("c1", 0)); err != nil {
		t.Fatal(err)
	}
	ev := testEvent("free", "c1", 0)
	ev.Type = models.EventFreeText
	ev.TimeDefinition = nil
	if err := db.UpsertEvent(ev); err != nil {
		t.Fatalf("UpsertEvent: %v", err)
	}
	got, err := db.GetEvent("free")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.TimeDefinition != nil {
		t.Errorf("definition = %+v, want nil", got.TimeDefinition)
	}
}

func TestDeleteColumn_CascadesEvents(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertColumn(testColumn("c1", 0)); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEvent(testEvent("e1", "c1", 0)); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteColumn("c1"); err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	if _, err := db.GetEvent("e1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("event survived column delete: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := testDB(t)
	if err := db.DeleteColumn("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteColumn err = %v", err)
	}
	if err := db.DeleteEvent("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteEvent err = %v", err)
	}
}

func TestReorderEvents(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertColumn(testColumn("c1", 0)); err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"e1", "e2", "e3"} {
		if err := db.UpsertEvent(testEvent(id, "c1", i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.ReorderEvents("c1", []string{"e3", "e1", "e2"}); err != nil {
		t.Fatalf("ReorderEvents: %v", err)
	}
	events, err := db.ListEvents("c1")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if events[0].ID != "e3" || events[1].ID != "e1" || events[2].ID != "e2" {
		t.Errorf("order = %s %s %s", events[0].ID, events[1].ID, events[2].ID)
	}
}

func TestReorderEvents_UnknownIDRollsBack(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertColumn(testColumn("c1", 0)); err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"e1", "e2"} {
		if err := db.UpsertEvent(testEvent(id, "c1", i)); err != nil {
			t.Fatal(err)
		}
	}
	err := db.ReorderEvents("c1", []string{"e2", "ghost"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	events, err := db.ListEvents("c1")
	if err != nil {
		t.Fatal(err)
	}
	if events[0].ID != "e1" {
		t.Errorf("rollback failed, order starts with %s", events[0].ID)
	}
}
