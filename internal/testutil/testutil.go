// Package testutil provides shared test helpers for setting up databases and calculators.
package testutil

import (
	"os"
	"testing"

	"github.com/gabbaihq/luach/internal/models"
	"github.com/gabbaihq/luach/internal/store"
	"github.com/gabbaihq/luach/internal/zmanim"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "luach-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Jerusalem is the default test location.
var Jerusalem = models.Location{
	Latitude:  31.778,
	Longitude: 35.235,
	Timezone:  "Asia/Jerusalem",
}

// TestCalculator creates a zmanim calculator for the Jerusalem fixture
// with default candle and havdalah offsets.
func TestCalculator(t *testing.T) *zmanim.Calculator {
	t.Helper()
	calc, err := zmanim.NewCalculator(Jerusalem, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return calc
}
