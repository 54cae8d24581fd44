package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTx(db, func(tx *sql.Tx) error {
		is := NewInventoryStore(tx)
		if err := is.Insert(&model.InventoryItem{Name: "Milk", Subcategory: model.SubDoorBottles}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	count, err := NewInventoryStore(db).Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}

func TestWithTxCommits(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		return NewInventoryStore(tx).InsertMany([]model.InventoryItem{
			{Name: "Milk", Subcategory: model.SubDoorBottles},
			{Name: "Rice", Subcategory: model.SubRice},
		})
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	count, _ := NewInventoryStore(db).Count()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMillisRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 30, 45, 123_000_000, time.UTC)
	if got := fromMillis(toMillis(at)); !got.Equal(at) {
		t.Errorf("round trip = %v, want %v", got, at)
	}
}
