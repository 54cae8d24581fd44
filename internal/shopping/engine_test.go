package shopping

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
)

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) { r.events = append(r.events, ev) }

func setupEngine(t *testing.T, state model.ShoppingState) (*Engine, *sql.DB, *recorder) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.NewSettingsStore(db).SetShoppingState(state); err != nil {
		t.Fatalf("set state: %v", err)
	}
	session, err := LoadSession(db)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(db, session, rec, logger), db, rec
}

func insertItem(t *testing.T, db *sql.DB, name string, q float64) *model.InventoryItem {
	t.Helper()
	item := &model.InventoryItem{
		Name:        name,
		Quantity:    q,
		Subcategory: model.SubMain,
		LastUpdated: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.NewInventoryStore(db).Insert(item); err != nil {
		t.Fatalf("insert %s: %v", name, err)
	}
	return item
}

func TestStateMachineTransitions(t *testing.T) {
	type step struct {
		name string
		run  func(*Engine) (bool, error)
	}
	steps := []step{
		{"generate", (*Engine).Generate},
		{"finalize", (*Engine).Finalize},
		{"cancel", (*Engine).Cancel},
		{"start", (*Engine).StartShopping},
		{"complete", (*Engine).CompleteAndRestore},
	}

	allowed := map[model.ShoppingState]map[string]model.ShoppingState{
		model.ShoppingEmpty:      {"generate": model.ShoppingGenerating},
		model.ShoppingGenerating: {"finalize": model.ShoppingListReady, "cancel": model.ShoppingEmpty},
		model.ShoppingListReady:  {"start": model.ShoppingActive, "cancel": model.ShoppingEmpty},
		model.ShoppingActive:     {"complete": model.ShoppingEmpty},
	}

	for from, targets := range allowed {
		for _, s := range steps {
			t.Run(string(from)+"/"+s.name, func(t *testing.T) {
				e, _, _ := setupEngine(t, from)

				changed, err := s.run(e)
				if err != nil {
					t.Fatalf("%s: %v", s.name, err)
				}

				want, ok := targets[s.name]
				if !ok {
					want = from
				}
				if changed != ok {
					t.Errorf("changed = %v, want %v", changed, ok)
				}
				if got := e.State(); got != want {
					t.Errorf("state = %s, want %s", got, want)
				}
			})
		}
	}
}

func TestInvalidTransitionPublishesNothing(t *testing.T) {
	e, _, rec := setupEngine(t, model.ShoppingEmpty)

	if changed, _ := e.Finalize(); changed {
		t.Fatal("finalize from EMPTY should be a no-op")
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.events)
	}
}

func TestCheck(t *testing.T) {
	e, _, _ := setupEngine(t, model.ShoppingListReady)

	if err := e.Check(OpStartShopping); err != nil {
		t.Errorf("Check(start) = %v, want nil", err)
	}
	if err := e.Check(OpGenerate); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Check(generate) = %v, want ErrInvalidTransition", err)
	}
	if err := e.Check(Op("bogus")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Check(bogus) = %v, want ErrInvalidTransition", err)
	}
}

func TestGenerateOrdersByQuantity(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)

	low := insertItem(t, db, "Alpha", 0.1)
	insertItem(t, db, "Bravo", 0.5)
	mid := insertItem(t, db, "Charlie", 0.2)

	changed, err := e.Generate()
	if err != nil || !changed {
		t.Fatalf("generate = %v, %v", changed, err)
	}

	items, err := e.items()
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if *items[0].InventoryItemID != low.ID || *items[1].InventoryItemID != mid.ID {
		t.Errorf("order = %s, %s; want Alpha, Charlie", items[0].Name, items[1].Name)
	}
	for _, it := range items {
		if it.IsChecked || it.IsTemporary {
			t.Errorf("item %s: checked=%v temporary=%v", it.Name, it.IsChecked, it.IsTemporary)
		}
	}

	if len(rec.events) != 1 || rec.events[0].Type != "shopping_generate" {
		t.Errorf("events = %v", rec.events)
	}

	got, _ := store.NewInventoryStore(db).GetByID(low.ID)
	if got.Quantity != 0.1 {
		t.Errorf("source quantity changed to %v", got.Quantity)
	}
}

func TestGenerateStableOnTies(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)

	insertItem(t, db, "Delta", 0.2)
	insertItem(t, db, "Alpha", 0.2)
	insertItem(t, db, "Charlie", 0.0)

	e.Generate()
	items, _ := e.items()

	want := []string{"Charlie", "Alpha", "Delta"}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Name, name)
		}
	}
}

func TestGenerateClearsStaleItems(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)

	stale := &model.ShoppingListItem{Name: "Stale", IsTemporary: true}
	store.NewShoppingStore(db).Insert(stale)
	insertItem(t, db, "Fresh", 0.1)

	e.Generate()
	items, _ := e.items()
	if len(items) != 1 || items[0].Name != "Fresh" {
		t.Errorf("items = %+v, want only Fresh", items)
	}
}

func TestGenerateStorageFailureKeepsState(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)
	db.Close()

	changed, err := e.Generate()
	if err == nil {
		t.Fatal("expected error from closed database")
	}
	if changed {
		t.Error("changed = true on failure")
	}
	if e.State() != model.ShoppingEmpty {
		t.Errorf("state = %s, want EMPTY", e.State())
	}
	if len(rec.events) != 0 {
		t.Errorf("events published on failure: %v", rec.events)
	}
}

func TestStatePersisted(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)

	e.Generate()
	e.AddMiscItem("Candles")

	session, err := LoadSession(db)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.cur.State != model.ShoppingGenerating {
		t.Errorf("persisted state = %s, want GENERATING", session.cur.State)
	}
	if len(session.cur.MiscHistory) != 1 || session.cur.MiscHistory[0] != "Candles" {
		t.Errorf("persisted history = %v", session.cur.MiscHistory)
	}
}

func TestAddMiscItem(t *testing.T) {
	e, _, _ := setupEngine(t, model.ShoppingGenerating)

	if changed, _ := e.AddMiscItem("   "); changed {
		t.Error("blank name should be a no-op")
	}

	changed, err := e.AddMiscItem("  Batteries ")
	if err != nil || !changed {
		t.Fatalf("add misc = %v, %v", changed, err)
	}
	e.AddMiscItem("Tape")
	e.AddMiscItem("Batteries")

	items, _ := e.items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Name != "Batteries" || !items[0].IsTemporary || items[0].InventoryItemID != nil {
		t.Errorf("items[0] = %+v", items[0])
	}

	got := e.miscSuggestions()
	if len(got) != 2 || got[0] != "Batteries" || got[1] != "Tape" {
		t.Errorf("suggestions = %v, want [Batteries Tape]", got)
	}
}

func TestAddMiscItemOutsideGenerating(t *testing.T) {
	e, _, _ := setupEngine(t, model.ShoppingActive)

	if changed, _ := e.AddMiscItem("Tape"); changed {
		t.Error("expected no-op while shopping")
	}
	if got := e.miscSuggestions(); len(got) != 0 {
		t.Errorf("suggestions = %v, want none", got)
	}
}

func TestAddInventoryItem(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingGenerating)
	item := insertItem(t, db, "Coffee", 0.9)

	changed, err := e.AddInventoryItem(item.ID)
	if err != nil || !changed {
		t.Fatalf("add = %v, %v", changed, err)
	}
	changed, err = e.AddInventoryItem(item.ID)
	if err != nil || changed {
		t.Errorf("duplicate add = %v, %v; want false, nil", changed, err)
	}

	if _, err := e.AddInventoryItem("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item err = %v, want ErrNotFound", err)
	}

	items, _ := e.items()
	if len(items) != 1 || items[0].Name != "Coffee" {
		t.Errorf("items = %+v", items)
	}
}

func TestRemoveItem(t *testing.T) {
	e, _, _ := setupEngine(t, model.ShoppingGenerating)
	e.AddMiscItem("Glue")
	items, _ := e.items()

	changed, err := e.RemoveItem(items[0].ID)
	if err != nil || !changed {
		t.Fatalf("remove = %v, %v", changed, err)
	}
	if _, err := e.RemoveItem(items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestCancelKeepsInventory(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)
	item := insertItem(t, db, "Milk", 0.1)

	e.Generate()
	e.Finalize()
	changed, err := e.Cancel()
	if err != nil || !changed {
		t.Fatalf("cancel = %v, %v", changed, err)
	}

	items, _ := e.items()
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
	got, _ := store.NewInventoryStore(db).GetByID(item.ID)
	if got.Quantity != 0.1 || len(got.PurchaseHistory) != 0 {
		t.Errorf("inventory changed: %+v", got)
	}
}

func TestToggleCheckedAffectsOnlyTarget(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)
	insertItem(t, db, "A", 0.1)
	insertItem(t, db, "B", 0.2)

	e.Generate()
	e.Finalize()
	e.StartShopping()

	items, _ := e.items()
	if changed, err := e.ToggleChecked(items[1].ID); err != nil || !changed {
		t.Fatalf("toggle = %v, %v", changed, err)
	}

	items, _ = e.items()
	if items[0].IsChecked || !items[1].IsChecked {
		t.Errorf("checked = %v, %v; want false, true", items[0].IsChecked, items[1].IsChecked)
	}

	e.ToggleChecked(items[1].ID)
	items, _ = e.items()
	if items[1].IsChecked {
		t.Error("second toggle should uncheck")
	}
}

func TestCompleteAndRestore(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.SetClock(func() time.Time { return now })

	a := insertItem(t, db, "A", 0.05)
	b := insertItem(t, db, "B", 0.1)
	c := insertItem(t, db, "C", 0.2)

	e.Generate()
	e.AddMiscItem("Batteries")
	e.Finalize()
	e.StartShopping()

	items, _ := e.items()
	for _, it := range items {
		if it.Name != "C" {
			e.ToggleChecked(it.ID)
		}
	}

	changed, err := e.CompleteAndRestore()
	if err != nil || !changed {
		t.Fatalf("complete = %v, %v", changed, err)
	}

	inv := store.NewInventoryStore(db)
	for _, id := range []string{a.ID, b.ID} {
		got, _ := inv.GetByID(id)
		if got.Quantity != 1.0 {
			t.Errorf("%s quantity = %v, want 1.0", got.Name, got.Quantity)
		}
		if len(got.PurchaseHistory) != 1 || !got.PurchaseHistory[0].Equal(now) {
			t.Errorf("%s history = %v, want [%v]", got.Name, got.PurchaseHistory, now)
		}
		if !got.LastUpdated.Equal(now) {
			t.Errorf("%s last_updated = %v, want %v", got.Name, got.LastUpdated, now)
		}
	}

	gotC, _ := inv.GetByID(c.ID)
	if gotC.Quantity != 0.2 || len(gotC.PurchaseHistory) != 0 {
		t.Errorf("unchecked item modified: %+v", gotC)
	}

	items, _ = e.items()
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
	if e.State() != model.ShoppingEmpty {
		t.Errorf("state = %s, want EMPTY", e.State())
	}

	last := rec.events[len(rec.events)-1]
	if last.Entity != events.EntityInventory {
		t.Errorf("last event = %+v, want inventory restock", last)
	}
}

func TestCompleteSkipsDanglingReference(t *testing.T) {
	e, db, _ := setupEngine(t, model.ShoppingEmpty)
	a := insertItem(t, db, "A", 0.1)

	e.Generate()
	e.Finalize()
	e.StartShopping()
	items, _ := e.items()
	e.ToggleChecked(items[0].ID)

	// Simulate a reference left behind by an older schema without cascades.
	if _, err := db.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM inventory_items WHERE id = ?`, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	changed, err := e.CompleteAndRestore()
	if err != nil || !changed {
		t.Fatalf("complete = %v, %v", changed, err)
	}
	if e.State() != model.ShoppingEmpty {
		t.Errorf("state = %s, want EMPTY", e.State())
	}
}

func TestSnapshot(t *testing.T) {
	e, _, _ := setupEngine(t, model.ShoppingGenerating)
	e.AddMiscItem("Tape")

	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State != model.ShoppingGenerating {
		t.Errorf("state = %s", snap.State)
	}
	if len(snap.Items) != 1 || len(snap.MiscSuggestions) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func abortOn(t *testing.T, db *sql.DB, trigger string) {
	t.Helper()
	if _, err := db.Exec(trigger); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

func persistedState(t *testing.T, db *sql.DB) model.ShoppingState {
	t.Helper()
	s, err := store.NewSettingsStore(db).GetAppSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	return s.ShoppingState
}

func TestCompleteRollsBackMidBatch(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)
	a := insertItem(t, db, "A", 0.05)
	b := insertItem(t, db, "B", 0.1)

	e.Generate()
	e.Finalize()
	e.StartShopping()
	items, _ := e.items()
	for _, it := range items {
		e.ToggleChecked(it.ID)
	}
	rec.events = nil

	// A is restocked first, then B's purchase row is refused.
	abortOn(t, db, `CREATE TRIGGER fail_b BEFORE INSERT ON inventory_purchases
		WHEN NEW.item_id = '`+b.ID+`' BEGIN SELECT RAISE(ABORT, 'boom'); END`)

	changed, err := e.CompleteAndRestore()
	if err == nil {
		t.Fatal("expected error from aborted purchase insert")
	}
	if changed {
		t.Error("changed = true on failure")
	}

	inv := store.NewInventoryStore(db)
	for _, want := range []*model.InventoryItem{a, b} {
		got, _ := inv.GetByID(want.ID)
		if got.Quantity != want.Quantity || len(got.PurchaseHistory) != 0 || !got.LastUpdated.Equal(want.LastUpdated) {
			t.Errorf("%s = %+v, want untouched", want.Name, got)
		}
	}
	after, _ := e.items()
	if len(after) != 2 {
		t.Fatalf("shopping items = %d, want 2", len(after))
	}
	for _, it := range after {
		if !it.IsChecked {
			t.Errorf("%s lost its checked flag", it.Name)
		}
	}
	if e.State() != model.ShoppingActive {
		t.Errorf("session state = %s, want SHOPPING", e.State())
	}
	if got := persistedState(t, db); got != model.ShoppingActive {
		t.Errorf("persisted state = %s, want SHOPPING", got)
	}
	if len(rec.events) != 0 {
		t.Errorf("events published on failure: %v", rec.events)
	}
}

func TestGenerateRollsBackMidBatch(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)

	stale := &model.ShoppingListItem{Name: "Stale", IsTemporary: true}
	if err := store.NewShoppingStore(db).Insert(stale); err != nil {
		t.Fatalf("insert stale: %v", err)
	}
	insertItem(t, db, "A", 0.05)
	insertItem(t, db, "B", 0.1)
	insertItem(t, db, "C", 0.2)

	// The stale row is cleared and A inserted before B is refused.
	abortOn(t, db, `CREATE TRIGGER fail_b BEFORE INSERT ON shopping_items
		WHEN NEW.name = 'B' BEGIN SELECT RAISE(ABORT, 'boom'); END`)

	changed, err := e.Generate()
	if err == nil {
		t.Fatal("expected error from aborted insert")
	}
	if changed {
		t.Error("changed = true on failure")
	}

	items, _ := e.items()
	if len(items) != 1 || items[0].ID != stale.ID {
		t.Errorf("items = %+v, want only the stale row", items)
	}
	if e.State() != model.ShoppingEmpty {
		t.Errorf("session state = %s, want EMPTY", e.State())
	}
	if got := persistedState(t, db); got != model.ShoppingEmpty {
		t.Errorf("persisted state = %s, want EMPTY", got)
	}
	if len(rec.events) != 0 {
		t.Errorf("events published on failure: %v", rec.events)
	}
}

func TestCancelRollsBackWhenStateWriteFails(t *testing.T) {
	e, db, rec := setupEngine(t, model.ShoppingEmpty)
	item := insertItem(t, db, "Milk", 0.1)

	e.Generate()
	e.AddMiscItem("Candles")
	e.Finalize()
	rec.events = nil

	// The list is deleted first; persisting EMPTY then fails.
	abortOn(t, db, `CREATE TRIGGER fail_state BEFORE UPDATE ON settings
		WHEN NEW.key = 'shopping_state' BEGIN SELECT RAISE(ABORT, 'boom'); END`)

	changed, err := e.Cancel()
	if err == nil {
		t.Fatal("expected error from aborted state write")
	}
	if changed {
		t.Error("changed = true on failure")
	}

	items, _ := e.items()
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
	got, _ := store.NewInventoryStore(db).GetByID(item.ID)
	if got.Quantity != 0.1 {
		t.Errorf("inventory quantity = %v, want 0.1", got.Quantity)
	}
	if e.State() != model.ShoppingListReady {
		t.Errorf("session state = %s, want LIST_READY", e.State())
	}
	if got := persistedState(t, db); got != model.ShoppingListReady {
		t.Errorf("persisted state = %s, want LIST_READY", got)
	}
	if len(rec.events) != 0 {
		t.Errorf("events published on failure: %v", rec.events)
	}
}
