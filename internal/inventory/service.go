package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/shopping"
	"github.com/dukerupert/homestock/internal/store"
)

var (
	ErrNotFound           = errors.New("inventory item not found")
	ErrInvalidSubcategory = errors.New("invalid subcategory")
)

// Service owns inventory mutations. Writes that touch the shopping list hold
// the shopping session lock so they never interleave with an engine operation.
type Service struct {
	db      *sql.DB
	session *shopping.Session
	pub     events.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, session *shopping.Session, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		session: session,
		pub:     pub,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// mutate runs fn in a transaction under the session lock and publishes an
// inventory event once it commits.
func (s *Service) mutate(action, id string, fn func(tx *sql.Tx) error) error {
	s.session.Lock()
	err := store.WithTx(s.db, fn)
	s.session.Unlock()
	if err != nil {
		return err
	}
	s.pub.Publish(events.NewEvent(events.EntityInventory, action, id))
	return nil
}

func (s *Service) List() ([]model.InventoryItem, error) {
	return store.NewInventoryStore(s.db).List()
}

func (s *Service) ListLowStock() ([]model.InventoryItem, error) {
	return store.NewInventoryStore(s.db).ListLowStock()
}

func (s *Service) ListBySubcategory(sub model.Subcategory) ([]model.InventoryItem, error) {
	return store.NewInventoryStore(s.db).ListBySubcategory(sub)
}

// ListByCategory returns the items of every subcategory under c, in store order.
func (s *Service) ListByCategory(c model.Category) ([]model.InventoryItem, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]model.InventoryItem, 0, len(all))
	for _, item := range all {
		if item.Category() == c {
			out = append(out, item)
		}
	}
	return out, nil
}

// Get returns ErrNotFound when id does not exist.
func (s *Service) Get(id string) (*model.InventoryItem, error) {
	item, err := store.NewInventoryStore(s.db).GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// AddCustomItem creates an empty custom item. An empty subcategory is
// inferred from the name.
func (s *Service) AddCustomItem(name string, sub model.Subcategory) (*model.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrBlankName
	}
	if sub == "" {
		sub = Categorize(name)
	}
	if !sub.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubcategory, sub)
	}

	item := &model.InventoryItem{
		Name:        name,
		Quantity:    0,
		Subcategory: sub,
		IsCustom:    true,
		LastUpdated: s.now(),
	}
	err := s.mutate("created", "", func(tx *sql.Tx) error {
		return store.NewInventoryStore(tx).Insert(item)
	})
	if err != nil {
		return nil, fmt.Errorf("add custom item: %w", err)
	}
	s.logger.Info("custom item added", "id", item.ID, "subcategory", string(sub))
	return item, nil
}

// edit loads id inside a transaction, applies fn and writes the result back.
func (s *Service) edit(action, id string, fn func(tx *sql.Tx, item *model.InventoryItem) error) (*model.InventoryItem, error) {
	var out *model.InventoryItem
	err := s.mutate(action, id, func(tx *sql.Tx) error {
		inv := store.NewInventoryStore(tx)
		item, err := inv.GetByID(id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}
		if err := fn(tx, item); err != nil {
			return err
		}
		if err := inv.Update(*item); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateQuantity stores q clamped to [0, 1].
func (s *Service) UpdateQuantity(id string, q float64) (*model.InventoryItem, error) {
	return s.edit("updated", id, func(_ *sql.Tx, item *model.InventoryItem) error {
		item.UpdateQuantity(q, s.now())
		return nil
	})
}

// Rename also renames the item's entries on the shopping list.
func (s *Service) Rename(id, name string) (*model.InventoryItem, error) {
	return s.edit("renamed", id, func(tx *sql.Tx, item *model.InventoryItem) error {
		if err := item.Rename(name, s.now()); err != nil {
			return err
		}
		_, err := store.NewShoppingStore(tx).RenameLinked(item.ID, item.Name)
		return err
	})
}

// Restock fills the item and logs one purchase.
func (s *Service) Restock(id string) (*model.InventoryItem, error) {
	return s.edit("restocked", id, func(tx *sql.Tx, item *model.InventoryItem) error {
		item.RestockToFull(s.now())
		return store.NewInventoryStore(tx).AppendPurchase(item.ID, item.LastUpdated)
	})
}

// Delete removes the item together with its shopping list entries.
func (s *Service) Delete(id string) error {
	var unlinked int64
	err := s.mutate("deleted", id, func(tx *sql.Tx) error {
		var err error
		unlinked, err = store.NewShoppingStore(tx).DeleteLinked(id)
		if err != nil {
			return err
		}
		deleted, err := store.NewInventoryStore(tx).Delete(id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	if unlinked > 0 {
		s.pub.Publish(events.NewEvent(events.EntityShopping, "item_removed", id))
	}
	return nil
}

// DefaultCatalog returns one full item per sample name of every subcategory.
func DefaultCatalog(now time.Time) []model.InventoryItem {
	var items []model.InventoryItem
	for _, sub := range model.Subcategories {
		for _, name := range sub.SampleItems() {
			items = append(items, model.InventoryItem{
				Name:        name,
				Quantity:    1.0,
				Subcategory: sub,
				LastUpdated: now,
			})
		}
	}
	return items
}

// SeedDefaults inserts the default catalog into an empty inventory and
// reports how many items it added.
func (s *Service) SeedDefaults() (int, error) {
	var seeded int
	s.session.Lock()
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		var err error
		seeded, err = seed(tx, s.now())
		return err
	})
	s.session.Unlock()
	if err != nil {
		return 0, fmt.Errorf("seed defaults: %w", err)
	}
	if seeded > 0 {
		s.logger.Info("inventory seeded", "items", seeded)
		s.pub.Publish(events.NewEvent(events.EntityInventory, "seeded", ""))
	}
	return seeded, nil
}

func seed(tx *sql.Tx, now time.Time) (int, error) {
	inv := store.NewInventoryStore(tx)
	count, err := inv.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	items := DefaultCatalog(now)
	if err := inv.InsertMany(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func clearAll(tx *sql.Tx) error {
	if err := store.NewShoppingStore(tx).DeleteAll(); err != nil {
		return err
	}
	if err := store.NewInventoryStore(tx).DeleteAll(); err != nil {
		return err
	}
	if err := store.NewNoteStore(tx).DeleteAll(); err != nil {
		return err
	}
	return store.NewSettingsStore(tx).Reset()
}

// ClearAllData deletes inventory, shopping list and notes, and resets every
// setting including the shopping state.
func (s *Service) ClearAllData() error {
	return s.reset(false)
}

// ResetToDefaults clears all data and reseeds the default catalog.
func (s *Service) ResetToDefaults() error {
	return s.reset(true)
}

func (s *Service) reset(reseed bool) error {
	s.session.Lock()
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		if err := clearAll(tx); err != nil {
			return err
		}
		if reseed {
			_, err := seed(tx, s.now())
			return err
		}
		return nil
	})
	if err == nil {
		s.session.Reset()
	}
	s.session.Unlock()
	if err != nil {
		return fmt.Errorf("clear all data: %w", err)
	}

	s.logger.Info("all data cleared", "reseeded", reseed)
	for _, entity := range []string{events.EntityInventory, events.EntityShopping, events.EntityNote, events.EntitySettings} {
		s.pub.Publish(events.NewEvent(entity, "reset", ""))
	}
	return nil
}
