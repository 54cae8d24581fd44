package shopping

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
)

var (
	ErrInvalidTransition = errors.New("invalid shopping state transition")
	ErrNotFound          = errors.New("not found")
)

type Op string

const (
	OpGenerate         Op = "generate"
	OpAddMiscItem      Op = "add_misc_item"
	OpAddInventoryItem Op = "add_inventory_item"
	OpRemoveItem       Op = "remove_item"
	OpFinalize         Op = "finalize"
	OpCancel           Op = "cancel"
	OpStartShopping    Op = "start_shopping"
	OpToggleChecked    Op = "toggle_checked"
	OpComplete         Op = "complete"
)

// allowedFrom lists the states each operation may run in.
var allowedFrom = map[Op][]model.ShoppingState{
	OpGenerate:         {model.ShoppingEmpty},
	OpAddMiscItem:      {model.ShoppingGenerating},
	OpAddInventoryItem: {model.ShoppingGenerating},
	OpRemoveItem:       {model.ShoppingGenerating},
	OpFinalize:         {model.ShoppingGenerating},
	OpCancel:           {model.ShoppingGenerating, model.ShoppingListReady},
	OpStartShopping:    {model.ShoppingListReady},
	OpToggleChecked:    {model.ShoppingActive},
	OpComplete:         {model.ShoppingActive},
}

// Snapshot is the pull view of the engine.
type Snapshot struct {
	State           model.ShoppingState      `json:"state"`
	Items           []model.ShoppingListItem `json:"items"`
	MiscSuggestions []string                 `json:"misc_suggestions"`
}

// Engine drives the shopping list lifecycle:
// EMPTY -> GENERATING -> LIST_READY -> SHOPPING -> EMPTY, with cancel back to
// EMPTY from GENERATING and LIST_READY.
//
// Operations called from a state that does not permit them are no-ops: they
// log a warning and return (false, nil). Every other operation either commits
// all of its writes or none of them.
type Engine struct {
	db      *sql.DB
	session *Session
	pub     events.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

func NewEngine(db *sql.DB, session *Session, pub events.Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		db:      db,
		session: session,
		pub:     pub,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source used for restock timestamps.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) State() model.ShoppingState {
	e.session.Lock()
	defer e.session.Unlock()
	return e.session.cur.State
}

// Check reports whether op may run in the current state, returning an error
// wrapping ErrInvalidTransition when it may not.
func (e *Engine) Check(op Op) error {
	e.session.Lock()
	defer e.session.Unlock()
	return check(op, e.session.cur.State)
}

func check(op Op, state model.ShoppingState) error {
	from, ok := allowedFrom[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidTransition, op)
	}
	if !slices.Contains(from, state) {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, state)
	}
	return nil
}

// apply runs fn under the session lock when op is permitted. fn stages its
// writes in tx and edits next; the session only takes next after the commit.
func (e *Engine) apply(op Op, id string, fn func(tx *sql.Tx, next *sessionState) (bool, error)) (bool, error) {
	e.session.Lock()
	cur := e.session.cur
	if err := check(op, cur.State); err != nil {
		e.session.Unlock()
		e.logger.Warn("ignored shopping operation", "op", string(op), "state", string(cur.State))
		return false, nil
	}

	next := cur.clone()
	var changed bool
	err := store.WithTx(e.db, func(tx *sql.Tx) error {
		var err error
		changed, err = fn(tx, &next)
		if err != nil || !changed {
			return err
		}

		settings := store.NewSettingsStore(tx)
		if next.State != cur.State {
			if err := settings.SetShoppingState(next.State); err != nil {
				return err
			}
		}
		if !slices.Equal(next.MiscHistory, cur.MiscHistory) {
			if err := settings.SetMiscHistory(next.MiscHistory); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil && changed {
		e.session.cur = next
	}
	e.session.Unlock()

	if err != nil {
		return false, fmt.Errorf("shopping %s: %w", op, err)
	}
	if changed {
		e.logger.Debug("shopping operation applied", "op", string(op), "from", string(cur.State), "to", string(next.State))
		e.pub.Publish(events.NewEvent(events.EntityShopping, string(op), id))
	}
	return changed, nil
}

// Generate rebuilds the list from every low-stock item, most depleted first.
func (e *Engine) Generate() (bool, error) {
	return e.apply(OpGenerate, "", func(tx *sql.Tx, next *sessionState) (bool, error) {
		shop := store.NewShoppingStore(tx)
		if err := shop.DeleteAll(); err != nil {
			return false, err
		}

		low, err := store.NewInventoryStore(tx).ListLowStock()
		if err != nil {
			return false, err
		}
		sort.SliceStable(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })

		items := make([]model.ShoppingListItem, 0, len(low))
		for _, it := range low {
			itemID := it.ID
			items = append(items, model.ShoppingListItem{Name: it.Name, InventoryItemID: &itemID})
		}
		if err := shop.InsertMany(items); err != nil {
			return false, err
		}

		next.State = model.ShoppingGenerating
		return true, nil
	})
}

// AddMiscItem adds a temporary entry and records name in the misc history.
// Blank names are ignored.
func (e *Engine) AddMiscItem(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	return e.apply(OpAddMiscItem, "", func(tx *sql.Tx, next *sessionState) (bool, error) {
		item := model.ShoppingListItem{Name: name, IsTemporary: true}
		if err := store.NewShoppingStore(tx).Insert(&item); err != nil {
			return false, err
		}
		next.MiscHistory = model.AddMiscHistory(next.MiscHistory, name)
		return true, nil
	})
}

// AddInventoryItem puts an existing inventory item on the list unless it is
// already there.
func (e *Engine) AddInventoryItem(itemID string) (bool, error) {
	return e.apply(OpAddInventoryItem, itemID, func(tx *sql.Tx, _ *sessionState) (bool, error) {
		inv, err := store.NewInventoryStore(tx).GetByID(itemID)
		if err != nil {
			return false, err
		}
		if inv == nil {
			return false, fmt.Errorf("inventory item %q: %w", itemID, ErrNotFound)
		}

		shop := store.NewShoppingStore(tx)
		existing, err := shop.FindByInventoryItem(itemID)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}

		item := model.ShoppingListItem{Name: inv.Name, InventoryItemID: &inv.ID}
		if err := shop.Insert(&item); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (e *Engine) RemoveItem(id string) (bool, error) {
	return e.apply(OpRemoveItem, id, func(tx *sql.Tx, _ *sessionState) (bool, error) {
		deleted, err := store.NewShoppingStore(tx).Delete(id)
		if err != nil {
			return false, err
		}
		if !deleted {
			return false, fmt.Errorf("shopping item %q: %w", id, ErrNotFound)
		}
		return true, nil
	})
}

func (e *Engine) Finalize() (bool, error) {
	return e.apply(OpFinalize, "", func(_ *sql.Tx, next *sessionState) (bool, error) {
		next.State = model.ShoppingListReady
		return true, nil
	})
}

// Cancel discards the list. Inventory is not touched.
func (e *Engine) Cancel() (bool, error) {
	return e.apply(OpCancel, "", func(tx *sql.Tx, next *sessionState) (bool, error) {
		if err := store.NewShoppingStore(tx).DeleteAll(); err != nil {
			return false, err
		}
		next.State = model.ShoppingEmpty
		return true, nil
	})
}

func (e *Engine) StartShopping() (bool, error) {
	return e.apply(OpStartShopping, "", func(_ *sql.Tx, next *sessionState) (bool, error) {
		next.State = model.ShoppingActive
		return true, nil
	})
}

// ToggleChecked flips the checked flag of exactly one item.
func (e *Engine) ToggleChecked(id string) (bool, error) {
	return e.apply(OpToggleChecked, id, func(tx *sql.Tx, _ *sessionState) (bool, error) {
		shop := store.NewShoppingStore(tx)
		item, err := shop.GetByID(id)
		if err != nil {
			return false, err
		}
		if item == nil {
			return false, fmt.Errorf("shopping item %q: %w", id, ErrNotFound)
		}
		if err := shop.SetChecked(id, !item.IsChecked); err != nil {
			return false, err
		}
		return true, nil
	})
}

// CompleteAndRestore restocks the inventory item behind every checked,
// non-temporary entry, then clears the list.
func (e *Engine) CompleteAndRestore() (bool, error) {
	var restocked int
	changed, err := e.apply(OpComplete, "", func(tx *sql.Tx, next *sessionState) (bool, error) {
		restocked = 0
		shop := store.NewShoppingStore(tx)
		inv := store.NewInventoryStore(tx)

		list, err := shop.List()
		if err != nil {
			return false, err
		}

		now := e.now()
		for _, entry := range list {
			if !entry.IsChecked || entry.IsTemporary || entry.InventoryItemID == nil {
				continue
			}
			item, err := inv.GetByID(*entry.InventoryItemID)
			if err != nil {
				return false, err
			}
			if item == nil {
				e.logger.Warn("checked entry has no inventory item", "entry", entry.ID, "item", *entry.InventoryItemID)
				continue
			}

			item.RestockToFull(now)
			if err := inv.Update(*item); err != nil {
				return false, err
			}
			if err := inv.AppendPurchase(item.ID, item.PurchaseHistory[len(item.PurchaseHistory)-1]); err != nil {
				return false, err
			}
			restocked++
		}

		if err := shop.DeleteAll(); err != nil {
			return false, err
		}
		next.State = model.ShoppingEmpty
		return true, nil
	})
	if changed && restocked > 0 {
		e.logger.Info("shopping trip completed", "restocked", restocked)
		e.pub.Publish(events.NewEvent(events.EntityInventory, "restocked", ""))
	}
	return changed, err
}

func (e *Engine) items() ([]model.ShoppingListItem, error) {
	e.session.Lock()
	defer e.session.Unlock()
	return store.NewShoppingStore(e.db).List()
}

// miscSuggestions returns past misc names, most recent first.
func (e *Engine) miscSuggestions() []string {
	e.session.Lock()
	defer e.session.Unlock()
	return model.MiscSuggestions(e.session.cur.MiscHistory)
}

func (e *Engine) Snapshot() (Snapshot, error) {
	e.session.Lock()
	defer e.session.Unlock()

	items, err := store.NewShoppingStore(e.db).List()
	if err != nil {
		return Snapshot{}, fmt.Errorf("shopping snapshot: %w", err)
	}
	if items == nil {
		items = []model.ShoppingListItem{}
	}
	return Snapshot{
		State:           e.session.cur.State,
		Items:           items,
		MiscSuggestions: model.MiscSuggestions(e.session.cur.MiscHistory),
	}, nil
}
