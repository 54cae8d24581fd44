package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

type InventoryStore struct {
	db DBTX
}

func NewInventoryStore(db DBTX) *InventoryStore {
	return &InventoryStore{db: db}
}

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var subcategory string
	var isCustom int
	var lastUpdated int64

	err := scanner.Scan(&item.ID, &item.Name, &item.Quantity, &subcategory, &isCustom, &lastUpdated)
	if err != nil {
		return nil, err
	}

	item.Subcategory = model.Subcategory(subcategory)
	item.IsCustom = isCustom != 0
	item.LastUpdated = fromMillis(lastUpdated)
	return &item, nil
}

const inventoryCols = `id, name, quantity, subcategory, is_custom, last_updated`

// Store order: name, then insertion order.
const inventoryOrder = ` ORDER BY name ASC, created_at ASC, rowid ASC`

func (s *InventoryStore) List() ([]model.InventoryItem, error) {
	return s.query(`SELECT ` + inventoryCols + ` FROM inventory_items` + inventoryOrder)
}

// ListLowStock returns items with quantity <= model.RestockThreshold in store order.
func (s *InventoryStore) ListLowStock() ([]model.InventoryItem, error) {
	return s.query(`SELECT `+inventoryCols+` FROM inventory_items WHERE quantity <= ?`+inventoryOrder, model.RestockThreshold)
}

func (s *InventoryStore) ListBySubcategory(sub model.Subcategory) ([]model.InventoryItem, error) {
	return s.query(`SELECT `+inventoryCols+` FROM inventory_items WHERE subcategory = ?`+inventoryOrder, string(sub))
}

func (s *InventoryStore) query(q string, args ...any) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory items: %w", err)
	}
	// Release the connection before the follow-up query.
	rows.Close()
	if len(items) == 0 {
		return items, nil
	}

	history, err := s.allPurchases()
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PurchaseHistory = history[items[i].ID]
	}
	return items, nil
}

func (s *InventoryStore) allPurchases() (map[string][]time.Time, error) {
	rows, err := s.db.Query(`SELECT item_id, purchased_at FROM inventory_purchases ORDER BY item_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]time.Time)
	for rows.Next() {
		var itemID string
		var at int64
		if err := rows.Scan(&itemID, &at); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		history[itemID] = append(history[itemID], fromMillis(at))
	}
	return history, rows.Err()
}

func (s *InventoryStore) purchasesFor(itemID string) ([]time.Time, error) {
	rows, err := s.db.Query(`SELECT purchased_at FROM inventory_purchases WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var history []time.Time
	for rows.Next() {
		var at int64
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		history = append(history, fromMillis(at))
	}
	return history, rows.Err()
}

func (s *InventoryStore) GetByID(id string) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}

	item.PurchaseHistory, err = s.purchasesFor(id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM inventory_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inventory items: %w", err)
	}
	return count, nil
}

// Insert writes item, assigning an ID when it has none. Quantity is clamped.
func (s *InventoryStore) Insert(item *model.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Quantity = model.ClampQuantity(item.Quantity)
	if item.LastUpdated.IsZero() {
		item.LastUpdated = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO inventory_items (id, name, quantity, subcategory, is_custom, last_updated, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Quantity, string(item.Subcategory), boolInt(item.IsCustom),
		toMillis(item.LastUpdated), toMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}

	for _, at := range item.PurchaseHistory {
		if err := s.AppendPurchase(item.ID, at); err != nil {
			return err
		}
	}
	return nil
}

// InsertMany inserts items in order. Run it inside WithTx for all-or-nothing.
func (s *InventoryStore) InsertMany(items []model.InventoryItem) error {
	for i := range items {
		if err := s.Insert(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update writes the mutable columns. Purchase history is append-only and
// goes through AppendPurchase.
func (s *InventoryStore) Update(item model.InventoryItem) error {
	_, err := s.db.Exec(
		`UPDATE inventory_items SET name = ?, quantity = ?, subcategory = ?, is_custom = ?, last_updated = ? WHERE id = ?`,
		item.Name, model.ClampQuantity(item.Quantity), string(item.Subcategory), boolInt(item.IsCustom),
		toMillis(item.LastUpdated), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

func (s *InventoryStore) AppendPurchase(itemID string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO inventory_purchases (item_id, purchased_at) VALUES (?, ?)`,
		itemID, toMillis(at),
	)
	if err != nil {
		return fmt.Errorf("append purchase: %w", err)
	}
	return nil
}

// Delete removes the item and reports whether it existed.
func (s *InventoryStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete inventory item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *InventoryStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM inventory_items`); err != nil {
		return fmt.Errorf("delete all inventory items: %w", err)
	}
	return nil
}
