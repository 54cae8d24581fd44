package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

type ShoppingStore struct {
	db DBTX
}

func NewShoppingStore(db DBTX) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var checked, temporary int
	var inventoryID sql.NullString

	err := scanner.Scan(&item.ID, &item.Name, &checked, &temporary, &inventoryID, &item.Position)
	if err != nil {
		return nil, err
	}

	item.IsChecked = checked != 0
	item.IsTemporary = temporary != 0
	if inventoryID.Valid {
		item.InventoryItemID = &inventoryID.String
	}
	return &item, nil
}

const shoppingCols = `id, name, is_checked, is_temporary, inventory_item_id, position`

// List returns the list in generation order.
func (s *ShoppingStore) List() ([]model.ShoppingListItem, error) {
	rows, err := s.db.Query(`SELECT ` + shoppingCols + ` FROM shopping_items ORDER BY position ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) GetByID(id string) (*model.ShoppingListItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// FindByInventoryItem returns the pending entry linked to itemID, if any.
func (s *ShoppingStore) FindByInventoryItem(itemID string) (*model.ShoppingListItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE inventory_item_id = ? LIMIT 1`, itemID)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) nextPosition() (int, error) {
	var pos int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM shopping_items`).Scan(&pos); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return pos, nil
}

// Insert appends item to the end of the list, assigning an ID when it has none.
func (s *ShoppingStore) Insert(item *model.ShoppingListItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	pos, err := s.nextPosition()
	if err != nil {
		return err
	}
	item.Position = pos

	var inventoryID sql.NullString
	if item.InventoryItemID != nil {
		inventoryID = sql.NullString{String: *item.InventoryItemID, Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO shopping_items (id, name, is_checked, is_temporary, inventory_item_id, position) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, boolInt(item.IsChecked), boolInt(item.IsTemporary), inventoryID, item.Position,
	)
	if err != nil {
		return fmt.Errorf("insert shopping item: %w", err)
	}
	return nil
}

// InsertMany appends items in order. Run it inside WithTx for all-or-nothing.
func (s *ShoppingStore) InsertMany(items []model.ShoppingListItem) error {
	for i := range items {
		if err := s.Insert(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShoppingStore) SetChecked(id string, checked bool) error {
	_, err := s.db.Exec(`UPDATE shopping_items SET is_checked = ? WHERE id = ?`, boolInt(checked), id)
	if err != nil {
		return fmt.Errorf("set checked: %w", err)
	}
	return nil
}

// RenameLinked copies a renamed inventory item's name onto its list entries.
func (s *ShoppingStore) RenameLinked(itemID, name string) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE shopping_items SET name = ? WHERE inventory_item_id = ? AND is_temporary = 0`,
		name, itemID,
	)
	if err != nil {
		return 0, fmt.Errorf("rename linked shopping items: %w", err)
	}
	return result.RowsAffected()
}

func (s *ShoppingStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete shopping item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteLinked removes every non-temporary entry pointing at itemID.
func (s *ShoppingStore) DeleteLinked(itemID string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE inventory_item_id = ? AND is_temporary = 0`,
		itemID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete linked shopping items: %w", err)
	}
	return result.RowsAffected()
}

func (s *ShoppingStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM shopping_items`); err != nil {
		return fmt.Errorf("delete all shopping items: %w", err)
	}
	return nil
}
