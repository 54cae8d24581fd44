package model

import "fmt"

type ShoppingState string

const (
	ShoppingEmpty      ShoppingState = "EMPTY"
	ShoppingGenerating ShoppingState = "GENERATING"
	ShoppingListReady  ShoppingState = "LIST_READY"
	ShoppingActive     ShoppingState = "SHOPPING"
)

func ParseShoppingState(v string) (ShoppingState, error) {
	switch s := ShoppingState(v); s {
	case ShoppingEmpty, ShoppingGenerating, ShoppingListReady, ShoppingActive:
		return s, nil
	case "":
		return ShoppingEmpty, nil
	}
	return "", fmt.Errorf("unknown shopping state %q", v)
}

// ShoppingListItem is one line of the shopping list. Temporary ("misc") items
// have no inventory backing; all others reference an InventoryItem.
type ShoppingListItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	IsChecked       bool    `json:"is_checked"`
	IsTemporary     bool    `json:"is_temporary"`
	InventoryItemID *string `json:"inventory_item_id"`
	Position        int     `json:"position"`
}
