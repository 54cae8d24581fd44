package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

const (
	// RestockThreshold is the quantity at or below which an item is low stock.
	RestockThreshold = 0.25
	// CriticalThreshold is the quantity at or below which an item is critically low.
	CriticalThreshold = 0.1
)

// ErrBlankName rejects writes whose name is empty after trimming.
var ErrBlankName = errors.New("name is required")

type InventoryItem struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Quantity        float64     `json:"quantity"`
	Subcategory     Subcategory `json:"subcategory"`
	IsCustom        bool        `json:"is_custom"`
	PurchaseHistory []time.Time `json:"purchase_history"`
	LastUpdated     time.Time   `json:"last_updated"`
}

func (i InventoryItem) Category() Category { return i.Subcategory.Category() }

func (i InventoryItem) NeedsRestocking() bool { return i.Quantity <= RestockThreshold }

func (i InventoryItem) IsCritical() bool { return i.Quantity <= CriticalThreshold }

func (i InventoryItem) QuantityPercentage() int { return int(math.Round(i.Quantity * 100)) }

// UpdateQuantity stores q clamped to [0, 1].
func (i *InventoryItem) UpdateQuantity(q float64, now time.Time) {
	i.Quantity = ClampQuantity(q)
	i.LastUpdated = now
}

// RestockToFull marks the item fully replenished and logs one purchase.
// The logged timestamp never precedes the previous LastUpdated.
func (i *InventoryItem) RestockToFull(now time.Time) {
	if now.Before(i.LastUpdated) {
		now = i.LastUpdated
	}
	i.Quantity = 1.0
	i.PurchaseHistory = append(i.PurchaseHistory, now)
	i.LastUpdated = now
}

// Rename trims name and applies it. Blank names are rejected.
func (i *InventoryItem) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	i.Name = name
	i.LastUpdated = now
	return nil
}

func ClampQuantity(q float64) float64 {
	switch {
	case math.IsNaN(q), q < 0:
		return 0
	case q > 1:
		return 1
	}
	return q
}

// MarshalJSON adds the derived fields the UI renders.
func (i InventoryItem) MarshalJSON() ([]byte, error) {
	type item InventoryItem
	history := i.PurchaseHistory
	if history == nil {
		history = []time.Time{}
	}
	base := item(i)
	base.PurchaseHistory = history
	return json.Marshal(struct {
		item
		Category           Category `json:"category"`
		NeedsRestocking    bool     `json:"needs_restocking"`
		QuantityPercentage int      `json:"quantity_percentage"`
	}{
		item:               base,
		Category:           i.Category(),
		NeedsRestocking:    i.NeedsRestocking(),
		QuantityPercentage: i.QuantityPercentage(),
	})
}
