package model

import (
	"fmt"
	"strings"
)

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Priority) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "HIGH":
		*p = PriorityHigh
	case "MEDIUM":
		*p = PriorityMedium
	case "LOW":
		*p = PriorityLow
	default:
		return fmt.Errorf("unknown priority %q", b)
	}
	return nil
}

// SmartRecommendation is computed on demand and never persisted.
type SmartRecommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IconKey     string   `json:"icon"`
	Color       string   `json:"color"`
	Priority    Priority `json:"priority"`
}

type InventoryStats struct {
	TotalItems                 int    `json:"total_items"`
	LowStockItems              int    `json:"low_stock_items"`
	AverageStockLevel          int    `json:"average_stock_level"`
	ActiveCategories           int    `json:"active_categories"`
	EstimatedShoppingFrequency string `json:"estimated_shopping_frequency"`
	EstimatedNextShoppingTrip  string `json:"estimated_next_shopping_trip"`
	ShoppingEfficiencyTip      string `json:"shopping_efficiency_tip"`
}
