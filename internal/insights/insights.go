// Package insights derives aging, statistics and recommendations from an
// inventory snapshot. Every function here is pure: callers pass the items and
// the current time.
package insights

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

const (
	fridgeExpiryDays = 14
	otherExpiryDays  = 60

	millisPerDay = 24 * 60 * 60 * 1000
)

// DaysSinceLastUpdate is the whole number of days since item.LastUpdated,
// rounded toward negative infinity.
func DaysSinceLastUpdate(item model.InventoryItem, now time.Time) int {
	return floorDiv(now.UnixMilli()-item.LastUpdated.UnixMilli(), millisPerDay)
}

func floorDiv(a, b int64) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return int(q)
}

// ExpiryThreshold is 14 days for fridge items and 60 days for everything else.
func ExpiryThreshold(item model.InventoryItem) int {
	if item.Category() == model.CategoryFridge {
		return fridgeExpiryDays
	}
	return otherExpiryDays
}

func warningThreshold(item model.InventoryItem) int {
	return ExpiryThreshold(item) * 8 / 10
}

func IsExpired(item model.InventoryItem, now time.Time) bool {
	return DaysSinceLastUpdate(item, now) >= ExpiryThreshold(item)
}

// IsNearExpiry reports whether the item has passed 80% of its threshold but
// not the threshold itself.
func IsNearExpiry(item model.InventoryItem, now time.Time) bool {
	days := DaysSinceLastUpdate(item, now)
	return days >= warningThreshold(item) && days < ExpiryThreshold(item)
}

func filter(items []model.InventoryItem, keep func(model.InventoryItem) bool) []model.InventoryItem {
	out := []model.InventoryItem{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func ExpiredItems(items []model.InventoryItem, now time.Time) []model.InventoryItem {
	return filter(items, func(it model.InventoryItem) bool { return IsExpired(it, now) })
}

func NearExpiryItems(items []model.InventoryItem, now time.Time) []model.InventoryItem {
	return filter(items, func(it model.InventoryItem) bool { return IsNearExpiry(it, now) })
}

// UrgentAttentionItems returns expired items followed by near-expiry items.
func UrgentAttentionItems(items []model.InventoryItem, now time.Time) []model.InventoryItem {
	return append(ExpiredItems(items, now), NearExpiryItems(items, now)...)
}

// ItemsNeedingAttention returns low-stock items, most depleted first.
func ItemsNeedingAttention(items []model.InventoryItem) []model.InventoryItem {
	low := filter(items, model.InventoryItem.NeedsRestocking)
	sort.SliceStable(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })
	return low
}

func ActiveCategories(items []model.InventoryItem) int {
	seen := make(map[model.Category]struct{})
	for _, it := range items {
		seen[it.Category()] = struct{}{}
	}
	return len(seen)
}

// MostFrequentlyRestocked returns the first item with the longest purchase
// history, or nil for an empty inventory.
func MostFrequentlyRestocked(items []model.InventoryItem) *model.InventoryItem {
	var best *model.InventoryItem
	for i := range items {
		if best == nil || len(items[i].PurchaseHistory) > len(best.PurchaseHistory) {
			best = &items[i]
		}
	}
	return best
}

// LeastRecentlyUpdated returns the first item with the oldest LastUpdated,
// or nil for an empty inventory.
func LeastRecentlyUpdated(items []model.InventoryItem) *model.InventoryItem {
	var best *model.InventoryItem
	for i := range items {
		if best == nil || items[i].LastUpdated.Before(best.LastUpdated) {
			best = &items[i]
		}
	}
	return best
}

// Recommendation colors, as #RRGGBB.
const (
	colorRed    = "#FF0000"
	colorOrange = "#FF9500"
	colorYellow = "#FFD60A"
	colorBlue   = "#007AFF"
	colorGreen  = "#34C759"
)

// Recommendations evaluates the rules in a fixed order, then moves HIGH
// priority entries to the front without reordering the rest.
func Recommendations(items []model.InventoryItem, now time.Time) []model.SmartRecommendation {
	var recs []model.SmartRecommendation

	kitchen := filter(items, func(it model.InventoryItem) bool {
		return it.Category() == model.CategoryFridge && DaysSinceLastUpdate(it, now) >= fridgeExpiryDays
	})
	if len(kitchen) > 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "URGENT: Kitchen Items Expired",
			Description: fmt.Sprintf("%d kitchen items haven't been updated in 2+ weeks. Check for spoilage immediately!", len(kitchen)),
			IconKey:     "error",
			Color:       colorRed,
			Priority:    model.PriorityHigh,
		})
	}

	stale := filter(items, func(it model.InventoryItem) bool {
		return it.Category() != model.CategoryFridge && DaysSinceLastUpdate(it, now) >= otherExpiryDays
	})
	if len(stale) > 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "Stale Items Alert",
			Description: fmt.Sprintf("%d items haven't been updated in 2+ months. Time to review and update!", len(stale)),
			IconKey:     "schedule",
			Color:       colorOrange,
			Priority:    model.PriorityHigh,
		})
	}

	if near := NearExpiryItems(items, now); len(near) > 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "Items Need Attention Soon",
			Description: fmt.Sprintf("%d items are approaching their update deadline. Check them this week.", len(near)),
			IconKey:     "update",
			Color:       colorYellow,
			Priority:    model.PriorityMedium,
		})
	}

	if critical := filter(items, model.InventoryItem.IsCritical); len(critical) > 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "Critical Stock Alert",
			Description: fmt.Sprintf("%d items are critically low (≤10%%). Consider shopping soon.", len(critical)),
			IconKey:     "warning",
			Color:       colorRed,
			Priority:    model.PriorityHigh,
		})
	}

	if len(sparseCategories(items)) > 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "Expand Your Inventory",
			Description: "Some categories have very few items. Consider adding more items for better tracking.",
			IconKey:     "add_circle",
			Color:       colorBlue,
			Priority:    model.PriorityLow,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, model.SmartRecommendation{
			Title:       "Great Job!",
			Description: "Your inventory is well-maintained. Keep tracking your items for better insights.",
			IconKey:     "check_circle",
			Color:       colorGreen,
			Priority:    model.PriorityLow,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority == model.PriorityHigh && recs[j].Priority != model.PriorityHigh
	})
	return recs
}

// sparseCategories returns the categories present in items with fewer than
// two items. Categories with no items at all are not counted.
func sparseCategories(items []model.InventoryItem) []model.Category {
	order, groups := groupByCategory(items)
	var out []model.Category
	for _, c := range order {
		if len(groups[c]) < 2 {
			out = append(out, c)
		}
	}
	return out
}

// groupByCategory groups items, returning categories in first-seen order.
func groupByCategory(items []model.InventoryItem) ([]model.Category, map[model.Category][]model.InventoryItem) {
	var order []model.Category
	groups := make(map[model.Category][]model.InventoryItem)
	for _, it := range items {
		c := it.Category()
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], it)
	}
	return order, groups
}

func Stats(items []model.InventoryItem) model.InventoryStats {
	low := filter(items, model.InventoryItem.NeedsRestocking)
	return model.InventoryStats{
		TotalItems:                 len(items),
		LowStockItems:              len(low),
		AverageStockLevel:          AverageStockLevel(items),
		ActiveCategories:           ActiveCategories(items),
		EstimatedShoppingFrequency: ShoppingFrequency(items),
		EstimatedNextShoppingTrip:  NextShoppingTrip(items),
		ShoppingEfficiencyTip:      EfficiencyTip(items),
	}
}

// AverageStockLevel is the mean quantity as a rounded percentage.
func AverageStockLevel(items []model.InventoryItem) int {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += it.Quantity
	}
	return model.InventoryItem{Quantity: sum / float64(len(items))}.QuantityPercentage()
}

// ShoppingFrequency buckets the average whole-day gap between restocks.
// Gaps are averaged per item first, then across items, in integer days.
func ShoppingFrequency(items []model.InventoryItem) string {
	total := 0
	for _, it := range items {
		total += len(it.PurchaseHistory)
	}
	if total == 0 {
		return "No data yet"
	}

	var perItem []int
	for _, it := range items {
		if len(it.PurchaseHistory) < 2 {
			continue
		}
		history := slices.Clone(it.PurchaseHistory)
		slices.SortFunc(history, func(a, b time.Time) int { return a.Compare(b) })

		days := 0
		for i := 1; i < len(history); i++ {
			days += int(history[i].Sub(history[i-1]).Milliseconds() / millisPerDay)
		}
		perItem = append(perItem, days/(len(history)-1))
	}
	if len(perItem) == 0 {
		return "Weekly"
	}

	sum := 0
	for _, d := range perItem {
		sum += d
	}
	switch avg := sum / len(perItem); {
	case avg <= 7:
		return "Weekly"
	case avg <= 14:
		return "Bi-weekly"
	case avg <= 30:
		return "Monthly"
	default:
		return "Rarely"
	}
}

func NextShoppingTrip(items []model.InventoryItem) string {
	low := filter(items, model.InventoryItem.NeedsRestocking)
	switch {
	case slices.ContainsFunc(items, model.InventoryItem.IsCritical):
		return "Now (critical items)"
	case len(low) >= 5:
		return "This week"
	case len(low) > 0:
		return "Next week"
	default:
		return "No rush"
	}
}

// EfficiencyTip names the category holding the most low-stock items when
// that group has more than one item. Ties go to the category seen first.
func EfficiencyTip(items []model.InventoryItem) string {
	order, groups := groupByCategory(filter(items, model.InventoryItem.NeedsRestocking))

	var best model.Category
	bestCount := 0
	for _, c := range order {
		if n := len(groups[c]); n > bestCount {
			best, bestCount = c, n
		}
	}
	if bestCount > 1 {
		return fmt.Sprintf("Focus on %s section", best.DisplayName())
	}
	return "Spread across categories"
}
