package normalize

import (
	"math"
	"sort"
	"strings"

	"github.com/hogarhub/core/internal/domain/entities"
)

// NormalizeSupermarketItem converts one raw shopping-list record. Returns nil
// when the record carries no id.
func NormalizeSupermarketItem(raw any) *entities.SupermarketItem {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	id, _ := m["id"].(string)
	if id == "" {
		return nil
	}

	item := &entities.SupermarketItem{
		ID:       id,
		Quantity: 1,
		Unit:     "pz",
		Priority: 2,
	}
	if s, ok := m["name"].(string); ok {
		item.Name = s
	}
	if qty := toNumber(m["quantity"]); qty > 0 {
		item.Quantity = qty
	}
	if s, ok := m["unit"].(string); ok && strings.TrimSpace(s) != "" {
		item.Unit = s
	}
	item.Category, _ = m["category"].(string)
	item.Store, _ = m["store"].(string)
	if v, ok := m["price"].(float64); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		item.Price = &v
	}
	if p := ParseOrderValue(m["priority"]); p != nil {
		item.Priority = *p
	}
	item.Notes, _ = m["notes"].(string)
	item.Recurring, _ = m["recurring"].(string)
	if rawTags, ok := m["tags"].([]any); ok {
		for _, rawTag := range rawTags {
			if tag, ok := rawTag.(string); ok && strings.TrimSpace(tag) != "" {
				item.Tags = append(item.Tags, tag)
			}
		}
	}
	item.Checked, _ = m["checked"].(bool)
	item.CreatedAt = NormalizeTimestamp(m["createdAt"])
	item.UpdatedAt = NormalizeTimestamp(m["updatedAt"])
	return item
}

// SortSupermarketItems orders pending items before checked ones, then by
// priority, name and createdAt. Returns a new slice.
func SortSupermarketItems(items []entities.SupermarketItem) []entities.SupermarketItem {
	out := entities.CloneSupermarketItems(items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Checked != b.Checked {
			return !a.Checked
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		nameA := strings.ToLower(a.Name)
		nameB := strings.ToLower(b.Name)
		if nameA != nameB {
			return nameA < nameB
		}
		return a.CreatedAt < b.CreatedAt
	})
	return out
}

// ComputeSupermarketStats summarizes the list; the estimated total multiplies
// price by quantity for priced items only.
func ComputeSupermarketStats(items []entities.SupermarketItem) entities.SupermarketStats {
	stats := entities.SupermarketStats{Total: len(items)}
	for _, item := range items {
		if item.Checked {
			stats.Checked++
		}
		if item.Price != nil {
			qty := item.Quantity
			if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
				qty = 1
			}
			stats.EstimatedTotal += *item.Price * qty
		}
	}
	stats.Pending = stats.Total - stats.Checked
	stats.EstimatedTotal = math.Round(stats.EstimatedTotal*100) / 100
	return stats
}
