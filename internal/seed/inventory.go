package seed

import (
	"math/rand"

	"bloodflow/m/domain"
)

const (
	minRandomUnits = 5
	maxRandomUnits = 24
)

// RandomInventory draws a starting stock in [5, 24] units for every group.
func RandomInventory(rng *rand.Rand) []domain.InventoryItem {
	items := make([]domain.InventoryItem, len(domain.BloodGroups))
	for i, g := range domain.BloodGroups {
		items[i] = domain.InventoryItem{
			BloodGroup: g,
			Units:      int64(minRandomUnits + rng.Intn(maxRandomUnits-minRandomUnits+1)),
		}
	}
	return items
}

// FixedInventory gives every group the same starting stock.
func FixedInventory(units int64) []domain.InventoryItem {
	if units < 0 {
		units = 0
	}
	items := make([]domain.InventoryItem, len(domain.BloodGroups))
	for i, g := range domain.BloodGroups {
		items[i] = domain.InventoryItem{BloodGroup: g, Units: units}
	}
	return items
}
