package domain

type InventoryItem struct {
	BloodGroup BloodGroup `json:"blood_group"`
	Units      int64      `json:"units"`
}

// Snapshot is a consistent copy of all three collections.
type Snapshot struct {
	Donors    []Donor         `json:"donors"`
	Requests  []BloodRequest  `json:"requests"`
	Inventory []InventoryItem `json:"inventory"`
}
