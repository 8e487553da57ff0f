package store

import "bloodflow/m/domain"

// GroupCount is one bar of a per-group distribution.
type GroupCount struct {
	BloodGroup domain.BloodGroup `json:"blood_group"`
	Count      int64             `json:"count"`
}

// Summary is the dashboard overview of the current state.
type Summary struct {
	TotalDonors       int          `json:"total_donors"`
	PendingRequests   int          `json:"pending_requests"`
	FulfilledRequests int          `json:"fulfilled_requests"`
	TotalStock        int64        `json:"total_stock"`
	StockByGroup      []GroupCount `json:"stock_by_group"`
	DonorsByGroup     []GroupCount `json:"donors_by_group"`
}

// Summary aggregates counts over the current collections; distributions list every group.
func (s *BloodDataStore) Summary() Summary {
	return Summarize(s.Snapshot())
}

func Summarize(snap domain.Snapshot) Summary {
	sum := Summary{
		TotalDonors:   len(snap.Donors),
		StockByGroup:  make([]GroupCount, len(domain.BloodGroups)),
		DonorsByGroup: make([]GroupCount, len(domain.BloodGroups)),
	}

	for _, r := range snap.Requests {
		switch r.Status {
		case domain.RequestPending:
			sum.PendingRequests++
		case domain.RequestFulfilled:
			sum.FulfilledRequests++
		}
	}

	stock := make(map[domain.BloodGroup]int64)
	for _, item := range snap.Inventory {
		stock[item.BloodGroup] += item.Units
		sum.TotalStock += item.Units
	}
	donors := make(map[domain.BloodGroup]int64)
	for _, d := range snap.Donors {
		donors[d.BloodGroup]++
	}

	for i, g := range domain.BloodGroups {
		sum.StockByGroup[i] = GroupCount{BloodGroup: g, Count: stock[g]}
		sum.DonorsByGroup[i] = GroupCount{BloodGroup: g, Count: donors[g]}
	}
	return sum
}
