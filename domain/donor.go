package domain

// DateLayout is the calendar date format used for donation and request dates.
const DateLayout = "2006-01-02"

type Donor struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	BloodGroup   BloodGroup `json:"blood_group"`
	Contact      string     `json:"contact"`
	LastDonation string     `json:"last_donation"`
}
