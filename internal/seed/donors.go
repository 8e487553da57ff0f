package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"bloodflow/m/domain"
)

// Donors returns the canonical starting roster.
func Donors() []domain.Donor {
	return []domain.Donor{
		{ID: "d1", Name: "Alice Johnson", BloodGroup: domain.OPositive, Contact: "555-0101", LastDonation: "2023-05-15"},
		{ID: "d2", Name: "Bob Williams", BloodGroup: domain.ANegative, Contact: "555-0102", LastDonation: "2023-07-22"},
		{ID: "d3", Name: "Charlie Brown", BloodGroup: domain.BPositive, Contact: "555-0103", LastDonation: "2023-09-01"},
		{ID: "d4", Name: "Diana Miller", BloodGroup: domain.ABNegative, Contact: "555-0104", LastDonation: "2023-11-18"},
		{ID: "d5", Name: "Ethan Davis", BloodGroup: domain.ONegative, Contact: "555-0105", LastDonation: "2024-01-09"},
		{ID: "d6", Name: "Fiona Garcia", BloodGroup: domain.APositive, Contact: "555-0106", LastDonation: "2024-02-28"},
		{ID: "d7", Name: "George Rodriguez", BloodGroup: domain.BNegative, Contact: "555-0107", LastDonation: "2024-03-12"},
		{ID: "d8", Name: "Hannah Martinez", BloodGroup: domain.ABPositive, Contact: "555-0108", LastDonation: "2024-04-05"},
		{ID: "d9", Name: "Ian Clark", BloodGroup: domain.OPositive, Contact: "555-0109", LastDonation: "2024-05-20"},
		{ID: "d10", Name: "Jessica Lewis", BloodGroup: domain.ANegative, Contact: "555-0110", LastDonation: "2024-06-11"},
		{ID: "d11", Name: "Kevin Walker", BloodGroup: domain.BPositive, Contact: "555-0111", LastDonation: "2024-07-01"},
	}
}

// LoadDonorsCSV reads a roster with the header id,name,blood_group,contact,last_donation.
// Rows that do not parse are skipped and logged.
func LoadDonorsCSV(path string, logger *zap.Logger) ([]domain.Donor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open donor roster: %w", err)
	}
	defer file.Close()
	return ReadDonors(file, logger)
}

// ReadDonors parses a donor roster from r.
func ReadDonors(r io.Reader, logger *zap.Logger) ([]domain.Donor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read donor header: %w", err)
	}

	donors := make([]domain.Donor, 0)
	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logger.Warn("unable to read donor row", zap.Int("line", line), zap.Error(err))
			continue
		}
		donor, err := parseDonor(record)
		if err != nil {
			logger.Warn("skipping donor row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if _, dup := seen[donor.ID]; dup {
			logger.Warn("skipping duplicate donor id", zap.Int("line", line), zap.String("id", donor.ID))
			continue
		}
		seen[donor.ID] = struct{}{}
		donors = append(donors, donor)
	}

	logger.Info("loaded donor roster", zap.Int("rows", len(donors)))
	return donors, nil
}

func parseDonor(record []string) (domain.Donor, error) {
	if len(record) < 5 {
		return domain.Donor{}, fmt.Errorf("expected 5 fields, got %d", len(record))
	}
	id := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	contact := strings.TrimSpace(record[3])
	lastDonation := strings.TrimSpace(record[4])
	if id == "" || name == "" || contact == "" {
		return domain.Donor{}, errors.New("id, name and contact are required")
	}
	group, err := domain.ParseBloodGroup(record[2])
	if err != nil {
		return domain.Donor{}, err
	}
	if _, err := time.Parse(domain.DateLayout, lastDonation); err != nil {
		return domain.Donor{}, fmt.Errorf("last_donation must be YYYY-MM-DD: %w", err)
	}
	return domain.Donor{ID: id, Name: name, BloodGroup: group, Contact: contact, LastDonation: lastDonation}, nil
}
