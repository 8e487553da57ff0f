package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bloodflow/m/domain"
)

const (
	SheetInventory = "Inventory"
	SheetDonors    = "Donors"
	SheetRequests  = "Requests"
)

var (
	InventoryHeader = []string{"Blood Group", "Units"}
	DonorsHeader    = []string{"ID", "Name", "Blood Group", "Contact", "Last Donation"}
	RequestsHeader  = []string{"ID", "Patient Name", "Blood Group", "Units", "Status", "Request Date"}
)

// WriteWorkbook writes an XLSX export of snap to w, one sheet per collection.
func WriteWorkbook(w io.Writer, snap domain.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInventory); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetDonors, SheetRequests} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	inventory := make([][]interface{}, 0, len(snap.Inventory))
	for _, item := range snap.Inventory {
		inventory = append(inventory, []interface{}{item.BloodGroup.String(), item.Units})
	}
	donors := make([][]interface{}, 0, len(snap.Donors))
	for _, d := range snap.Donors {
		donors = append(donors, []interface{}{d.ID, d.Name, d.BloodGroup.String(), d.Contact, d.LastDonation})
	}
	requests := make([][]interface{}, 0, len(snap.Requests))
	for _, r := range snap.Requests {
		requests = append(requests, []interface{}{r.ID, r.PatientName, r.BloodGroup.String(), r.Units, string(r.Status), r.RequestDate})
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetInventory, InventoryHeader, inventory},
		{SheetDonors, DonorsHeader, donors},
		{SheetRequests, RequestsHeader, requests},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.header, sh.rows, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
