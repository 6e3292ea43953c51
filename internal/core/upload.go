package core

// upload.go parses and validates lead CSV files.
//
// The import is split in two so the row checks stay pure:
//   - PlanImport reads the file, applies the row cap and validates every row
//     without touching the store.
//   - Service.ImportCSV turns the valid rows into leads and submits them as a
//     single batch insert.
//
// Row numbers in errors match spreadsheet rows: the header is row 1, so the
// first data row is row 2.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
)

// CSVHeaders is the fixed column order for lead import and export.
var CSVHeaders = []string{
	"fullName",
	"email",
	"phone",
	"city",
	"propertyType",
	"bhk",
	"purpose",
	"budgetMin",
	"budgetMax",
	"timeline",
	"source",
	"notes",
	"tags",
	"status",
}

// DefaultMaxImportRows is the row cap used when none is configured.
const DefaultMaxImportRows = 200

// ImportPlan is the validated content of a CSV file.
type ImportPlan struct {
	Leads    []ValidatedLead
	Errors   []RowError
	DataRows int
}

// PlanImport parses a lead CSV and validates each data row.
//
// Blank rows are skipped and do not count toward maxRows. When the file has
// more than maxRows data rows the returned plan holds no leads and a single
// batch-level RowError (row 0), and the error wraps ErrBatchTooLarge.
func PlanImport(r io.Reader, maxRows int) (*ImportPlan, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxImportRows
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = sanitizeUTF8(stripBOM(data))

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := MakeHeaderIndex(records[0])
	body := records[1:]

	dataRows := 0
	for _, row := range body {
		if !isEmptyRow(row) {
			dataRows++
		}
	}

	plan := &ImportPlan{DataRows: dataRows}
	if dataRows > maxRows {
		plan.Errors = []RowError{{Row: 0, Message: fmt.Sprintf("CSV exceeds %d rows", maxRows)}}
		return plan, fmt.Errorf("%w: %d data rows, limit is %d", ErrBatchTooLarge, dataRows, maxRows)
	}

	for i, row := range body {
		if isEmptyRow(row) {
			continue
		}
		lineNum := i + 2

		lead, rowErr := validateRow(row, headerIdx)
		if rowErr != "" {
			plan.Errors = append(plan.Errors, RowError{Row: lineNum, Message: rowErr})
			continue
		}
		plan.Leads = append(plan.Leads, lead)
	}

	return plan, nil
}

// validateRow checks one data row. It returns a non-empty message when the
// row is rejected.
func validateRow(row []string, headerIdx HeaderIndex) (ValidatedLead, string) {
	cells := make(map[string]string, len(CSVHeaders))
	for _, name := range CSVHeaders {
		v, ok := headerIdx.Cell(row, name)
		if !ok {
			return ValidatedLead{}, "Missing column " + name
		}
		if !freeTextColumns[name] {
			v = CleanCell(v)
		}
		cells[name] = v
	}

	lead, err := Validate(rowToRaw(cells))
	if err != nil {
		return ValidatedLead{}, err.Error()
	}

	if !slices.Contains(ImportableStatuses, lead.Status) {
		return ValidatedLead{}, "status: must be one of: " + joinStatuses(ImportableStatuses)
	}

	return lead, ""
}

func rowToRaw(cells map[string]string) RawLead {
	return RawLead{
		FullName:     cells["fullName"],
		Email:        cells["email"],
		Phone:        cells["phone"],
		City:         cells["city"],
		PropertyType: cells["propertyType"],
		BHK:          cells["bhk"],
		Purpose:      cells["purpose"],
		BudgetMin:    NumberInput(cells["budgetMin"]),
		BudgetMax:    NumberInput(cells["budgetMax"]),
		Timeline:     cells["timeline"],
		Source:       cells["source"],
		Status:       cells["status"],
		Notes:        cells["notes"],
		Tags:         splitTags(cells["tags"]),
	}
}

func joinStatuses(statuses []Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}
