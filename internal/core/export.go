package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteLeadsCSV writes leads as CSV using the CSVHeaders column order.
// The output is accepted by PlanImport.
func WriteLeadsCSV(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	// Flush periodically so large exports stream to the client.
	const flushInterval = 500
	for i, lead := range leads {
		if err := cw.Write(leadRecord(lead)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+2, err)
		}
		if (i+1)%flushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("flush csv: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVTemplate writes the header row only.
func WriteCSVTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// leadRecord renders one lead in CSVHeaders order.
func leadRecord(l Lead) []string {
	return []string{
		l.FullName,
		l.Email,
		l.Phone,
		string(l.City),
		string(l.PropertyType),
		string(l.BHK),
		string(l.Purpose),
		FormatBudgetValue(l.BudgetMin),
		FormatBudgetValue(l.BudgetMax),
		string(l.Timeline),
		string(l.Source),
		l.Notes,
		strings.Join(l.Tags, ","),
		string(l.Status),
	}
}
