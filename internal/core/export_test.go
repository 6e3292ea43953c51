package core

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, raw RawLead) ValidatedLead {
	t.Helper()
	v, err := Validate(raw)
	require.NoError(t, err)
	return v
}

func leadFrom(t *testing.T, raw RawLead) Lead {
	t.Helper()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return Lead{
		ID:            uuid.New(),
		ValidatedLead: mustValidate(t, raw),
		OwnerID:       "agent-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestWriteLeadsCSV_ColumnOrder(t *testing.T) {
	lead := leadFrom(t, validRaw())

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, []Lead{lead}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, CSVHeaders, records[0])
	assert.Equal(t, []string{
		"Asha Verma", "asha@example.com", "9876543210", "Mohali", "Apartment", "2", "Buy",
		"1000000", "2000000", "0-3m", "Website", "Prefers east facing", "hot,nri", "New",
	}, records[1])
}

func TestWriteLeadsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, nil))
	assert.Equal(t, "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status\n", buf.String())
}

func TestWriteCSVTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSVTemplate(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{CSVHeaders}, records)
}

func TestExportImportRoundTrip(t *testing.T) {
	plot := rawWithPhone(2)
	plot.PropertyType = "Plot"
	plot.BHK = ""
	plot.Email = ""
	plot.BudgetMin = ""
	plot.Status = "Qualified"
	plot.Tags = nil
	plot.Notes = "Wants \"corner\" plot, near park\nCall after 6"

	villa := rawWithPhone(3)
	villa.PropertyType = "Villa"
	villa.BHK = "Studio"
	villa.Status = "Contacted"
	villa.Purpose = "Rent"
	villa.Timeline = ">6m"
	villa.Source = "Walk-in"

	leads := []Lead{
		leadFrom(t, rawWithPhone(1)),
		leadFrom(t, plot),
		leadFrom(t, villa),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, leads))

	plan, err := PlanImport(&buf, DefaultMaxImportRows)
	require.NoError(t, err)
	require.Empty(t, plan.Errors)
	require.Len(t, plan.Leads, len(leads))

	for i, got := range plan.Leads {
		assert.Equal(t, leads[i].ValidatedLead, got, "lead %d", i)
	}
}

func TestExportImportRoundTrip_QuotedText(t *testing.T) {
	raw := rawWithPhone(4)
	raw.FullName = `'Sonu' Kumar'`
	raw.Notes = `"VIP" referral, call "after 6"`
	raw.Tags = []string{`"hot"`, "nri"}
	lead := leadFrom(t, raw)

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, []Lead{lead}))

	plan, err := PlanImport(&buf, DefaultMaxImportRows)
	require.NoError(t, err)
	require.Empty(t, plan.Errors)
	require.Len(t, plan.Leads, 1)

	got := plan.Leads[0]
	assert.Equal(t, `'Sonu' Kumar'`, got.FullName)
	assert.Equal(t, `"VIP" referral, call "after 6"`, got.Notes)
	assert.Equal(t, []string{`"hot"`, "nri"}, got.Tags)
	assert.Equal(t, lead.ValidatedLead, got)
}
