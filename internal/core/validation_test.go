package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawLead {
	return RawLead{
		FullName:     "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		City:         "Mohali",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		BudgetMin:    "1000000",
		BudgetMax:    "2000000",
		Timeline:     "0-3m",
		Source:       "Website",
		Notes:        "Prefers east facing",
		Tags:         []string{"hot", "nri"},
	}
}

// fieldErrors returns the ValidationErrors in err, failing the test if err
// is not one.
func fieldErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var vErrs ValidationErrors
	require.True(t, errors.As(err, &vErrs), "want ValidationErrors, got %v", err)
	return vErrs
}

func fieldNames(errs ValidationErrors) []string {
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

func TestValidate_ValidLead(t *testing.T) {
	lead, err := Validate(validRaw())
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", lead.FullName)
	assert.Equal(t, CityMohali, lead.City)
	assert.Equal(t, BHK2, lead.BHK)
	assert.Equal(t, StatusNew, lead.Status, "status defaults to New")
	require.NotNil(t, lead.BudgetMin)
	assert.Equal(t, int64(1000000), *lead.BudgetMin)
	assert.Equal(t, []string{"hot", "nri"}, lead.Tags)
}

func TestValidate_TrimsInput(t *testing.T) {
	raw := validRaw()
	raw.FullName = "  Asha Verma "
	raw.Phone = " 9876543210"
	raw.Tags = []string{" hot ", "", "  "}

	lead, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", lead.FullName)
	assert.Equal(t, "9876543210", lead.Phone)
	assert.Equal(t, []string{"hot"}, lead.Tags)
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RawLead)
		wantField string
		wantMsg   string
	}{
		{"missing name", func(r *RawLead) { r.FullName = "" }, "fullName", "is required"},
		{"short name", func(r *RawLead) { r.FullName = "A" }, "fullName", "must be at least 2 characters"},
		{"long name", func(r *RawLead) { r.FullName = strings.Repeat("a", 81) }, "fullName", "must be at most 80 characters"},
		{"bad email", func(r *RawLead) { r.Email = "not-an-email" }, "email", "must be a valid email address"},
		{"missing phone", func(r *RawLead) { r.Phone = "" }, "phone", "is required"},
		{"short phone", func(r *RawLead) { r.Phone = "987654321" }, "phone", "must be 10 to 15 digits"},
		{"phone with symbols", func(r *RawLead) { r.Phone = "+919876543210" }, "phone", "must be 10 to 15 digits"},
		{"unknown city", func(r *RawLead) { r.City = "Delhi" }, "city", "must be one of: Chandigarh, Mohali, Zirakpur, Panchkula, Other"},
		{"unknown property type", func(r *RawLead) { r.PropertyType = "Farmhouse" }, "propertyType", "must be one of: Apartment, Villa, Plot, Office, Retail"},
		{"unknown bhk", func(r *RawLead) { r.BHK = "5" }, "bhk", "must be one of: 1, 2, 3, 4, Studio"},
		{"missing purpose", func(r *RawLead) { r.Purpose = "" }, "purpose", "is required"},
		{"malformed budget", func(r *RawLead) { r.BudgetMin = "12abc" }, "budgetMin", "must be a non-negative whole number"},
		{"negative budget", func(r *RawLead) { r.BudgetMax = "-5" }, "budgetMax", "must be a non-negative whole number"},
		{"unknown timeline", func(r *RawLead) { r.Timeline = "soon" }, "timeline", "must be one of: 0-3m, 3-6m, >6m, Exploring"},
		{"unknown source", func(r *RawLead) { r.Source = "Billboard" }, "source", "must be one of: Website, Referral, Walk-in, Call, Other"},
		{"unknown status", func(r *RawLead) { r.Status = "Closed" }, "status", "must be one of: New, Qualified, Contacted, Visited, Negotiation, Converted, Dropped"},
		{"long notes", func(r *RawLead) { r.Notes = strings.Repeat("n", 1001) }, "notes", "must be at most 1000 characters"},
		{"duplicate tags", func(r *RawLead) { r.Tags = []string{"hot", "hot"} }, "tags", "must not contain duplicates"},
		{"tag with comma", func(r *RawLead) { r.Tags = []string{"a,b"} }, "tags[0]", "must not contain commas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			lead, err := Validate(raw)
			assert.Equal(t, ValidatedLead{}, lead, "no lead alongside errors")

			errs := fieldErrors(t, err)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantMsg, errs[0].Message)
		})
	}
}

func TestValidate_BHKRequiredForResidential(t *testing.T) {
	for _, pt := range []string{"Apartment", "Villa"} {
		t.Run(pt, func(t *testing.T) {
			raw := validRaw()
			raw.PropertyType = pt
			raw.BHK = ""

			_, err := Validate(raw)
			errs := fieldErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, "bhk", errs[0].Field)
			assert.Equal(t, "is required for Apartment and Villa", errs[0].Message)
		})
	}
}

func TestValidate_BHKOptionalForNonResidential(t *testing.T) {
	for _, pt := range []string{"Plot", "Office", "Retail"} {
		t.Run(pt, func(t *testing.T) {
			raw := validRaw()
			raw.PropertyType = pt
			raw.BHK = ""

			lead, err := Validate(raw)
			require.NoError(t, err)
			assert.Empty(t, lead.BHK)
		})
	}
}

func TestValidate_BHKDroppedForNonResidential(t *testing.T) {
	raw := validRaw()
	raw.PropertyType = "Plot"
	raw.BHK = "3"

	lead, err := Validate(raw)
	require.NoError(t, err)
	assert.Empty(t, lead.BHK)
}

func TestValidate_BudgetOrder(t *testing.T) {
	raw := validRaw()
	raw.BudgetMin = "2000000"
	raw.BudgetMax = "1000000"

	_, err := Validate(raw)
	errs := fieldErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "budgetMax", errs[0].Field)
	assert.Equal(t, "must be greater than or equal to budgetMin", errs[0].Message)

	raw.BudgetMin = "1000000"
	raw.BudgetMax = "2000000"
	_, err = Validate(raw)
	assert.NoError(t, err)

	raw.BudgetMax = "1000000"
	_, err = Validate(raw)
	assert.NoError(t, err, "equal bounds are allowed")
}

func TestValidate_EmptyBudgetIsUnset(t *testing.T) {
	raw := validRaw()
	raw.BudgetMin = ""
	raw.BudgetMax = "  "

	lead, err := Validate(raw)
	require.NoError(t, err)
	assert.Nil(t, lead.BudgetMin)
	assert.Nil(t, lead.BudgetMax)
}

func TestValidate_ZeroBudgetIsSet(t *testing.T) {
	raw := validRaw()
	raw.BudgetMin = "0"

	lead, err := Validate(raw)
	require.NoError(t, err)
	require.NotNil(t, lead.BudgetMin)
	assert.Equal(t, int64(0), *lead.BudgetMin)
}

func TestValidate_CrossFieldSkippedWhenStructurallyInvalid(t *testing.T) {
	raw := validRaw()
	raw.FullName = ""
	raw.BHK = ""
	raw.BudgetMin = "2000000"
	raw.BudgetMax = "1000000"

	_, err := Validate(raw)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{"fullName"}, fieldNames(errs))
}

func TestValidate_CollectsAllStructuralErrors(t *testing.T) {
	raw := validRaw()
	raw.FullName = ""
	raw.Phone = "12"
	raw.City = "Delhi"

	_, err := Validate(raw)
	errs := fieldErrors(t, err)
	assert.ElementsMatch(t, []string{"fullName", "phone", "city"}, fieldNames(errs))
	assert.Contains(t, err.Error(), "validation failed: ")
}

func TestValidate_BothCrossFieldRules(t *testing.T) {
	raw := validRaw()
	raw.BHK = ""
	raw.BudgetMin = "5"
	raw.BudgetMax = "1"

	_, err := Validate(raw)
	errs := fieldErrors(t, err)
	assert.Equal(t, []string{"bhk", "budgetMax"}, fieldNames(errs), "rules run in pipeline order")
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	raw := validRaw()
	raw.Email = ""
	raw.Notes = ""
	raw.Tags = nil
	raw.BudgetMin = ""
	raw.BudgetMax = ""

	_, err := Validate(raw)
	assert.NoError(t, err)
}

func TestNumberInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  NumberInput
	}{
		{`"1500000"`, "1500000"},
		{`1500000`, "1500000"},
		{`null`, ""},
		{`""`, ""},
		{`"abc"`, "abc"},
	}
	for _, tt := range tests {
		var n NumberInput
		require.NoError(t, n.UnmarshalJSON([]byte(tt.input)))
		assert.Equal(t, tt.want, n, "input %s", tt.input)
	}
}

func TestLeadPatch_Apply(t *testing.T) {
	raw := validRaw()
	name := "Asha V"
	empty := ""
	budget := NumberInput("")

	got := LeadPatch{
		FullName:  &name,
		Email:     &empty,
		BudgetMax: &budget,
		Tags:      []string{},
	}.Apply(raw)

	assert.Equal(t, "Asha V", got.FullName)
	assert.Empty(t, got.Email)
	assert.Empty(t, string(got.BudgetMax))
	assert.Empty(t, got.Tags)
	assert.Equal(t, raw.Phone, got.Phone, "unset fields unchanged")
	assert.Equal(t, raw.BudgetMin, got.BudgetMin)
}

func TestValidatedLead_RawRevalidates(t *testing.T) {
	lead, err := Validate(validRaw())
	require.NoError(t, err)

	raw := lead.Raw()
	assert.Equal(t, NumberInput("1000000"), raw.BudgetMin)
	assert.Equal(t, NumberInput("2000000"), raw.BudgetMax)

	again, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, lead, again)

	unset := validRaw()
	unset.BudgetMin = ""
	unset.BudgetMax = ""
	lead, err = Validate(unset)
	require.NoError(t, err)
	assert.Empty(t, lead.Raw().BudgetMin)
	assert.Empty(t, lead.Raw().BudgetMax)
}

func TestValidate_LongTagAccepted(t *testing.T) {
	raw := validRaw()
	raw.Tags = []string{strings.Repeat("t", 120)}

	lead, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, raw.Tags, lead.Tags)
}
