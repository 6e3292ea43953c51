package core

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func queryLead(name, email, phone string, city City, pt PropertyType, status Status, timeline Timeline) Lead {
	return Lead{
		ID: uuid.New(),
		ValidatedLead: ValidatedLead{
			FullName:     name,
			Email:        email,
			Phone:        phone,
			City:         city,
			PropertyType: pt,
			Status:       status,
			Timeline:     timeline,
		},
	}
}

func tenLeads() []Lead {
	return []Lead{
		queryLead("Asha Verma", "asha@example.com", "9876500001", CityMohali, PropertyApartment, StatusNew, Timeline0To3),
		queryLead("Ravi Kumar", "ravi@example.com", "9876500002", CityMohali, PropertyVilla, StatusQualified, Timeline3To6),
		queryLead("Neha Singh", "NEHA@Example.com", "9876500003", CityChandigarh, PropertyPlot, StatusNew, Timeline0To3),
		queryLead("Arjun Mehta", "", "9876500004", CityMohali, PropertyOffice, StatusNew, TimelineExploring),
		queryLead("Simran Kaur", "simran@example.com", "9123400005", CityZirakpur, PropertyRetail, StatusContacted, TimelineOver6),
		queryLead("Vikram Rao", "vikram@example.com", "9876500006", CityMohali, PropertyApartment, StatusDropped, Timeline0To3),
		queryLead("Pooja Sharma", "pooja@example.com", "9876500007", CityPanchkula, PropertyApartment, StatusNew, Timeline3To6),
		queryLead("Karan Gill", "karan@example.com", "9876500008", CityMohali, PropertyVilla, StatusNew, TimelineOver6),
		queryLead("Meera Joshi", "meera@example.com", "9876500009", CityOther, PropertyPlot, StatusVisited, Timeline0To3),
		queryLead("Dev Anand", "dev@example.com", "9876500010", CityChandigarh, PropertyApartment, StatusNew, TimelineExploring),
	}
}

func names(leads []Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.FullName
	}
	return out
}

func TestFilterLeads(t *testing.T) {
	tests := []struct {
		name   string
		filter LeadFilter
		want   []string
	}{
		{
			name:   "no filter keeps everything in order",
			filter: LeadFilter{},
			want:   names(tenLeads()),
		},
		{
			name:   "city and status combine with AND",
			filter: LeadFilter{City: "Mohali", Status: "New"},
			want:   []string{"Asha Verma", "Arjun Mehta", "Karan Gill"},
		},
		{
			name:   "all means no constraint",
			filter: LeadFilter{City: "all", PropertyType: "all", Status: "New", Timeline: "all"},
			want:   []string{"Asha Verma", "Neha Singh", "Arjun Mehta", "Pooja Sharma", "Karan Gill", "Dev Anand"},
		},
		{
			name:   "property type",
			filter: LeadFilter{PropertyType: "Plot"},
			want:   []string{"Neha Singh", "Meera Joshi"},
		},
		{
			name:   "timeline",
			filter: LeadFilter{Timeline: ">6m"},
			want:   []string{"Simran Kaur", "Karan Gill"},
		},
		{
			name:   "exact filters are case sensitive",
			filter: LeadFilter{City: "mohali"},
			want:   []string{},
		},
		{
			name:   "search name case insensitive",
			filter: LeadFilter{Search: "SHARMA"},
			want:   []string{"Pooja Sharma"},
		},
		{
			name:   "search email case insensitive",
			filter: LeadFilter{Search: "neha@example"},
			want:   []string{"Neha Singh"},
		},
		{
			name:   "search phone substring",
			filter: LeadFilter{Search: "91234"},
			want:   []string{"Simran Kaur"},
		},
		{
			name:   "search phone suffix shared by several",
			filter: LeadFilter{Search: "0000"},
			want:   []string{"Asha Verma", "Ravi Kumar", "Neha Singh", "Arjun Mehta", "Simran Kaur", "Vikram Rao", "Pooja Sharma", "Karan Gill", "Meera Joshi"},
		},
		{
			name:   "search combined with filter",
			filter: LeadFilter{Search: "example.com", City: "Chandigarh"},
			want:   []string{"Neha Singh", "Dev Anand"},
		},
		{
			name:   "search trims whitespace",
			filter: LeadFilter{Search: "  ravi "},
			want:   []string{"Ravi Kumar"},
		},
		{
			name:   "no match",
			filter: LeadFilter{Search: "nobody"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLeads(tenLeads(), tt.filter)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestPaginate(t *testing.T) {
	leads := make([]Lead, 23)
	for i := range leads {
		leads[i] = queryLead(fmt.Sprintf("Lead %02d", i), "", "9876500000", CityMohali, PropertyPlot, StatusNew, Timeline0To3)
	}

	tests := []struct {
		name      string
		page      int
		wantFirst string
		wantLen   int
		wantPage  int
	}{
		{"first page", 1, "Lead 00", 10, 1},
		{"middle page", 2, "Lead 10", 10, 2},
		{"last partial page", 3, "Lead 20", 3, 3},
		{"past the end", 4, "", 0, 4},
		{"zero clamps to first", 0, "Lead 00", 10, 1},
		{"negative clamps to first", -3, "Lead 00", 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(leads, tt.page, 10)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, 23, p.Total)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, 10, p.PageSize)
			assert.Len(t, p.Items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, p.Items[0].FullName)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 1, 10)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Zero(t, p.TotalPages)
}
