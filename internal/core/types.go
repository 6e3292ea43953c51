// Package core provides the business logic for buyer-lead intake.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// City is the locality a buyer is looking in.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

// PropertyType is the kind of property a buyer wants.
type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

// Residential reports whether the property type needs a BHK size.
func (p PropertyType) Residential() bool {
	return p == PropertyApartment || p == PropertyVilla
}

// BHK is the bedroom-count category of a residential unit.
type BHK string

const (
	BHK1      BHK = "1"
	BHK2      BHK = "2"
	BHK3      BHK = "3"
	BHK4      BHK = "4"
	BHKStudio BHK = "Studio"
)

// Purpose is why the buyer wants the property.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

// Timeline is how soon the buyer intends to act.
type Timeline string

const (
	Timeline0To3      Timeline = "0-3m"
	Timeline3To6      Timeline = "3-6m"
	TimelineOver6     Timeline = ">6m"
	TimelineExploring Timeline = "Exploring"
)

// Source is where the lead came from.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

// Status is the lead's position in the sales pipeline.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

// Enumerations in display order. Used by validation tags, filters and tests.
var (
	Cities        = []City{CityChandigarh, CityMohali, CityZirakpur, CityPanchkula, CityOther}
	PropertyTypes = []PropertyType{PropertyApartment, PropertyVilla, PropertyPlot, PropertyOffice, PropertyRetail}
	BHKSizes      = []BHK{BHK1, BHK2, BHK3, BHK4, BHKStudio}
	Purposes      = []Purpose{PurposeBuy, PurposeRent}
	Timelines     = []Timeline{Timeline0To3, Timeline3To6, TimelineOver6, TimelineExploring}
	Sources       = []Source{SourceWebsite, SourceReferral, SourceWalkIn, SourceCall, SourceOther}
	Statuses      = []Status{StatusNew, StatusQualified, StatusContacted, StatusVisited, StatusNegotiation, StatusConverted, StatusDropped}
)

// ImportableStatuses are the statuses a CSV import may set.
var ImportableStatuses = []Status{StatusNew, StatusQualified, StatusContacted}

// ValidatedLead holds every user-editable lead field after validation.
// Budgets are nil when unset.
type ValidatedLead struct {
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          BHK          `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int64       `json:"budgetMin"`
	BudgetMax    *int64       `json:"budgetMax"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Status       Status       `json:"status"`
	Notes        string       `json:"notes"`
	Tags         []string     `json:"tags"`
}

// Lead is a prospective property buyer.
type Lead struct {
	ID uuid.UUID `json:"id"`
	ValidatedLead
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Version is the optimistic-concurrency token for the lead: its update
// timestamp rendered with full precision.
func (l Lead) Version() string {
	return FormatVersion(l.UpdatedAt)
}

// FormatVersion renders an update timestamp as a version token.
func FormatVersion(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseVersion parses a version token produced by FormatVersion.
func ParseVersion(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidVersion, s, err)
	}
	return t, nil
}

// Raw converts the lead back into loosely-typed input, the form that
// validation and patches operate on.
func (l ValidatedLead) Raw() RawLead {
	tags := make([]string, len(l.Tags))
	copy(tags, l.Tags)
	return RawLead{
		FullName:     l.FullName,
		Email:        l.Email,
		Phone:        l.Phone,
		City:         string(l.City),
		PropertyType: string(l.PropertyType),
		BHK:          string(l.BHK),
		Purpose:      string(l.Purpose),
		BudgetMin:    NumberInput(FormatBudgetValue(l.BudgetMin)),
		BudgetMax:    NumberInput(FormatBudgetValue(l.BudgetMax)),
		Timeline:     string(l.Timeline),
		Source:       string(l.Source),
		Status:       string(l.Status),
		Notes:        l.Notes,
		Tags:         tags,
	}
}

// NumberInput is a budget value as submitted. It accepts JSON strings and
// numbers; null and "" both mean unset.
type NumberInput string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberInput(s)
	default:
		*n = NumberInput(data)
	}
	return nil
}

// RawLead carries lead fields as loosely-typed input from a form, a JSON
// body or a CSV row. Validate turns it into a ValidatedLead.
type RawLead struct {
	FullName     string      `json:"fullName" validate:"required,min=2,max=80"`
	Email        string      `json:"email" validate:"omitempty,email"`
	Phone        string      `json:"phone" validate:"required,phonedigits"`
	City         string      `json:"city" validate:"required,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType string      `json:"propertyType" validate:"required,oneof=Apartment Villa Plot Office Retail"`
	BHK          string      `json:"bhk" validate:"omitempty,oneof=1 2 3 4 Studio"`
	Purpose      string      `json:"purpose" validate:"required,oneof=Buy Rent"`
	BudgetMin    NumberInput `json:"budgetMin" validate:"omitempty,budget"`
	BudgetMax    NumberInput `json:"budgetMax" validate:"omitempty,budget"`
	Timeline     string      `json:"timeline" validate:"required,oneof=0-3m 3-6m >6m Exploring"`
	Source       string      `json:"source" validate:"required,oneof=Website Referral Walk-in Call Other"`
	Status       string      `json:"status" validate:"omitempty,oneof=New Qualified Contacted Visited Negotiation Converted Dropped"`
	Notes        string      `json:"notes" validate:"max=1000"`
	Tags         []string    `json:"tags" validate:"unique,dive,excludes=0x2C"`
}

// LeadPatch is a partial update. Nil fields are left unchanged; an empty
// string clears an optional field. A non-nil empty Tags slice clears tags.
type LeadPatch struct {
	FullName     *string      `json:"fullName,omitempty"`
	Email        *string      `json:"email,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	City         *string      `json:"city,omitempty"`
	PropertyType *string      `json:"propertyType,omitempty"`
	BHK          *string      `json:"bhk,omitempty"`
	Purpose      *string      `json:"purpose,omitempty"`
	BudgetMin    *NumberInput `json:"budgetMin,omitempty"`
	BudgetMax    *NumberInput `json:"budgetMax,omitempty"`
	Timeline     *string      `json:"timeline,omitempty"`
	Source       *string      `json:"source,omitempty"`
	Status       *string      `json:"status,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

// Apply overlays the patch on raw and returns the result.
func (p LeadPatch) Apply(raw RawLead) RawLead {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&raw.FullName, p.FullName)
	set(&raw.Email, p.Email)
	set(&raw.Phone, p.Phone)
	set(&raw.City, p.City)
	set(&raw.PropertyType, p.PropertyType)
	set(&raw.BHK, p.BHK)
	set(&raw.Purpose, p.Purpose)
	set(&raw.Timeline, p.Timeline)
	set(&raw.Source, p.Source)
	set(&raw.Status, p.Status)
	set(&raw.Notes, p.Notes)
	if p.BudgetMin != nil {
		raw.BudgetMin = *p.BudgetMin
	}
	if p.BudgetMax != nil {
		raw.BudgetMax = *p.BudgetMax
	}
	if p.Tags != nil {
		raw.Tags = p.Tags
	}
	return raw
}

// FieldChange is one field's value before and after a mutation.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// HistoryDiff is the payload of a history entry: either a creation marker
// or the minimal set of changed fields keyed by their JSON name.
type HistoryDiff struct {
	Created bool
	Changes map[string]FieldChange
}

// Empty reports whether the diff records nothing.
func (d HistoryDiff) Empty() bool {
	return !d.Created && len(d.Changes) == 0
}

// MarshalJSON renders {"action":"created"} or {field: {old, new}}.
func (d HistoryDiff) MarshalJSON() ([]byte, error) {
	if d.Created {
		return []byte(`{"action":"created"}`), nil
	}
	if d.Changes == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Changes)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *HistoryDiff) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if action, ok := probe["action"]; ok && string(action) == `"created"` {
		*d = HistoryDiff{Created: true}
		return nil
	}
	changes := make(map[string]FieldChange, len(probe))
	for field, raw := range probe {
		var fc FieldChange
		if err := json.Unmarshal(raw, &fc); err != nil {
			return fmt.Errorf("diff field %s: %w", field, err)
		}
		changes[field] = fc
	}
	*d = HistoryDiff{Changes: changes}
	return nil
}

// HistoryEntry is an immutable audit record for one lead mutation.
type HistoryEntry struct {
	ID        uuid.UUID   `json:"id"`
	LeadID    uuid.UUID   `json:"leadId"`
	ChangedAt time.Time   `json:"changedAt"`
	ChangedBy string      `json:"changedBy"`
	Diff      HistoryDiff `json:"diff"`
}

// LeadFilter selects leads for listing and export. Empty or "all" fields
// place no constraint.
type LeadFilter struct {
	Search       string
	City         string
	PropertyType string
	Status       string
	Timeline     string
}

// LeadPage is one page of a filtered lead listing.
type LeadPage struct {
	Items      []Lead `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// RowError is a rejected CSV row. Row 0 marks a batch-level error.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Row == 0 {
		return e.Message
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ImportResult reports the outcome of a CSV import.
type ImportResult struct {
	Inserted      int           `json:"inserted"`
	Rejected      int           `json:"rejected"`
	Errors        []RowError    `json:"errors"`
	BatchRejected bool          `json:"batchRejected"`
	Duration      time.Duration `json:"-"`
}
