package core

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// diffField reads one lead field in the form recorded in history.
type diffField struct {
	name string
	get  func(ValidatedLead) any
}

// diffFields lists every user-editable field in CSV column order.
var diffFields = []diffField{
	{"fullName", func(l ValidatedLead) any { return l.FullName }},
	{"email", func(l ValidatedLead) any { return l.Email }},
	{"phone", func(l ValidatedLead) any { return l.Phone }},
	{"city", func(l ValidatedLead) any { return string(l.City) }},
	{"propertyType", func(l ValidatedLead) any { return string(l.PropertyType) }},
	{"bhk", func(l ValidatedLead) any { return string(l.BHK) }},
	{"purpose", func(l ValidatedLead) any { return string(l.Purpose) }},
	{"budgetMin", func(l ValidatedLead) any { return budgetValue(l.BudgetMin) }},
	{"budgetMax", func(l ValidatedLead) any { return budgetValue(l.BudgetMax) }},
	{"timeline", func(l ValidatedLead) any { return string(l.Timeline) }},
	{"source", func(l ValidatedLead) any { return string(l.Source) }},
	{"notes", func(l ValidatedLead) any { return l.Notes }},
	{"tags", func(l ValidatedLead) any { return tagsValue(l.Tags) }},
	{"status", func(l ValidatedLead) any { return string(l.Status) }},
}

// DiffLeads compares two snapshots of a lead and returns one {old, new}
// pair per field whose value changed. Unchanged fields are omitted.
func DiffLeads(before, after ValidatedLead) HistoryDiff {
	changes := make(map[string]FieldChange)
	for _, f := range diffFields {
		oldVal, newVal := f.get(before), f.get(after)
		if reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		changes[f.name] = FieldChange{Old: oldVal, New: newVal}
	}
	return HistoryDiff{Changes: changes}
}

// CreatedDiff is the diff recorded when a lead is created.
func CreatedDiff() HistoryDiff {
	return HistoryDiff{Created: true}
}

func newHistoryEntry(leadID uuid.UUID, actor string, at time.Time, diff HistoryDiff) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New(),
		LeadID:    leadID,
		ChangedAt: at,
		ChangedBy: actor,
		Diff:      diff,
	}
}

func budgetValue(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func tagsValue(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
