package core

import "strings"

// filterAll is the filter value that places no constraint.
const filterAll = "all"

// FilterLeads returns the leads matching every active part of f, in their
// original order.
//
// Search matches case-insensitively against full name and email, and as a
// plain substring against the phone digits. City, property type, status and
// timeline match exactly; an empty value or "all" matches everything.
func FilterLeads(leads []Lead, f LeadFilter) []Lead {
	search := strings.TrimSpace(f.Search)
	lowered := strings.ToLower(search)

	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if !matchesExact(string(l.City), f.City) ||
			!matchesExact(string(l.PropertyType), f.PropertyType) ||
			!matchesExact(string(l.Status), f.Status) ||
			!matchesExact(string(l.Timeline), f.Timeline) {
			continue
		}
		if search != "" && !matchesSearch(l, search, lowered) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesExact(value, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, filterAll) {
		return true
	}
	return value == want
}

func matchesSearch(l Lead, raw, lowered string) bool {
	return strings.Contains(strings.ToLower(l.FullName), lowered) ||
		strings.Contains(strings.ToLower(l.Email), lowered) ||
		strings.Contains(l.Phone, raw)
}

// Paginate returns page (1-based) of leads. A page below 1 is treated as
// page 1; a page past the end has no items.
func Paginate(leads []Lead, page, pageSize int) LeadPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(leads)
	totalPages := (total + pageSize - 1) / pageSize

	result := LeadPage{
		Items:      []Lead{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := min(start+pageSize, total)
	result.Items = leads[start:end]
	return result
}
