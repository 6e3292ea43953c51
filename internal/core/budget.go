package core

import (
	"fmt"
	"strconv"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

// FormatBudgetValue renders a budget for CSV and patches; nil is "".
func FormatBudgetValue(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// FormatBudget renders a budget range for display using lakh and crore
// units, e.g. "₹10.0L - ₹1.5Cr". A zero bound is treated as unset.
func FormatBudget(minBudget, maxBudget *int64) string {
	lo, hi := int64(0), int64(0)
	if minBudget != nil {
		lo = *minBudget
	}
	if maxBudget != nil {
		hi = *maxBudget
	}

	switch {
	case lo > 0 && hi > 0:
		return "₹" + formatAmount(lo) + " - ₹" + formatAmount(hi)
	case lo > 0:
		return "₹" + formatAmount(lo) + "+"
	case hi > 0:
		return "Up to ₹" + formatAmount(hi)
	default:
		return "Not specified"
	}
}

func formatAmount(amount int64) string {
	switch {
	case amount >= crore:
		return fmt.Sprintf("%.1fCr", float64(amount)/crore)
	case amount >= lakh:
		return fmt.Sprintf("%.1fL", float64(amount)/lakh)
	default:
		return groupThousands(amount)
	}
}

// groupThousands inserts comma separators: 45000 -> "45,000".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
