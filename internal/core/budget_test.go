package core

import "testing"

func ptr(v int64) *int64 { return &v }

func TestFormatBudget(t *testing.T) {
	tests := []struct {
		name     string
		min, max *int64
		want     string
	}{
		{"both set", ptr(1_000_000), ptr(2_000_000), "₹10.0L - ₹20.0L"},
		{"crore", ptr(5_000_000), ptr(15_000_000), "₹50.0L - ₹1.5Cr"},
		{"min only", ptr(2_500_000), nil, "₹25.0L+"},
		{"max only", nil, ptr(80_000), "Up to ₹80,000"},
		{"zero treated as unset", ptr(0), ptr(0), "Not specified"},
		{"unset", nil, nil, "Not specified"},
		{"small", ptr(999), nil, "₹999+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBudget(tt.min, tt.max); got != tt.want {
				t.Errorf("FormatBudget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBudgetValue(t *testing.T) {
	if got := FormatBudgetValue(nil); got != "" {
		t.Errorf("FormatBudgetValue(nil) = %q, want empty", got)
	}
	if got := FormatBudgetValue(ptr(1500000)); got != "1500000" {
		t.Errorf("FormatBudgetValue() = %q, want 1500000", got)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		45000:   "45,000",
		1234567: "1,234,567",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%d) = %q, want %q", in, got, want)
		}
	}
}
