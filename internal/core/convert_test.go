package core

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Mohali", "Mohali"},
		{"whitespace", "  Mohali  ", "Mohali"},
		{"excel formula prefix", `="9876543210"`, "9876543210"},
		{"double quotes", `"Villa"`, "Villa"},
		{"single quotes", "'Villa'", "Villa"},
		{"mismatched quotes kept", `"Villa'`, `"Villa'`},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" FullName ", "email", "Phone", "email"})

	assert.Equal(t, 0, idx["fullname"])
	assert.Equal(t, 1, idx["email"], "first occurrence wins")
	assert.Equal(t, 2, idx["phone"])
}

func TestHeaderIndex_Cell(t *testing.T) {
	idx := MakeHeaderIndex([]string{"fullName", "phone", "notes"})

	v, ok := idx.Cell([]string{"Asha", " 9876543210 ", ""}, "phone")
	assert.True(t, ok)
	assert.Equal(t, "9876543210", v)

	v, ok = idx.Cell([]string{"Asha", "9876543210", ""}, "notes")
	assert.True(t, ok, "present but empty column is not missing")
	assert.Empty(t, v)

	v, ok = idx.Cell([]string{"Asha", "9876543210", ` "VIP" referral, call "after 6" `}, "notes")
	assert.True(t, ok)
	assert.Equal(t, `"VIP" referral, call "after 6"`, v, "quotes in text are kept")

	_, ok = idx.Cell([]string{"Asha"}, "phone")
	assert.False(t, ok, "short row is missing the column")

	_, ok = idx.Cell([]string{"Asha", "9876543210", ""}, "city")
	assert.False(t, ok, "unknown header")
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"hot", []string{"hot"}},
		{"hot, nri ,", []string{"hot", "nri"}},
		{"hot,hot", []string{"hot", "hot"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitTags(tt.input), "splitTags(%q)", tt.input)
	}
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("a,b"), stripBOM([]byte("\xEF\xBB\xBFa,b")))
	assert.Equal(t, []byte("a,b"), stripBOM([]byte("a,b")))
}

func TestSanitizeUTF8(t *testing.T) {
	valid := []byte("Chandīgarh")
	assert.Equal(t, valid, sanitizeUTF8(valid))

	got := sanitizeUTF8([]byte{'a', 0xff, 'b'})
	assert.Equal(t, "a�b", string(got))
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow(nil))
	assert.True(t, isEmptyRow([]string{"", "  ", "\t"}))
	assert.False(t, isEmptyRow([]string{"", "x"}))
}

func TestPgConversions(t *testing.T) {
	assert.Equal(t, pgtype.Text{}, ToPgText(""))
	assert.Equal(t, pgtype.Text{String: "a", Valid: true}, ToPgText("a"))
	assert.Equal(t, "", PgTextToString(pgtype.Text{}))
	assert.Equal(t, "a", PgTextToString(pgtype.Text{String: "a", Valid: true}))

	assert.Equal(t, pgtype.Int8{}, ToPgInt8(nil))
	n := int64(1500000)
	assert.Equal(t, pgtype.Int8{Int64: n, Valid: true}, ToPgInt8(&n))
	assert.Nil(t, PgInt8ToPtr(pgtype.Int8{}))
	assert.Equal(t, n, *PgInt8ToPtr(pgtype.Int8{Int64: n, Valid: true}))
}
