package importer

import (
	"testing"
	"time"
)

func TestValidNationalID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"123456782", true},
		{"123456789", false}, // checksum 47
		{"000000000", true},
		{"3112", false},
		{"0003112", false},
		{"1234567890", false}, // longer than 9 digits
		{"12345678a", false},
		{"", false},
		{" 123456782 ", true}, // tolerates surrounding whitespace
	}

	for _, tt := range tests {
		if got := ValidNationalID(tt.id); got != tt.valid {
			t.Errorf("ValidNationalID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestValidNationalID_LeadingZeros(t *testing.T) {
	// Validity must be decidable from the digits alone, independent of
	// how many leading zeros the spreadsheet kept.
	if !ValidNationalID("18") {
		t.Error("expected short id 18 to pass after zero padding")
	}
	if !ValidNationalID("000000018") {
		t.Error("expected zero-padded id to pass like its short form")
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"501234567", "0501234567"},  // 9 digits, missing leading zero
		{"0501234567", "0501234567"}, // already normalized
		{"50-123-4567", "0501234567"},
		{"+972 50 123 4567", "972501234567"}, // 12 digits, left as-is
		{"12345", "12345"},
		{"", ""},
		{"31234567", "031234567"}, // 8 digits
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("501234567")
	twice := NormalizePhone(once)
	if once != twice {
		t.Errorf("normalization not idempotent: %q -> %q", once, twice)
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"0501234567", true},
		{"031234567", true},
		{"12345", false},
		{"972501234567", false},
		{"", false},
		{"0501234567890", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.valid {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.valid)
		}
	}
}

func TestParseDate_ExcelSerial(t *testing.T) {
	got := ParseDate("1")
	want := time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("serial 1 = %v, want %v", got, want)
	}

	// 2004-02-15 is serial 38032.
	got = ParseDate("38032")
	want = time.Date(2004, time.February, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("serial 38032 = %v, want %v", got, want)
	}
}

func TestParseDate_Separated(t *testing.T) {
	want := time.Date(2004, time.February, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"15/02/2004", "15.02.2004", "15-02-2004", "15/2/2004"} {
		if got := ParseDate(in); !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDate_TwoDigitYear(t *testing.T) {
	got := ParseDate("15/02/04")
	want := time.Date(2004, time.February, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(15/02/04) = %v, want %v", got, want)
	}
}

func TestParseDate_SwappedYearSlot(t *testing.T) {
	// Some exports flip the row into Y/M/D; a 4-digit token in the day
	// slot marks the swap.
	got := ParseDate("2004/02/15")
	want := time.Date(2004, time.February, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(2004/02/15) = %v, want %v", got, want)
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	for _, in := range []string{"", "not a date", "99/99/2020", "31/02/2021", "123456"} {
		if got := ParseDate(in); !got.IsZero() {
			t.Errorf("ParseDate(%q) = %v, want zero time", in, got)
		}
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  senior \t instructor  "); got != "senior instructor" {
		t.Errorf("CollapseSpaces = %q", got)
	}
}
