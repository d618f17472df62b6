package importer

// validate.go holds the pure field validators: the Israeli national-ID
// checksum, phone normalization, and the date parser. None of these
// touch external state; unparseable dates yield a zero time rather than
// an error, so callers treat empty dates as "missing".

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the day-serial epoch used by the HR export: serial 1 is
// 1899-12-31.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	nonDigitRegex   = regexp.MustCompile(`\D`)
	validPhoneRegex = regexp.MustCompile(`^0\d{8,9}$`)
	allDigitsRegex  = regexp.MustCompile(`^\d+$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// ValidNationalID checks the Israeli national-ID checksum. The id is
// left-padded to 9 digits; each digit is multiplied by 1 (even position)
// or 2 (odd position), products above 9 are reduced by 9, and the sum
// must be divisible by 10.
func ValidNationalID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 9 || !allDigitsRegex.MatchString(id) {
		return false
	}
	id = strings.Repeat("0", 9-len(id)) + id

	sum := 0
	for i, r := range id {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 2
		}
		if d > 9 {
			d -= 9
		}
		sum += d
	}
	return sum%10 == 0
}

// NormalizePhone strips non-digit characters and restores the leading
// zero local numbers lose in spreadsheet round trips. Normalization is
// idempotent; it never invents validity.
func NormalizePhone(s string) string {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if (len(digits) == 8 || len(digits) == 9) && !strings.HasPrefix(digits, "0") {
		digits = "0" + digits
	}
	return digits
}

// ValidPhone reports whether a normalized phone is a local number: a
// leading zero followed by 8 or 9 digits.
func ValidPhone(s string) bool {
	return validPhoneRegex.MatchString(s)
}

// dateLayouts used by the generic fallback, tried in order.
var dateLayouts = []string{
	"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05", "2 Jan 2006",
}

// ParseDate parses the date formats seen in the HR export:
//
//   - a bare numeric string of up to 5 digits, read as an Excel
//     day-serial counted from 1899-12-30 UTC;
//   - D/M/Y with "/", "." or "-" separators, where a 2-digit year is
//     expanded by adding 2000 and a 4-digit token in the day slot means
//     day and year were swapped;
//   - a handful of generic layouts as fallback.
//
// Anything else returns the zero time. Callers treat a zero time as a
// missing date, never as a failure.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if allDigitsRegex.MatchString(s) && len(s) <= 5 {
		serial, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}
		}
		return excelEpoch.AddDate(0, 0, serial)
	}

	if t, ok := parseSeparatedDate(s); ok {
		return t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseSeparatedDate handles D/M/Y with the three accepted separators.
func parseSeparatedDate(s string) (time.Time, bool) {
	sep := ""
	for _, candidate := range []string{"/", ".", "-"} {
		if strings.Count(s, candidate) == 2 {
			sep = candidate
			break
		}
	}
	if sep == "" {
		return time.Time{}, false
	}

	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	dayTok, monthTok, yearTok := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])

	// Year exported into the day slot: swap back.
	if len(dayTok) == 4 && len(yearTok) != 4 {
		dayTok, yearTok = yearTok, dayTok
	}

	day, err1 := strconv.Atoi(dayTok)
	month, err2 := strconv.Atoi(monthTok)
	year, err3 := strconv.Atoi(yearTok)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as 31/02.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// CollapseSpaces trims and collapses internal whitespace runs to single
// spaces.
func CollapseSpaces(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// fieldErrors runs the field validators over a candidate and returns the
// operator-facing messages, parse-time findings included.
func fieldErrors(c *Candidate) []string {
	var errs []string
	errs = append(errs, c.ValidationErrors...)
	if !ValidPhone(c.Phone) {
		errs = append(errs, msgInvalidPhone)
	}
	return errs
}
