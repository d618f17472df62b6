package importer

import "strings"

// form101Truthy are the cell values the HR export uses for a present
// form 101.
var form101Truthy = []string{"יש", "כן"}

// ParseRow turns one raw sheet row into a Candidate. rowIndex is the
// 0-based position within the data rows and is kept for the audit
// report.
//
// National id, first name and last name are required; a row missing any
// of them fails with MissingRequiredFieldError and never enters the
// pipeline. A checksum failure on the id is not fatal: it is recorded as
// a validation error and the classifier routes the candidate later.
// The class symbol is copied through unparsed; resolution needs the
// class directory and belongs to the classifier.
func ParseRow(row []string, rowIndex int) (*Candidate, error) {
	id := cell(row, ColNationalID)
	firstName := cell(row, ColFirstName)
	lastName := cell(row, ColLastName)

	switch {
	case id == "":
		return nil, &MissingRequiredFieldError{Row: rowIndex, Field: "national id"}
	case firstName == "":
		return nil, &MissingRequiredFieldError{Row: rowIndex, Field: "first name"}
	case lastName == "":
		return nil, &MissingRequiredFieldError{Row: rowIndex, Field: "last name"}
	}

	c := &Candidate{
		Row:           rowIndex,
		NationalID:    id,
		FirstName:     firstName,
		LastName:      lastName,
		Phone:         NormalizePhone(cell(row, ColPhone)),
		Email:         cell(row, ColEmail),
		Status:        cell(row, ColStatus),
		RoleName:      CollapseSpaces(cell(row, ColRoleName)),
		StartDate:     ParseDate(cell(row, ColStartDate)),
		EndDate:       ParseDate(cell(row, ColEndDate)),
		Is101:         isForm101(cell(row, ColForm101)),
		WorkingSymbol: cell(row, ColInstitutionSymbol),
	}

	if !ValidNationalID(id) {
		c.ValidationErrors = append(c.ValidationErrors, msgInvalidID)
	}

	return c, nil
}

// cell returns the trimmed value at a fixed column offset, tolerating
// short rows.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isForm101(v string) bool {
	for _, t := range form101Truthy {
		if v == t {
			return true
		}
	}
	return false
}
