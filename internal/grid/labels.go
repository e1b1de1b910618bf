package grid

import (
	"fmt"
	"strconv"
)

// Labeler returns the label of the square at a zero based index.
type Labeler func(index int) string

// Alphabetic labels squares A..Z, AA..AZ, BA.. like spreadsheet columns.
func Alphabetic(index int) string {
	label := ""
	for index != -1 {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
	}

	return label
}

// Numeric labels squares 1, 2, 3...
func Numeric(index int) string {
	return strconv.Itoa(index + 1)
}

// LabelScheme selects the labelers used for columns and rows.
type LabelScheme string

const (
	// AlphaNumeric labels columns with letters and rows with numbers.
	AlphaNumeric LabelScheme = "alpha-numeric"
	// NumericAlpha labels columns with numbers and rows with letters.
	NumericAlpha LabelScheme = "numeric-alpha"
)

// Labelers returns the column and row labelers of the scheme. An empty
// scheme means AlphaNumeric.
func (s LabelScheme) Labelers() (columns, rows Labeler, err error) {
	switch s {
	case AlphaNumeric, "":
		return Alphabetic, Numeric, nil
	case NumericAlpha:
		return Numeric, Alphabetic, nil
	}

	return nil, nil, fmt.Errorf("unknown grid label scheme %q", string(s))
}
