package locations

import (
	"regexp"
	"strconv"
	"strings"

	"gridstock/infrastructure/apperr"
)

var cellRefPattern = regexp.MustCompile(`^[Rr](\d+)[Cc](\d+)$`)

// ParseCellRef parses "R<row>C<column>", case-insensitive and trimmed.
func ParseCellRef(ref string) (row, column int, err error) {
	ref = strings.TrimSpace(ref)
	m := cellRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, apperr.Validation("location", "%q is not a valid location, expected R<row>C<column>", ref)
	}
	row, rowErr := strconv.Atoi(m[1])
	column, colErr := strconv.Atoi(m[2])
	if rowErr != nil || colErr != nil || row < 1 || column < 1 {
		return 0, 0, apperr.Validation("location", "%q is out of range", ref)
	}
	return row, column, nil
}
