// Package expander reconstructs true transaction granularity from ZKB's
// grouped statement rows. ZKB nests several child transactions under a
// single summary row: the summary carries the date and a booking text ending
// in "(N)", the children follow with empty date fields.
package expander

import (
	"regexp"
	"strings"

	"finpipe/bank-csv/internal/dateutils"
	"finpipe/bank-csv/internal/models"
)

// parentPattern matches summary rows: booking text ending with a
// parenthesized positive child count, e.g. "Debit Mobile Banking (3)".
var parentPattern = regexp.MustCompile(`\([1-9]\d*\)\s*$`)

// Result reports what Expand did, for the pipeline's progress report.
type Result struct {
	Rows           []models.RawStatementRow
	ChildrenFound  int
	ParentsRemoved int
}

// Expand flattens grouped rows: every row with a valid non-empty date
// becomes the current date context, rows with an empty date inherit it, and
// summary rows are dropped unconditionally. A non-empty date that does not
// parse (a repeated header line, say) never becomes context. The
// parenthesized count is trusted, never validated; adjacency determines
// parentage. A leading child row with no prior context keeps its empty date
// and propagates as a parse failure downstream, not an error.
func Expand(rows []models.RawStatementRow, dateColumn, bookingColumn string) Result {
	var result Result
	currentDate := ""

	for _, row := range rows {
		date := strings.TrimSpace(row.Get(dateColumn))
		if date != "" {
			if _, ok := dateutils.Parse(date); ok {
				currentDate = date
			}
			if parentPattern.MatchString(row.Get(bookingColumn)) {
				result.ParentsRemoved++
				continue
			}
			result.Rows = append(result.Rows, row)
			continue
		}

		result.ChildrenFound++
		if currentDate != "" {
			row = withDate(row, dateColumn, currentDate)
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

// IsParentRow reports whether a booking text marks a summary row.
func IsParentRow(bookingText string) bool {
	return parentPattern.MatchString(bookingText)
}

// withDate returns a copy of the row with the date column set, leaving the
// shared header and the original value slice untouched.
func withDate(row models.RawStatementRow, dateColumn, date string) models.RawStatementRow {
	values := make([]string, len(row.Values))
	copy(values, row.Values)
	for i, h := range row.Header {
		if h == dateColumn && i < len(values) {
			values[i] = date
			break
		}
	}
	return models.RawStatementRow{Header: row.Header, Values: values}
}
