// Package parsererror defines typed errors shared by the statement parsers.
package parsererror

import "fmt"

// InvalidFormatError indicates that an input file does not conform to the
// expected dialect for a parser.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// UnknownDialectError indicates that no bank dialect signature matched the
// input file. Callers must treat this as fatal and require an explicit
// dialect override; the pipeline never guesses.
type UnknownDialectError struct {
	FilePath string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("could not detect bank type for '%s': specify the dialect explicitly", e.FilePath)
}
