package parsererror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidFormatError(t *testing.T) {
	err := &InvalidFormatError{
		FilePath:       "statement.csv",
		ExpectedFormat: "zkb",
		Msg:            "file header does not match the dialect",
	}
	assert.Contains(t, err.Error(), "statement.csv")
	assert.Contains(t, err.Error(), "zkb")
}

func TestUnknownDialectError(t *testing.T) {
	err := &UnknownDialectError{FilePath: "statement.csv"}
	assert.Contains(t, err.Error(), "statement.csv")
	assert.Contains(t, err.Error(), "specify the dialect explicitly")
}
