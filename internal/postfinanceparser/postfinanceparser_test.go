package postfinanceparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `Date;Notification text;Credit in CHF;Debit in CHF;Value;Balance
15.01.2024;GIRO ACME Corp;3000.00;;15.01.2024;4500.00
16.01.2024;DEBIT Migros Filiale;;45.80;16.01.2024;4454.20
`

func TestParse(t *testing.T) {
	transactions, err := Parse(strings.NewReader(sampleStatement))
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	credit := transactions[0]
	assert.Equal(t, "2024-01-15", credit.ValueDate)
	assert.Equal(t, "GIRO ACME Corp", credit.Description)
	assert.Equal(t, "3000", credit.Amount.String())
	assert.Equal(t, "CHF", credit.Currency)
	assert.True(t, credit.Fee.IsZero(), "fee not supported for this dialect")
	assert.Equal(t, "", credit.Reference, "reference not supported for this dialect")

	debit := transactions[1]
	assert.Equal(t, "-45.8", debit.Amount.String())
}

func TestValidateFormat(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.csv")
	require.NoError(t, os.WriteFile(validFile, []byte(sampleStatement), 0600))

	invalidFile := filepath.Join(tempDir, "invalid.csv")
	require.NoError(t, os.WriteFile(invalidFile, []byte("foo,bar\n1,2\n"), 0600))

	valid, err := ValidateFormat(validFile)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = ValidateFormat(invalidFile)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestParseFile(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "postfinance.csv")
	require.NoError(t, os.WriteFile(file, []byte(sampleStatement), 0600))

	transactions, err := ParseFile(file)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestSetDefaultCurrency(t *testing.T) {
	SetDefaultCurrency("EUR")
	defer SetDefaultCurrency("CHF")

	data := "Date;Notification text;Debit in CHF\n15.01.2024;Coop;20.00\n"
	transactions, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "EUR", transactions[0].Currency)
}
