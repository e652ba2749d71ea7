package revolutparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2024-01-15 09:12:33,2024-01-16 10:00:00,Migros Zurich,-25.00,0.00,CHF,COMPLETED,974.50
TOPUP,Current,2024-01-14 08:00:00,2024-01-14 08:00:01,Top-Up by *1234,500.00,0.00,EUR,COMPLETED,999.50
EXCHANGE,Current,2024-01-13 12:00:00,,Exchanged to CHF,-100.00,1.50,EUR,PENDING,499.50
`

func TestParse(t *testing.T) {
	transactions, err := Parse(strings.NewReader(sampleStatement))
	require.NoError(t, err)
	require.Len(t, transactions, 3, "every row passes regardless of state")

	card := transactions[0]
	assert.Equal(t, "2024-01-16", card.ValueDate, "completed date preferred over started date")
	assert.Equal(t, "Migros Zurich", card.Description)
	assert.Equal(t, "CARD_PAYMENT", card.Type)
	assert.Equal(t, "-25", card.Amount.String(), "signed amount used as reported")
	assert.Equal(t, "CHF", card.Currency)
	assert.True(t, card.Fee.IsZero())
	assert.Equal(t, "", card.Reference)

	topup := transactions[1]
	assert.Equal(t, "500", topup.Amount.String())

	exchange := transactions[2]
	assert.Equal(t, "2024-01-13", exchange.ValueDate, "started date used when completed is empty")
	assert.Equal(t, "1.5", exchange.Fee.String())
}

func TestParseDefaultCurrency(t *testing.T) {
	statement := `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2024-01-15 09:12:33,2024-01-15 10:00:00,Coffee,-4.50,0.00,,COMPLETED,100.00
`
	transactions, err := Parse(strings.NewReader(statement))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "EUR", transactions[0].Currency)
}

func TestParseUnparseableDateKeepsRow(t *testing.T) {
	statement := `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,bogus,bogus,Coffee,-4.50,0.00,CHF,COMPLETED,100.00
`
	transactions, err := Parse(strings.NewReader(statement))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "", transactions[0].ValueDate)
	assert.Equal(t, "-4.5", transactions[0].Amount.String())
}

func TestValidateFormat(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.csv")
	require.NoError(t, os.WriteFile(validFile, []byte(sampleStatement), 0600))

	invalidFile := filepath.Join(tempDir, "invalid.csv")
	require.NoError(t, os.WriteFile(invalidFile, []byte("Date;Booking text\n1;2\n"), 0600))

	valid, err := ValidateFormat(validFile)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = ValidateFormat(invalidFile)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestParseFile(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "revolut.csv")
	require.NoError(t, os.WriteFile(file, []byte(sampleStatement), 0600))

	transactions, err := ParseFile(file)
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestSetDefaultCurrency(t *testing.T) {
	SetDefaultCurrency("GBP")
	defer SetDefaultCurrency("EUR")

	data := "Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance\n" +
		"CARD_PAYMENT,Current,2024-01-15 09:12:33,2024-01-15 10:00:00,Coffee Corner,-4.50,0.00,,COMPLETED,100.00\n"
	transactions, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "GBP", transactions[0].Currency)
}
