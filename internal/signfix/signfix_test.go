package signfix

import (
	"testing"

	"finpipe/bank-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tx(description, amount string) models.NormalizedTransaction {
	return models.NormalizedTransaction{
		Description: description,
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestApplyNegatesPositiveVaultTransfers(t *testing.T) {
	transactions := []models.NormalizedTransaction{
		tx("Transfer To Pocket savings", "100.00"),
		tx("To CHF Vault", "50.00"),
		tx("to chf tablet", "25.00"),
		tx("TO CHF GAMING fund", "10.00"),
		tx("Exchange to EUR holiday", "200.00"),
		tx("Migros purchase", "30.00"),
	}

	fixed := Apply(transactions)

	assert.Equal(t, 5, fixed)
	assert.Equal(t, "-100", transactions[0].Amount.String())
	assert.Equal(t, "-50", transactions[1].Amount.String())
	assert.Equal(t, "-25", transactions[2].Amount.String())
	assert.Equal(t, "-10", transactions[3].Amount.String())
	assert.Equal(t, "-200", transactions[4].Amount.String())
	assert.Equal(t, "30", transactions[5].Amount.String(), "non-vault row untouched")
}

func TestApplyLeavesNegativeVaultTransfers(t *testing.T) {
	transactions := []models.NormalizedTransaction{
		tx("To Pocket savings", "-100.00"),
	}

	assert.Equal(t, 0, Apply(transactions))
	assert.Equal(t, "-100", transactions[0].Amount.String())
}

func TestApplyIsIdempotent(t *testing.T) {
	transactions := []models.NormalizedTransaction{
		tx("To CHF Vault", "75.00"),
		tx("To Pocket", "-20.00"),
	}

	first := Apply(transactions)
	second := Apply(transactions)

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, "-75", transactions[0].Amount.String())
	assert.Equal(t, "-20", transactions[1].Amount.String())
}

func TestApplyNeverLeavesVaultTransferPositive(t *testing.T) {
	transactions := []models.NormalizedTransaction{
		tx("to pocket", "1.00"),
		tx("to eur", "0.01"),
		tx("to chf vault", "-3.00"),
		tx("to chf gaming", "0"),
	}

	Apply(transactions)

	for _, transaction := range transactions {
		if IsVaultTransfer(transaction.Description) {
			assert.False(t, transaction.Amount.IsPositive(),
				"vault transfer %q still positive", transaction.Description)
		}
	}
}

func TestIsVaultTransfer(t *testing.T) {
	assert.True(t, IsVaultTransfer("Moved To Pocket yesterday"))
	assert.False(t, IsVaultTransfer("Pocket money"))
	assert.False(t, IsVaultTransfer(""))
}
