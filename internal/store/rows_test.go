package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRowRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tx   models.Transaction
	}{
		{
			name: "expense in primary currency",
			tx: models.Transaction{
				ID: "a", Date: "2024-01-05", Amount: decimal.RequireFromString("12.50"),
				Type: models.TypeExpense, Description: "TESCO", CategoryID: "groceries",
				CategoryName: "Groceries", SubcategoryName: "Food",
			},
		},
		{
			name: "income with original amount",
			tx: models.Transaction{
				ID: "b", Date: "2024-01-06", Amount: decimal.RequireFromString("100"),
				AmountOriginal: decPtr("465"), OriginalCurrency: currency.AED,
				Type: models.TypeIncome, Description: "Salary", BankName: "ENBD",
			},
		},
		{
			name: "zero amount expense keeps type",
			tx: models.Transaction{
				ID: "c", Date: "2024-01-07", Amount: decimal.Zero,
				Type: models.TypeExpense, Excluded: true, CategoryID: models.ExcludedCategoryID,
			},
		},
		{
			name: "zero amount income keeps type",
			tx: models.Transaction{
				ID: "d", Date: "2024-01-08", Amount: decimal.Zero, Type: models.TypeIncome,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRow(ToRow(tt.tx))
			assert.True(t, tt.tx.Amount.Equal(got.Amount))
			assert.Equal(t, tt.tx.Type, got.Type)
			if tt.tx.AmountOriginal == nil {
				assert.Nil(t, got.AmountOriginal)
			} else {
				require.NotNil(t, got.AmountOriginal)
				assert.True(t, tt.tx.AmountOriginal.Equal(*got.AmountOriginal))
				assert.Equal(t, tt.tx.OriginalCurrency, got.OriginalCurrency)
			}
			got.Amount, got.AmountOriginal = tt.tx.Amount, tt.tx.AmountOriginal
			assert.Equal(t, tt.tx, got)
		})
	}
}

func TestToRowDirectionalColumns(t *testing.T) {
	row := ToRow(models.Transaction{Amount: decimal.NewFromInt(5), Type: models.TypeIncome, AmountOriginal: decPtr("23.25")})
	assert.True(t, row.MoneyInGBP.Valid)
	assert.True(t, row.MoneyInAED.Valid)
	assert.False(t, row.MoneyOutGBP.Valid)
	assert.False(t, row.MoneyOutAED.Valid)

	row = ToRow(models.Transaction{Amount: decimal.NewFromInt(5), Type: models.TypeExpense})
	assert.True(t, row.MoneyOutGBP.Valid)
	assert.False(t, row.MoneyOutAED.Valid)
	assert.False(t, row.MoneyInGBP.Valid)
}

func TestToRowDropsTemporaryID(t *testing.T) {
	row := ToRow(models.Transaction{ID: "tmp-123", Type: models.TypeExpense})
	assert.Empty(t, row.ID)
}

func TestApplyRejectsUnknownColumn(t *testing.T) {
	_, err := TransactionRow{}.Apply(map[string]any{"amount": "1"})
	assert.Error(t, err)

	_, err = TransactionRow{}.Apply(map[string]any{models.ColumnExcluded: "yes"})
	assert.Error(t, err)

	row, err := TransactionRow{Notes: "x"}.Apply(map[string]any{models.ColumnNotes: "", models.ColumnExcluded: true})
	require.NoError(t, err)
	assert.Empty(t, row.Notes)
	assert.True(t, row.Excluded)
}
