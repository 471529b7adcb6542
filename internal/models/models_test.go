package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_IsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		excluded bool
	}{
		{name: "active", tx: Transaction{CategoryID: "food"}, excluded: false},
		{name: "flag only", tx: Transaction{CategoryID: "food", Excluded: true}, excluded: true},
		{name: "category only", tx: Transaction{CategoryID: ExcludedCategoryID}, excluded: true},
		{name: "both", tx: Transaction{CategoryID: ExcludedCategoryID, Excluded: true}, excluded: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.excluded, tt.tx.IsExcluded())
		})
	}
}

func TestTransaction_CloneIsDeep(t *testing.T) {
	orig := decimal.RequireFromString("18.37")
	tx := Transaction{ID: "a", AmountOriginal: &orig}

	c := tx.Clone()
	*c.AmountOriginal = decimal.NewFromInt(1)

	assert.True(t, tx.AmountOriginal.Equal(decimal.RequireFromString("18.37")))
}

func TestTransaction_SignedAmount(t *testing.T) {
	amt := decimal.RequireFromString("4.50")
	assert.True(t, Transaction{Type: TypeExpense, Amount: amt}.SignedAmount().Equal(amt.Neg()))
	assert.True(t, Transaction{Type: TypeIncome, Amount: amt}.SignedAmount().Equal(amt))
}

func TestParseTransactionType(t *testing.T) {
	typ, ok := ParseTransactionType(" income ")
	assert.True(t, ok)
	assert.Equal(t, TypeIncome, typ)

	_, ok = ParseTransactionType("transfer")
	assert.False(t, ok)
}

func TestTransactionPatch_ColumnsOnlyPresentFields(t *testing.T) {
	patch := TransactionPatch{Notes: Ptr(""), Excluded: Ptr(false)}

	cols := patch.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "", cols[ColumnNotes])
	assert.Equal(t, false, cols[ColumnExcluded])
	assert.False(t, patch.IsEmpty())
	assert.True(t, TransactionPatch{}.IsEmpty())
}

func TestTransactionPatch_Apply(t *testing.T) {
	tx := Transaction{ID: "1", Description: "Tesco", Notes: "weekly shop", Excluded: true}

	out := TransactionPatch{Notes: Ptr(""), Excluded: Ptr(false)}.Apply(tx)

	assert.Equal(t, "", out.Notes)
	assert.False(t, out.Excluded)
	assert.Equal(t, "Tesco", out.Description)
	assert.Equal(t, "weekly shop", tx.Notes)
}

func TestCategorize_SyncsExclusion(t *testing.T) {
	out := Categorize(ExcludedCategoryID, ExcludedCategoryName, "").Apply(Transaction{})
	assert.True(t, out.Excluded)

	out = Categorize("food", "Food", "Groceries").Apply(Transaction{Excluded: true})
	assert.False(t, out.Excluded)
	assert.Equal(t, "Groceries", out.SubcategoryName)
}

func TestMerchantMapping_IsReady(t *testing.T) {
	assert.False(t, MerchantMapping{Count: 2}.IsReady())
	assert.True(t, MerchantMapping{Count: 3}.IsReady())
	assert.Equal(t, "coffee shop", NormalizePattern("  Coffee Shop "))
}

func TestCategory_AcceptsType(t *testing.T) {
	food := Category{ID: "food", Type: TypeExpense}
	assert.True(t, food.AcceptsType(TypeExpense))
	assert.False(t, food.AcceptsType(TypeIncome))
	assert.True(t, ExcludedCategory().AcceptsType(TypeIncome))
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: "2024-03-01", End: "2024-03-31"}
	assert.False(t, r.Contains("2024-02-28"))
	assert.True(t, r.Contains("2024-03-01"))
	assert.True(t, r.Contains("2024-03-31"))
	assert.False(t, r.Contains("2024-04-01"))

	from := DateRange{Start: "2024-03-01"}
	assert.False(t, from.Contains("2024-02-29"))
	assert.True(t, from.Contains("2024-03-01"))
	assert.True(t, from.Contains("2031-01-01"))

	until := DateRange{End: "2024-03-31"}
	assert.True(t, until.Contains("1999-12-31"))
	assert.True(t, until.Contains("2024-03-31"))
	assert.False(t, until.Contains("2024-04-01"))

	assert.True(t, DateRange{}.Contains("2024-03-15"))
}

func TestFindBank(t *testing.T) {
	banks := []Bank{{Name: "Monzo", Currency: "GBP"}, {Name: "Emirates NBD", Currency: "AED"}}
	b, ok := FindBank(banks, "emirates nbd")
	require.True(t, ok)
	assert.Equal(t, "AED", b.Currency)
}
