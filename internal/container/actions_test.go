package container

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/merchant"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

func loadedContainer(t *testing.T) (*Container, *store.MemoryBackend) {
	t.Helper()
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	c, err := NewContainerWithBackend(ctx, testConfig(t), backend, nil)
	require.NoError(t, err)
	require.NoError(t, c.Load(ctx))
	return c, backend
}

func TestAddTransaction(t *testing.T) {
	c, _ := loadedContainer(t)
	ctx := context.Background()

	tx, err := c.AddTransaction(ctx, ManualEntry{
		Date: "15/03/2024", Description: " Pret ", Amount: decimal.RequireFromString("-4.50"),
		Type: models.TypeExpense, CategoryID: "eating-out", Subcategory: "Coffee",
	})
	require.NoError(t, err)
	assert.False(t, tx.IsTemporary())
	assert.Equal(t, "2024-03-15", tx.Date)
	assert.Equal(t, "Pret", tx.Description)
	assert.True(t, decimal.RequireFromString("4.50").Equal(tx.Amount))
	assert.Equal(t, "Eating Out", tx.CategoryName)
	assert.Equal(t, "Coffee", tx.SubcategoryName)
	assert.Nil(t, tx.AmountOriginal)

	aed, err := c.AddTransaction(ctx, ManualEntry{
		Date: "2024-03-16", Description: "Mall", Amount: decimal.RequireFromString("100"),
		Currency: "aed", Type: models.TypeExpense,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("21.51").Equal(aed.Amount))
	require.NotNil(t, aed.AmountOriginal)
	assert.True(t, decimal.RequireFromString("100").Equal(*aed.AmountOriginal))
	assert.Equal(t, "AED", aed.OriginalCurrency)
}

func TestAddTransaction_Rejections(t *testing.T) {
	c, _ := loadedContainer(t)
	ctx := context.Background()
	base := ManualEntry{Date: "2024-03-15", Description: "X", Amount: decimal.NewFromInt(1), Type: models.TypeExpense}

	bad := base
	bad.Date = "someday"
	_, err := c.AddTransaction(ctx, bad)
	assert.Error(t, err)

	bad = base
	bad.Type = "TRANSFER"
	_, err = c.AddTransaction(ctx, bad)
	assert.Error(t, err)

	bad = base
	bad.CategoryID = "salary"
	_, err = c.AddTransaction(ctx, bad)
	assert.ErrorContains(t, err, "income transactions")

	bad = base
	bad.CategoryID = "nope"
	_, err = c.AddTransaction(ctx, bad)
	assert.True(t, apperror.IsNotFound(err))

	assert.Empty(t, c.GetRepository().List())
}

func TestCategorize_RememberReachesReadyThreshold(t *testing.T) {
	c, _ := loadedContainer(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		tx, err := c.AddTransaction(ctx, ManualEntry{Date: "2024-03-15", Description: "TESCO STORES", Amount: decimal.NewFromInt(10), Type: models.TypeExpense})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	for i, id := range ids {
		updated, err := c.Categorize(ctx, id, "groceries", "Supermarket", true)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", updated.CategoryName)

		m, ok := c.GetMerchants().Lookup("tesco stores")
		require.True(t, ok)
		assert.Equal(t, i+1, m.Count)
		assert.Equal(t, i == 2, merchant.IsReady(m))
	}
}

func TestCategorize_ExcludedSentinelSetsFlag(t *testing.T) {
	c, _ := loadedContainer(t)
	ctx := context.Background()

	tx, err := c.AddTransaction(ctx, ManualEntry{Date: "2024-03-15", Description: "Transfer", Amount: decimal.NewFromInt(500), Type: models.TypeIncome})
	require.NoError(t, err)

	updated, err := c.Categorize(ctx, tx.ID, models.ExcludedCategoryID, "", true)
	require.NoError(t, err)
	assert.True(t, updated.Excluded)
	assert.True(t, updated.IsExcluded())
	assert.Empty(t, c.GetMerchants().List(), "the sentinel is never remembered")

	back, err := c.SetExcluded(ctx, tx.ID, false)
	require.NoError(t, err)
	assert.False(t, back.Excluded)
	assert.True(t, back.IsExcluded(), "category still marks it excluded")
}

func TestCategorize_MappingFailureKeepsCategorization(t *testing.T) {
	c, backend := loadedContainer(t)
	ctx := context.Background()

	tx, err := c.AddTransaction(ctx, ManualEntry{Date: "2024-03-15", Description: "Uber", Amount: decimal.NewFromInt(12), Type: models.TypeExpense})
	require.NoError(t, err)

	backend.MappingTable().FailNext("insert", errors.New("offline"))
	updated, err := c.Categorize(ctx, tx.ID, "transport", "Taxi", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merchant mapping not saved")
	assert.Equal(t, "transport", updated.CategoryID)

	stored, ok := c.GetRepository().Get(tx.ID)
	require.True(t, ok)
	assert.Equal(t, "transport", stored.CategoryID)
	assert.Empty(t, c.GetMerchants().List())
}

func TestCategorize_UnknownTransaction(t *testing.T) {
	c, _ := loadedContainer(t)
	_, err := c.Categorize(context.Background(), "missing", "groceries", "", false)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRememberMerchant(t *testing.T) {
	c, _ := loadedContainer(t)
	ctx := context.Background()

	m, err := c.RememberMerchant(ctx, "Pret A Manger", "eating-out", "Coffee")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count)
	assert.Equal(t, "Eating Out", m.CategoryName)

	_, err = c.RememberMerchant(ctx, "Pret A Manger", models.ExcludedCategoryID, "")
	assert.Error(t, err)

	_, err = c.RememberMerchant(ctx, "Pret A Manger", "nope", "")
	assert.True(t, apperror.IsNotFound(err))

	_, err = c.RememberMerchant(ctx, "Pret A Manger", "eating-out", "Nope")
	assert.True(t, apperror.IsNotFound(err))

	assert.Len(t, c.GetMerchants().List(), 1)
}
