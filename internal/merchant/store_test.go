package merchant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

func newTestStore(t *testing.T) (*Store, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend()
	s := NewStore(b.MerchantMappings(), logging.NewMockLogger())
	require.NoError(t, s.Load(context.Background()))
	return s, b
}

func TestRecordConfirmationLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	m, err := s.RecordConfirmation(ctx, "TESCO Stores", "groceries", "Groceries", "Food")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count)
	assert.NotEmpty(t, m.ID)
	assert.False(t, IsReady(m))

	_, err = s.RecordConfirmation(ctx, "tesco stores ", "groceries", "Groceries", "Food")
	require.NoError(t, err)
	m, err = s.ConfirmCategorization(ctx, "Tesco Stores", "groceries", "Groceries", "Household")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count)
	assert.Equal(t, "Household", m.SubcategoryName)
	assert.True(t, IsReady(m))

	found, ok := s.Lookup("TESCO STORES")
	require.True(t, ok)
	assert.Equal(t, m, found)

	// A fresh store over the same table sees the committed state.
	reloaded := NewStore(s.table, logging.NewMockLogger())
	require.NoError(t, reloaded.Load(ctx))
	found, ok = reloaded.Lookup("tesco stores")
	require.True(t, ok)
	assert.Equal(t, 3, found.Count)
}

func TestLookupMiss(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok := s.Lookup("Unknown")
	assert.False(t, ok)
	_, ok = s.Lookup("   ")
	assert.False(t, ok)
}

func TestRecordConfirmationPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t)

	_, err := s.RecordConfirmation(ctx, "Cafe", "food", "Food", "")
	require.NoError(t, err)

	b.MappingTable().FailNext("update", errors.New("offline"))
	_, err = s.RecordConfirmation(ctx, "Cafe", "food", "Food", "")
	require.Error(t, err)

	m, ok := s.Lookup("cafe")
	require.True(t, ok)
	assert.Equal(t, 1, m.Count)

	b.MappingTable().FailNext("insert", errors.New("offline"))
	_, err = s.RecordConfirmation(ctx, "Bakery", "food", "Food", "")
	require.Error(t, err)
	_, ok = s.Lookup("bakery")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t)
	_, err := s.RecordConfirmation(ctx, "Gym", "health", "Health", "")
	require.NoError(t, err)

	b.MappingTable().FailNext("delete", errors.New("offline"))
	require.Error(t, s.Delete(ctx, "gym"))
	_, ok := s.Lookup("Gym")
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "GYM"))
	_, ok = s.Lookup("Gym")
	assert.False(t, ok)
	assert.Equal(t, 0, b.MappingTable().Len())

	assert.Error(t, s.Delete(ctx, "Gym"))
}

func categorized(date, desc, cat, sub string) models.Transaction {
	return models.Transaction{Date: date, Description: desc, CategoryID: cat, CategoryName: cat, SubcategoryName: sub, Type: models.TypeExpense}
}

func TestPreviewBackfillReadiness(t *testing.T) {
	three := []models.Transaction{
		categorized("2024-01-01", "Netflix", "ent", "Streaming"),
		categorized("2024-02-01", "Netflix", "ent", "Streaming"),
		categorized("2024-03-01", "Netflix", "ent", "Streaming"),
	}
	items := PreviewBackfill(three)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Count)
	assert.True(t, IsReady(items[0]))

	items = PreviewBackfill(three[:2])
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)
	assert.False(t, IsReady(items[0]))
}

func TestPreviewBackfillUsesMostRecentCategorization(t *testing.T) {
	txs := []models.Transaction{
		categorized("2024-03-01", "Amazon", "shopping", "Online"),
		categorized("2024-01-01", "Amazon", "household", "Supplies"),
		{Date: "2024-04-01", Description: "Amazon"},
		{Date: "2024-05-01", Description: "Amazon", CategoryID: models.ExcludedCategoryID},
		{Date: "2024-05-02", Description: "Amazon", CategoryID: "refunds", Excluded: true},
		categorized("2024-02-01", "Uber", "transport", "Taxi"),
	}

	items := PreviewBackfill(txs)
	require.Len(t, items, 2)
	assert.Equal(t, "Amazon", items[0].MerchantPattern)
	assert.Equal(t, "shopping", items[0].CategoryID)
	assert.Equal(t, "Online", items[0].SubcategoryName)
	assert.Equal(t, 2, items[0].Count)
	assert.Equal(t, "Uber", items[1].MerchantPattern)
}

func TestPreviewBackfillGroupsByNormalizedDescription(t *testing.T) {
	txs := []models.Transaction{
		categorized("2024-01-01", "Tesco", "groceries", "Supermarket"),
		categorized("2024-02-01", "TESCO", "groceries", "Supermarket"),
		categorized("2024-03-01", "", "groceries", ""),
	}

	items := PreviewBackfill(txs)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)
	assert.Equal(t, "TESCO", items[0].MerchantPattern)

	ctx := context.Background()
	s, _ := newTestStore(t)
	n, err := s.ExecuteBackfill(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, ok := s.Lookup("tesco")
	require.True(t, ok)
	assert.Equal(t, 2, m.Count)
}

func TestExecuteBackfillSetsCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.RecordConfirmation(ctx, "Netflix", "ent", "Entertainment", "")
	require.NoError(t, err)

	preview := s.PreviewBackfill([]models.Transaction{
		categorized("2024-01-01", "Netflix", "ent", "Streaming"),
		categorized("2024-02-01", "Netflix", "ent", "Streaming"),
		categorized("2024-02-01", "Spotify", "ent", "Music"),
	})
	assert.Len(t, s.List(), 1, "preview must not mutate the store")

	n, err := s.ExecuteBackfill(ctx, preview)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	netflix, ok := s.Lookup("netflix")
	require.True(t, ok)
	assert.Equal(t, 2, netflix.Count)
	assert.Equal(t, "Streaming", netflix.SubcategoryName)

	all := s.List()
	require.Len(t, all, 2)
	assert.Equal(t, "Netflix", all[0].MerchantPattern)
}

func TestExecuteBackfillStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t)
	b.MappingTable().FailNext("insert", errors.New("offline"))

	n, err := s.ExecuteBackfill(ctx, []models.MerchantMapping{
		{MerchantPattern: "A", CategoryID: "x", Count: 3},
		{MerchantPattern: "B", CategoryID: "y", Count: 3},
	})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, s.List())
}
