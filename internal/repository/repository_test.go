package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

func newTestRepo(t *testing.T) (*Repository, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend()
	return New(b.Transactions(), logging.NewMockLogger()), b
}

func draft(date, desc, amount string, typ models.TransactionType) models.Transaction {
	return models.Transaction{Date: date, Description: desc, Amount: decimal.RequireFromString(amount), Type: typ}
}

// recordingTable wraps a table and records the columns sent on update.
type recordingTable struct {
	store.Table[store.TransactionRow]
	updates  []map[string]any
	onInsert func()
}

func (r *recordingTable) Update(ctx context.Context, id string, columns map[string]any) error {
	r.updates = append(r.updates, columns)
	return r.Table.Update(ctx, id, columns)
}

func (r *recordingTable) Insert(ctx context.Context, rows ...store.TransactionRow) ([]string, error) {
	if r.onInsert != nil {
		r.onInsert()
	}
	return r.Table.Insert(ctx, rows...)
}

func TestAddSwapsTemporaryID(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	table := &recordingTable{Table: b.Transactions()}
	repo := New(table, logging.NewMockLogger())

	var seenDuringWrite []models.Transaction
	table.onInsert = func() { seenDuringWrite = repo.List() }

	require.NoError(t, seedOne(ctx, repo))
	added, err := repo.Add(ctx, draft("2024-01-05", "Coffee", "4.50", models.TypeExpense))
	require.NoError(t, err)

	require.Len(t, seenDuringWrite, 2)
	assert.True(t, strings.HasPrefix(seenDuringWrite[1].ID, models.TemporaryIDPrefix))

	assert.False(t, added.IsTemporary())
	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, added.ID, list[1].ID)
	assert.Equal(t, "Coffee", list[1].Description)
}

func seedOne(ctx context.Context, repo *Repository) error {
	_, err := repo.Add(ctx, draft("2024-01-01", "Seed", "1.00", models.TypeIncome))
	return err
}

func TestAddFailureRestoresState(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)
	require.NoError(t, seedOne(ctx, repo))
	before := repo.List()

	b.TransactionTable().FailNext("insert", errors.New("store offline"))
	_, err := repo.Add(ctx, draft("2024-01-05", "Coffee", "4.50", models.TypeExpense))

	var pe *apperror.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, before, repo.List())
	assert.Contains(t, apperror.UserMessage(err), "reverted")
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Add(context.Background(), draft("not-a-date", "x", "1", models.TypeExpense))
	assert.Error(t, err)
	_, err = repo.Add(context.Background(), draft("2024-01-01", "x", "-1", models.TypeExpense))
	assert.Error(t, err)
	_, err = repo.Add(context.Background(), models.Transaction{Date: "2024-01-01"})
	assert.Error(t, err)
	assert.Empty(t, repo.List())
}

func TestUpdateSendsOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	table := &recordingTable{Table: b.Transactions()}
	repo := New(table, logging.NewMockLogger())

	tx := draft("2024-01-05", "Coffee", "4.50", models.TypeExpense)
	tx.Notes = "old note"
	added, err := repo.Add(ctx, tx)
	require.NoError(t, err)

	// An explicitly empty notes field is present and must be sent.
	updated, err := repo.Update(ctx, added.ID, models.TransactionPatch{Notes: models.Ptr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Notes)
	assert.Equal(t, "Coffee", updated.Description)

	require.Len(t, table.updates, 1)
	assert.Equal(t, map[string]any{models.ColumnNotes: ""}, table.updates[0])

	_, err = repo.Update(ctx, added.ID, models.Categorize("food", "Food", "Coffee"))
	require.NoError(t, err)
	assert.Len(t, table.updates[1], 4)

	rows, err := b.Transactions().SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "food", rows[0].CategoryID)
	assert.Empty(t, rows[0].Notes)
}

func TestUpdateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)
	added, err := repo.Add(ctx, draft("2024-01-05", "Coffee", "4.50", models.TypeExpense))
	require.NoError(t, err)

	b.TransactionTable().FailNext("update", errors.New("offline"))
	_, err = repo.Update(ctx, added.ID, models.TransactionPatch{Description: models.Ptr("Tea")})
	require.Error(t, err)

	got, ok := repo.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Coffee", got.Description)
}

func TestUpdateUnknownID(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Update(context.Background(), "missing", models.TransactionPatch{Notes: models.Ptr("x")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteFailureRestoresPosition(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)
	for _, d := range []string{"A", "B", "C"} {
		_, err := repo.Add(ctx, draft("2024-01-05", d, "1", models.TypeExpense))
		require.NoError(t, err)
	}
	before := repo.List()

	b.TransactionTable().FailNext("delete", errors.New("offline"))
	err := repo.Delete(ctx, before[1].ID)
	require.Error(t, err)
	assert.Equal(t, before, repo.List())

	require.NoError(t, repo.Delete(ctx, before[1].ID))
	after := repo.List()
	require.Len(t, after, 2)
	assert.Equal(t, "A", after[0].Description)
	assert.Equal(t, "C", after[1].Description)
}

func TestBulkAdd(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)

	drafts := []models.Transaction{
		draft("2024-01-05", "Coffee Shop", "4.50", models.TypeExpense),
		draft("2024-01-06", "Employer", "2000.00", models.TypeIncome),
	}
	added, err := repo.BulkAdd(ctx, drafts)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 2, b.TransactionTable().Len())

	list := repo.List()
	for i := range added {
		assert.False(t, list[i].IsTemporary())
		assert.Equal(t, added[i].ID, list[i].ID)
	}
}

func TestBulkAddPartialAcknowledgementIsFailure(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)
	require.NoError(t, seedOne(ctx, repo))
	before := repo.List()

	b.TransactionTable().AcknowledgeOnly(1)
	_, err := repo.BulkAdd(ctx, []models.Transaction{
		draft("2024-01-05", "A", "1", models.TypeExpense),
		draft("2024-01-06", "B", "2", models.TypeExpense),
	})

	var be *apperror.BatchError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Partial())
	assert.Equal(t, 2, be.Requested)
	assert.Equal(t, 1, be.Acknowledged)
	assert.Equal(t, before, repo.List())
}

func TestBulkAddStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo, b := newTestRepo(t)
	b.TransactionTable().FailNext("insert", errors.New("offline"))

	_, err := repo.BulkAdd(ctx, []models.Transaction{draft("2024-01-05", "A", "1", models.TypeExpense)})
	var be *apperror.BatchError
	require.ErrorAs(t, err, &be)
	assert.False(t, be.Partial())
	assert.Empty(t, repo.List())
}

func TestLoadAndOnChange(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	first := New(b.Transactions(), logging.NewMockLogger())
	_, err := first.Add(ctx, draft("2024-01-05", "Salary", "100", models.TypeIncome))
	require.NoError(t, err)

	second := New(b.Transactions(), logging.NewMockLogger())
	calls := 0
	second.OnChange(func() { calls++ })
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, 1, calls)

	list := second.List()
	require.Len(t, list, 1)
	assert.Equal(t, models.TypeIncome, list[0].Type)
	assert.True(t, decimal.NewFromInt(100).Equal(list[0].Amount))
}
