package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func tx(date, desc, amount string, typ models.TransactionType) models.Transaction {
	return models.Transaction{Date: date, Description: desc, Amount: decimal.RequireFromString(amount), Type: typ, CategoryName: "Food", SubcategoryName: "Lunch"}
}

func TestAdvise(t *testing.T) {
	gen := &fakeGenerator{reply: "  Spend less on lunch.\n"}
	logger := logging.NewMockLogger()
	a := New(gen, currency.NewNormalizer(currency.DefaultRate), 0, logger)

	transfer := tx("2024-03-05", "Savings transfer", "500", models.TypeExpense)
	transfer.CategoryID = models.ExcludedCategoryID

	advice, err := a.Advise(context.Background(), []models.Transaction{
		tx("2024-03-01", "Salary", "2000", models.TypeIncome),
		tx("2024-03-02", "Pret", "8.50", models.TypeExpense),
		transfer,
	}, "Can I afford a holiday?")
	require.NoError(t, err)
	assert.Equal(t, "Spend less on lunch.", advice)

	assert.Contains(t, gen.prompt, "Total income: 2000.00")
	assert.Contains(t, gen.prompt, "Total expenses: 8.50")
	assert.Contains(t, gen.prompt, "2024-03-02 | EXPENSE | Food | Lunch | 8.50 | Pret")
	assert.Contains(t, gen.prompt, "Can I afford a holiday?")
	assert.NotContains(t, gen.prompt, "Savings transfer")
	assert.True(t, logger.HasEntry("DEBUG", "Requesting advice"))
}

func TestAdvise_Errors(t *testing.T) {
	n := currency.NewNormalizer(currency.DefaultRate)
	txs := []models.Transaction{tx("2024-03-02", "Pret", "8.50", models.TypeExpense)}

	_, err := New(nil, n, 0, nil).Advise(context.Background(), txs, "")
	assert.Error(t, err)

	_, err = New(&fakeGenerator{}, n, 0, nil).Advise(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoTransactions)

	boom := errors.New("quota exceeded")
	_, err = New(&fakeGenerator{err: boom}, n, 0, nil).Advise(context.Background(), txs, "")
	assert.ErrorIs(t, err, boom)
}

func TestBuildPrompt_BoundsToNewest(t *testing.T) {
	var txs []models.Transaction
	for day := 1; day <= 20; day++ {
		txs = append(txs, tx(fmt.Sprintf("2024-03-%02d", day), fmt.Sprintf("Shop %d", day), "1", models.TypeExpense))
	}

	prompt := BuildPrompt(txs, currency.NewNormalizer(currency.DefaultRate), 5, "")
	assert.Contains(t, prompt, "Most recent 5 transactions")
	assert.Contains(t, prompt, "Shop 20")
	assert.Contains(t, prompt, "Shop 16")
	assert.NotContains(t, prompt, "Shop 15\n")
	assert.Contains(t, prompt, "Total expenses: 20.00")
	assert.Equal(t, 5, strings.Count(prompt, "| EXPENSE |"))
}
