// Package advisor asks a text-generation model for spending advice based on a
// bounded summary of recent transactions.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// DefaultMaxTransactions bounds the number of transactions sent to the model.
const DefaultMaxTransactions = 50

// ErrNoTransactions is returned when there is nothing to advise on.
var ErrNoTransactions = errors.New("no active transactions to analyse")

// TextGenerator turns a prompt into free-form text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advisor builds prompts from transactions and forwards them to a TextGenerator.
type Advisor struct {
	generator       TextGenerator
	normalizer      currency.Normalizer
	maxTransactions int
	logger          logging.Logger
}

// New creates an Advisor. maxTransactions <= 0 uses DefaultMaxTransactions.
func New(generator TextGenerator, normalizer currency.Normalizer, maxTransactions int, logger logging.Logger) *Advisor {
	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}
	return &Advisor{
		generator:       generator,
		normalizer:      normalizer,
		maxTransactions: maxTransactions,
		logger:          logging.OrDefault(logger),
	}
}

// Advise returns advice for txs. An optional question is appended to the prompt.
func (a *Advisor) Advise(ctx context.Context, txs []models.Transaction, question string) (string, error) {
	if a.generator == nil {
		return "", errors.New("AI advisor is not configured")
	}
	active, _ := aggregate.PartitionActive(txs)
	if len(active) == 0 {
		return "", ErrNoTransactions
	}

	prompt := BuildPrompt(active, a.normalizer, a.maxTransactions, question)
	a.logger.Debug("Requesting advice",
		logging.F(logging.FieldCount, min(len(active), a.maxTransactions)),
		logging.F(logging.FieldOperation, "advise"))

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.WithError(err).Warn("Advice generation failed")
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt renders totals over all of active and one line per
// transaction for the newest limit of them.
func BuildPrompt(active []models.Transaction, n currency.Normalizer, limit int, question string) string {
	recent := make([]models.Transaction, len(active))
	copy(recent, active)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date > recent[j].Date })
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}

	summary := aggregate.ComputeSummary(active)

	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Review the household finances below ")
	b.WriteString("and give three to five concrete, practical suggestions to improve savings. ")
	fmt.Fprintf(&b, "Amounts are in %s (1 %s = %s %s).\n\n", n.Primary, n.Primary, n.Rate.String(), n.Secondary)

	fmt.Fprintf(&b, "Total income: %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Total expenses: %s\n", summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "Balance: %s\n\n", summary.Balance.StringFixed(2))

	fmt.Fprintf(&b, "Most recent %d transactions (date | type | category | subcategory | amount | description):\n", len(recent))
	for _, t := range recent {
		category := t.CategoryName
		if category == "" {
			category = models.UncategorizedName
		}
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s\n",
			t.Date, t.Type, category, t.SubcategoryName, t.Amount.StringFixed(2), t.Description)
	}

	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&b, "\nThe user asks: %s\n", q)
	}
	return b.String()
}
