package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// ManualEntry is a transaction typed in by the user.
type ManualEntry struct {
	Date        string                 `json:"date"`
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Currency    string                 `json:"currency"`
	Type        models.TransactionType `json:"type"`
	CategoryID  string                 `json:"categoryId"`
	Subcategory string                 `json:"subcategory"`
	BankName    string                 `json:"bankName"`
	Notes       string                 `json:"notes"`
}

// AddTransaction validates a manual entry and adds it to the repository.
// Secondary-currency amounts are converted and kept as the original amount.
func (c *Container) AddTransaction(ctx context.Context, e ManualEntry) (models.Transaction, error) {
	date, err := dateutils.NormalizeISO(e.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	if !e.Type.Valid() {
		return models.Transaction{}, fmt.Errorf("invalid transaction type %q", e.Type)
	}

	amount := e.Amount.Abs()
	draft := models.Transaction{
		Date:        date,
		Description: strings.TrimSpace(e.Description),
		Amount:      amount,
		Type:        e.Type,
		BankName:    e.BankName,
		Notes:       e.Notes,
	}
	if strings.EqualFold(e.Currency, c.normalizer.Secondary) {
		original := amount
		draft.AmountOriginal = &original
		draft.OriginalCurrency = c.normalizer.Secondary
		draft.Amount = currency.Round2(c.normalizer.ToPrimary(amount))
	}

	if e.CategoryID != "" {
		cat, err := c.categoryFor(e.CategoryID, e.Subcategory, e.Type)
		if err != nil {
			return models.Transaction{}, err
		}
		draft = models.Categorize(cat.ID, cat.Name, e.Subcategory).Apply(draft)
	}

	return c.repository.Add(ctx, draft)
}

// Categorize assigns a category and subcategory to a stored transaction.
// With remember set, the merchant mapping for its description is confirmed
// too; a mapping failure is returned but the categorization stays applied.
func (c *Container) Categorize(ctx context.Context, id, categoryID, subcategory string, remember bool) (models.Transaction, error) {
	current, ok := c.repository.Get(id)
	if !ok {
		return models.Transaction{}, &apperror.NotFoundError{Entity: "transaction", Key: id}
	}
	cat, err := c.categoryFor(categoryID, subcategory, current.Type)
	if err != nil {
		return models.Transaction{}, err
	}

	updated, err := c.repository.Update(ctx, id, models.Categorize(cat.ID, cat.Name, subcategory))
	if err != nil {
		return models.Transaction{}, err
	}

	if remember && updated.Description != "" && !cat.IsSentinel() {
		m, err := c.merchants.ConfirmCategorization(ctx, updated.Description, cat.ID, cat.Name, subcategory)
		if err != nil {
			return updated, fmt.Errorf("transaction updated but merchant mapping not saved: %w", err)
		}
		c.logger.Debug("Merchant mapping confirmed",
			logging.F(logging.FieldMerchant, m.MerchantPattern),
			logging.F(logging.FieldCount, m.Count))
	}
	return updated, nil
}

// SetExcluded toggles a transaction's exclusion flag.
func (c *Container) SetExcluded(ctx context.Context, id string, excluded bool) (models.Transaction, error) {
	return c.repository.Update(ctx, id, models.TransactionPatch{Excluded: &excluded})
}

// RememberMerchant confirms a merchant mapping without touching any
// transaction. The excluded sentinel is never remembered.
func (c *Container) RememberMerchant(ctx context.Context, description, categoryID, subcategory string) (models.MerchantMapping, error) {
	cat, ok := c.categories.Get(categoryID)
	if !ok {
		return models.MerchantMapping{}, &apperror.NotFoundError{Entity: "category", Key: categoryID}
	}
	if cat.IsSentinel() {
		return models.MerchantMapping{}, fmt.Errorf("the %s category cannot be remembered", cat.Name)
	}
	if subcategory != "" && !cat.HasSubcategory(subcategory) {
		return models.MerchantMapping{}, &apperror.NotFoundError{Entity: "subcategory", Key: subcategory}
	}
	return c.merchants.ConfirmCategorization(ctx, description, cat.ID, cat.Name, subcategory)
}

// KnownCategory reports whether id is registered.
func (c *Container) KnownCategory(id string) bool {
	_, ok := c.categories.Get(id)
	return ok
}

func (c *Container) categoryFor(id, subcategory string, t models.TransactionType) (models.Category, error) {
	cat, ok := c.categories.Get(id)
	if !ok {
		return models.Category{}, &apperror.NotFoundError{Entity: "category", Key: id}
	}
	if !cat.AcceptsType(t) {
		return models.Category{}, fmt.Errorf("category %q is for %s transactions", cat.Name, strings.ToLower(string(cat.Type)))
	}
	if subcategory != "" && !cat.HasSubcategory(subcategory) {
		return models.Category{}, &apperror.NotFoundError{Entity: "subcategory", Key: subcategory}
	}
	return cat, nil
}
