// Package models provides the canonical data structures shared by the tracker:
// transactions, categories, merchant mappings and date ranges.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. It is never derived from
// the sign of an amount.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType accepts "income"/"expense" in any case.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// TemporaryIDPrefix marks client-generated ids awaiting a persisted id.
const TemporaryIDPrefix = "tmp-"

// Transaction is the canonical transaction record. Amount is a non-negative
// magnitude in the primary currency; Type carries the direction.
type Transaction struct {
	ID               string           `json:"id" yaml:"id"`
	Date             string           `json:"date" yaml:"date"`
	Amount           decimal.Decimal  `json:"amount" yaml:"amount"`
	AmountOriginal   *decimal.Decimal `json:"amountOriginal,omitempty" yaml:"amount_original,omitempty"`
	OriginalCurrency string           `json:"originalCurrency,omitempty" yaml:"original_currency,omitempty"`
	Type             TransactionType  `json:"type" yaml:"type"`
	CategoryID       string           `json:"categoryId" yaml:"category_id"`
	CategoryName     string           `json:"categoryName" yaml:"category_name"`
	SubcategoryName  string           `json:"subcategoryName" yaml:"subcategory_name"`
	Description      string           `json:"description" yaml:"description"`
	Notes            string           `json:"notes,omitempty" yaml:"notes,omitempty"`
	Excluded         bool             `json:"excluded" yaml:"excluded"`
	BankName         string           `json:"bankName,omitempty" yaml:"bank_name,omitempty"`
}

// IsExcluded reports whether the transaction is left out of totals. The flag
// and the reserved category are equivalent representations.
func (t Transaction) IsExcluded() bool {
	return t.Excluded || t.CategoryID == ExcludedCategoryID
}

// IsIncome reports whether the transaction is income.
func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// IsCategorized reports whether a category has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.CategoryID != ""
}

// IsTemporary reports whether ID is a client-generated placeholder.
func (t Transaction) IsTemporary() bool {
	return t.ID == "" || strings.HasPrefix(t.ID, TemporaryIDPrefix)
}

// SignedAmount returns Amount for income and -Amount for expenses.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsIncome() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Clone returns a deep copy, including the optional original amount.
func (t Transaction) Clone() Transaction {
	c := t
	if t.AmountOriginal != nil {
		v := *t.AmountOriginal
		c.AmountOriginal = &v
	}
	return c
}

// CloneAll deep-copies a slice of transactions.
func CloneAll(txs []Transaction) []Transaction {
	if txs == nil {
		return nil
	}
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}
