package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// NoSubcategoryName labels transactions without a subcategory.
const NoSubcategoryName = "No subcategory"

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`

	// Missing is set on the Uncategorized row when it holds transactions
	// whose category is no longer registered.
	Missing bool `json:"missing,omitempty"`
}

// CategoryBreakdown sums active transactions per category. Transactions with
// no category, or one absent from categories, are pooled under
// "Uncategorized" with the neutral color. Categories with a zero total are
// dropped; rows are sorted by total, largest first.
func CategoryBreakdown(active []models.Transaction, categories []models.Category) []CategoryTotal {
	known := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = c
	}

	totals := make(map[string]*CategoryTotal)
	for _, t := range active {
		if t.IsExcluded() {
			continue
		}

		key := t.CategoryID
		c, ok := known[key]
		if !ok {
			key = models.UncategorizedID
			c = models.Category{ID: models.UncategorizedID, Name: models.UncategorizedName, Color: models.NeutralColor}
		}

		row, exists := totals[key]
		if !exists {
			row = &CategoryTotal{CategoryID: c.ID, Name: c.Name, Color: c.Color, Total: decimal.Zero}
			totals[key] = row
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
		if !ok && t.CategoryID != "" {
			row.Missing = true
		}
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, row := range totals {
		if !row.Total.IsZero() {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SubcategoryTotal is one row of a subcategory breakdown.
type SubcategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// SubcategoryBreakdown sums the active expenses of one category per
// subcategory name, largest first.
func SubcategoryBreakdown(active []models.Transaction, categoryID string) []SubcategoryTotal {
	totals := make(map[string]*SubcategoryTotal)
	for _, t := range active {
		if t.IsExcluded() || !t.IsExpense() || t.CategoryID != categoryID {
			continue
		}
		name := t.SubcategoryName
		if name == "" {
			name = NoSubcategoryName
		}
		row, ok := totals[name]
		if !ok {
			row = &SubcategoryTotal{Name: name, Total: decimal.Zero}
			totals[name] = row
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
	}

	out := make([]SubcategoryTotal, 0, len(totals))
	for _, row := range totals {
		if !row.Total.IsZero() {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MissingCategories returns the transactions whose category id is set but
// not present in categories. Their cached CategoryName is left as is.
func MissingCategories(txs []models.Transaction, categories []models.Category) []models.Transaction {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	out := make([]models.Transaction, 0)
	for _, t := range txs {
		if t.CategoryID != "" && !known[t.CategoryID] {
			out = append(out, t)
		}
	}
	return out
}
