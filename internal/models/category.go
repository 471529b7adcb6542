package models

import "slices"

// Reserved category values.
const (
	ExcludedCategoryID   = "excluded"
	ExcludedCategoryName = "Excluded"
	UncategorizedID      = "uncategorized"
	UncategorizedName    = "Uncategorized"
	NeutralColor         = "#9CA3AF"
)

// Category is an entry of the category registry. Subcategories are unique
// strings in display order.
type Category struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Type          TransactionType `json:"type" yaml:"type"`
	Color         string          `json:"color" yaml:"color"`
	Subcategories []string        `json:"subcategories" yaml:"subcategories"`
}

// IsSentinel reports whether the category is the reserved "excluded" entry.
func (c Category) IsSentinel() bool {
	return c.ID == ExcludedCategoryID
}

// HasSubcategory reports whether name is already listed.
func (c Category) HasSubcategory(name string) bool {
	return slices.Contains(c.Subcategories, name)
}

// AcceptsType reports whether a transaction of type t may select the category
// under normal flows. The excluded sentinel accepts both types.
func (c Category) AcceptsType(t TransactionType) bool {
	return c.IsSentinel() || c.Type == t
}

// Clone returns a copy with its own subcategory slice.
func (c Category) Clone() Category {
	c.Subcategories = slices.Clone(c.Subcategories)
	return c
}

// ExcludedCategory returns the reserved sentinel category.
func ExcludedCategory() Category {
	return Category{
		ID:            ExcludedCategoryID,
		Name:          ExcludedCategoryName,
		Type:          TypeExpense,
		Color:         NeutralColor,
		Subcategories: []string{},
	}
}
