package models

import "strings"

// ReadyThreshold is the confirmation count at which a merchant mapping is
// applied automatically.
const ReadyThreshold = 3

// MerchantMapping remembers which category a merchant description was
// assigned to and how many times that assignment was confirmed.
type MerchantMapping struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	MerchantPattern string `json:"merchantPattern" yaml:"merchant_pattern"`
	CategoryID      string `json:"categoryId" yaml:"category_id"`
	CategoryName    string `json:"categoryName" yaml:"category_name"`
	SubcategoryName string `json:"subcategoryName" yaml:"subcategory_name"`
	Count           int    `json:"count" yaml:"count"`
}

// IsReady reports whether the mapping can be auto-applied.
func (m MerchantMapping) IsReady() bool {
	return m.Count >= ReadyThreshold
}

// NormalizePattern returns the lookup key for a merchant description.
// Matching is exact apart from case and surrounding whitespace.
func NormalizePattern(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}
