package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// MerchantSort selects how merchant groups are ordered.
type MerchantSort int

const (
	// SortByAmount orders by summed amount, largest first.
	SortByAmount MerchantSort = iota
	// SortBySignedMagnitude orders by the absolute value of the signed sum,
	// for lists that mix income and expenses such as excluded totals.
	SortBySignedMagnitude
)

// MerchantGroup aggregates transactions sharing one description. The
// Latest* fields come from the most recently dated transaction.
type MerchantGroup struct {
	Description       string          `json:"description"`
	Total             decimal.Decimal `json:"total"`
	SignedTotal       decimal.Decimal `json:"signedTotal"`
	Count             int             `json:"count"`
	LatestID          string          `json:"latestId"`
	LatestDate        string          `json:"latestDate"`
	LatestCategoryID  string          `json:"latestCategoryId"`
	LatestSubcategory string          `json:"latestSubcategory"`
}

// GroupByMerchant groups transactions by exact description.
func GroupByMerchant(txs []models.Transaction, order MerchantSort) []MerchantGroup {
	groups := make(map[string]*MerchantGroup)
	keys := make([]string, 0)
	for _, t := range txs {
		g, ok := groups[t.Description]
		if !ok {
			g = &MerchantGroup{Description: t.Description, Total: decimal.Zero, SignedTotal: decimal.Zero}
			groups[t.Description] = g
			keys = append(keys, t.Description)
		}
		g.Total = g.Total.Add(t.Amount)
		g.SignedTotal = g.SignedTotal.Add(t.SignedAmount())
		g.Count++
		if g.Count == 1 || t.Date >= g.LatestDate {
			g.LatestID = t.ID
			g.LatestDate = t.Date
			g.LatestCategoryID = t.CategoryID
			g.LatestSubcategory = t.SubcategoryName
		}
	}

	out := make([]MerchantGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *groups[k])
	}

	sortKey := func(g MerchantGroup) decimal.Decimal {
		if order == SortBySignedMagnitude {
			return g.SignedTotal.Abs()
		}
		return g.Total
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := sortKey(out[i]).Cmp(sortKey(out[j])); c != 0 {
			return c > 0
		}
		return out[i].Description < out[j].Description
	})
	return out
}
