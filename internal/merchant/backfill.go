package merchant

import (
	"context"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// PreviewBackfill builds mapping candidates from transactions that are
// already categorized and not excluded. Transactions are grouped by
// normalized description, the same key mappings are stored under; each
// candidate carries the description and categorization of the group's most
// recent transaction and the group size as its count. The store is not
// touched.
func PreviewBackfill(transactions []models.Transaction) []models.MerchantMapping {
	type group struct {
		latest models.Transaction
		count  int
	}

	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, t := range transactions {
		if !t.IsCategorized() || t.IsExcluded() {
			continue
		}
		key := models.NormalizePattern(t.Description)
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{latest: t, count: 1}
			order = append(order, key)
			continue
		}
		g.count++
		if t.Date >= g.latest.Date {
			g.latest = t
		}
	}

	out := make([]models.MerchantMapping, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, models.MerchantMapping{
			MerchantPattern: g.latest.Description,
			CategoryID:      g.latest.CategoryID,
			CategoryName:    g.latest.CategoryName,
			SubcategoryName: g.latest.SubcategoryName,
			Count:           g.count,
		})
	}
	sortMappings(out)
	return out
}

// PreviewBackfill is a convenience for the package-level function.
func (s *Store) PreviewBackfill(transactions []models.Transaction) []models.MerchantMapping {
	return PreviewBackfill(transactions)
}

// ExecuteBackfill upserts items by pattern. Each item is authoritative: its
// count replaces any existing count. It stops at the first failed write and
// returns how many items were committed before it.
func (s *Store) ExecuteBackfill(ctx context.Context, items []models.MerchantMapping) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	committed := 0
	for _, item := range items {
		key := models.NormalizePattern(item.MerchantPattern)
		if key == "" {
			continue
		}

		var err error
		if existing, ok := s.mappings[key]; ok {
			item.ID = existing.ID
			item.MerchantPattern = existing.MerchantPattern
			_, err = s.updateLocked(ctx, key, item)
		} else {
			item.ID = ""
			_, err = s.insertLocked(ctx, key, item)
		}
		if err != nil {
			return committed, err
		}
		committed++
	}

	s.logger.WithField(logging.FieldCount, committed).Info("Merchant backfill committed")
	return committed, nil
}
