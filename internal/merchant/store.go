// Package merchant remembers which category each merchant description was
// assigned to and how often, so that imports can categorize familiar
// merchants automatically.
package merchant

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

// Store is the merchant mapping store. The in-memory map mirrors the last
// committed state of the backing table; it is only changed after the table
// accepted the write.
type Store struct {
	table    store.Table[store.MerchantMappingRow]
	logger   logging.Logger
	mu       sync.RWMutex
	mappings map[string]models.MerchantMapping // keyed by normalized pattern
}

// NewStore creates an empty store over table. Call Load to read existing
// mappings.
func NewStore(table store.Table[store.MerchantMappingRow], logger logging.Logger) *Store {
	return &Store{
		table:    table,
		logger:   logging.OrDefault(logger).WithField(logging.FieldComponent, "merchant"),
		mappings: make(map[string]models.MerchantMapping, 100),
	}
}

// Load replaces the local view with the contents of the table.
func (s *Store) Load(ctx context.Context) error {
	rows, err := s.table.SelectAll(ctx)
	if err != nil {
		return err
	}

	loaded := make(map[string]models.MerchantMapping, len(rows))
	for _, r := range rows {
		m := store.MappingFromRow(r)
		loaded[models.NormalizePattern(m.MerchantPattern)] = m
	}

	s.mu.Lock()
	s.mappings = loaded
	s.mu.Unlock()

	s.logger.WithField(logging.FieldCount, len(loaded)).Debug("Loaded merchant mappings")
	return nil
}

// Lookup finds the mapping whose pattern equals description, ignoring case.
func (s *Store) Lookup(description string) (models.MerchantMapping, bool) {
	key := models.NormalizePattern(description)
	if key == "" {
		return models.MerchantMapping{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[key]
	return m, ok
}

// IsReady reports whether a mapping has been confirmed often enough to be
// applied automatically.
func IsReady(m models.MerchantMapping) bool {
	return m.IsReady()
}

// List returns all mappings, most confirmed first.
func (s *Store) List() []models.MerchantMapping {
	s.mu.RLock()
	out := make([]models.MerchantMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	s.mu.RUnlock()

	sortMappings(out)
	return out
}

// RecordConfirmation counts one more assignment of description to the given
// category. An existing mapping is incremented and takes the latest
// categorization; otherwise a mapping is created with count 1.
func (s *Store) RecordConfirmation(ctx context.Context, description, categoryID, categoryName, subcategory string) (models.MerchantMapping, error) {
	key := models.NormalizePattern(description)
	if key == "" {
		return models.MerchantMapping{}, errors.New("merchant description is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.mappings[key]
	if !ok {
		m := models.MerchantMapping{
			MerchantPattern: strings.TrimSpace(description),
			CategoryID:      categoryID,
			CategoryName:    categoryName,
			SubcategoryName: subcategory,
			Count:           1,
		}
		return s.insertLocked(ctx, key, m)
	}

	m := existing
	m.CategoryID = categoryID
	m.CategoryName = categoryName
	m.SubcategoryName = subcategory
	m.Count = existing.Count + 1
	return s.updateLocked(ctx, key, m)
}

// ConfirmCategorization is the explicit trigger for counting a manual
// categorization. Callers decide when a save counts as a confirmation.
func (s *Store) ConfirmCategorization(ctx context.Context, description, categoryID, categoryName, subcategory string) (models.MerchantMapping, error) {
	return s.RecordConfirmation(ctx, description, categoryID, categoryName, subcategory)
}

// Delete removes the mapping for pattern.
func (s *Store) Delete(ctx context.Context, pattern string) error {
	key := models.NormalizePattern(pattern)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[key]
	if !ok {
		return &apperror.NotFoundError{Entity: "merchant mapping", Key: pattern}
	}
	if err := s.table.Delete(ctx, m.ID); err != nil {
		s.logger.WithError(err).WithField(logging.FieldMerchant, pattern).Error("Failed to delete merchant mapping")
		return err
	}
	delete(s.mappings, key)

	s.logger.WithField(logging.FieldMerchant, m.MerchantPattern).Info("Deleted merchant mapping")
	return nil
}

func (s *Store) insertLocked(ctx context.Context, key string, m models.MerchantMapping) (models.MerchantMapping, error) {
	ids, err := s.table.Insert(ctx, store.MappingToRow(m))
	if err == nil && len(ids) != 1 {
		err = &apperror.BatchError{Requested: 1, Acknowledged: len(ids)}
	}
	if err != nil {
		s.logger.WithError(err).WithField(logging.FieldMerchant, m.MerchantPattern).Error("Failed to create merchant mapping")
		return models.MerchantMapping{}, err
	}

	m.ID = ids[0]
	s.mappings[key] = m
	s.logger.WithFields(
		logging.F(logging.FieldMerchant, m.MerchantPattern),
		logging.F(logging.FieldCategory, m.CategoryID),
		logging.F(logging.FieldCount, m.Count),
	).Debug("Created merchant mapping")
	return m, nil
}

func (s *Store) updateLocked(ctx context.Context, key string, m models.MerchantMapping) (models.MerchantMapping, error) {
	err := s.table.Update(ctx, m.ID, map[string]any{
		models.ColumnCategoryID:      m.CategoryID,
		models.ColumnCategoryName:    m.CategoryName,
		models.ColumnSubcategoryName: m.SubcategoryName,
		store.ColumnCount:            m.Count,
	})
	if err != nil {
		s.logger.WithError(err).WithField(logging.FieldMerchant, m.MerchantPattern).Error("Failed to update merchant mapping")
		return models.MerchantMapping{}, err
	}

	s.mappings[key] = m
	s.logger.WithFields(
		logging.F(logging.FieldMerchant, m.MerchantPattern),
		logging.F(logging.FieldCategory, m.CategoryID),
		logging.F(logging.FieldCount, m.Count),
	).Debug("Updated merchant mapping")
	return m, nil
}

func sortMappings(ms []models.MerchantMapping) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Count != ms[j].Count {
			return ms[i].Count > ms[j].Count
		}
		return ms[i].MerchantPattern < ms[j].MerchantPattern
	})
}
