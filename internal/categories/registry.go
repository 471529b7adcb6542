// Package categories is the category registry: the vocabulary of categories
// and subcategories used for classification and aggregation.
package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

// Registry holds categories in display order. Writes go to the backing table
// first; the local list changes only once the table accepted them.
type Registry struct {
	table  store.Table[store.CategoryRow]
	logger logging.Logger
	mu     sync.RWMutex
	items  []models.Category
}

// Update holds the category fields that can change after creation.
type Update struct {
	Name  *string
	Color *string
	Type  *models.TransactionType
}

// NewRegistry creates a registry containing only the excluded sentinel.
func NewRegistry(table store.Table[store.CategoryRow], logger logging.Logger) *Registry {
	return &Registry{
		table:  table,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "categories"),
		items:  []models.Category{models.ExcludedCategory()},
	}
}

// Load reads categories from the table. An empty table is populated with
// seed. The excluded sentinel is created if the table lacks it.
func (r *Registry) Load(ctx context.Context, seed []models.Category) error {
	rows, err := r.table.SelectAll(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 && len(seed) > 0 {
		seedRows := make([]store.CategoryRow, 0, len(seed))
		for _, c := range seed {
			seedRows = append(seedRows, store.CategoryToRow(c))
		}
		if _, err := r.table.Insert(ctx, seedRows...); err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
		r.logger.WithField(logging.FieldCount, len(seedRows)).Info("Seeded category registry")
		rows = seedRows
	}

	items := make([]models.Category, 0, len(rows)+1)
	hasSentinel := false
	for _, row := range rows {
		c := store.CategoryFromRow(row)
		if c.IsSentinel() {
			hasSentinel = true
		}
		items = append(items, c)
	}

	if !hasSentinel {
		sentinel := models.ExcludedCategory()
		if _, err := r.table.Insert(ctx, store.CategoryToRow(sentinel)); err != nil {
			return fmt.Errorf("creating excluded category: %w", err)
		}
		items = append(items, sentinel)
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()

	r.logger.WithField(logging.FieldCount, len(items)).Debug("Loaded categories")
	return nil
}

// List returns copies of all categories in display order.
func (r *Registry) List() []models.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Category, len(r.items))
	for i, c := range r.items {
		out[i] = c.Clone()
	}
	return out
}

// ListByType returns the categories selectable for transactions of type t,
// the excluded sentinel included.
func (r *Registry) ListByType(t models.TransactionType) []models.Category {
	var out []models.Category
	for _, c := range r.List() {
		if c.AcceptsType(t) {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the category with id.
func (r *Registry) Get(id string) (models.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return models.Category{}, false
	}
	return r.items[i].Clone(), true
}

// Resolve returns the display name and color for a category id. Ids that
// are not registered resolve to the neutral "Uncategorized" entry; missing
// is true when a non-empty id no longer exists.
func (r *Registry) Resolve(id string) (name, color string, missing bool) {
	if c, ok := r.Get(id); ok {
		return c.Name, c.Color, false
	}
	return models.UncategorizedName, models.NeutralColor, id != ""
}

// IsMissing reports whether t references a category the registry no longer
// holds. Its cached CategoryName remains valid for display.
func (r *Registry) IsMissing(t models.Transaction) bool {
	_, _, missing := r.Resolve(t.CategoryID)
	return missing
}

// Create adds a category. An empty ID is derived from the name.
func (r *Registry) Create(ctx context.Context, c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return models.Category{}, errors.New("category name is required")
	}
	if !c.Type.Valid() {
		return models.Category{}, fmt.Errorf("invalid category type %q", c.Type)
	}
	if c.ID == "" {
		c.ID = Slug(c.Name)
	}
	if c.Color == "" {
		c.Color = models.NeutralColor
	}
	c.Subcategories = dedupe(c.Subcategories)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(c.ID) >= 0 {
		return models.Category{}, fmt.Errorf("category %s already exists", c.ID)
	}
	if _, err := r.table.Insert(ctx, store.CategoryToRow(c)); err != nil {
		r.logger.WithError(err).WithField(logging.FieldCategory, c.ID).Error("Failed to create category")
		return models.Category{}, err
	}

	r.items = append(r.items, c)
	r.logger.WithField(logging.FieldCategory, c.ID).Info("Created category")
	return c.Clone(), nil
}

// Update changes name, color or type of a category. Transactions keep the
// category name they were saved with.
func (r *Registry) Update(ctx context.Context, id string, u Update) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return models.Category{}, &apperror.NotFoundError{Entity: "category", Key: id}
	}

	next := r.items[i].Clone()
	cols := make(map[string]any)
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return models.Category{}, errors.New("category name is required")
		}
		next.Name = name
		cols[store.ColumnName] = name
	}
	if u.Color != nil {
		next.Color = *u.Color
		cols[store.ColumnColor] = *u.Color
	}
	if u.Type != nil {
		if !u.Type.Valid() {
			return models.Category{}, fmt.Errorf("invalid category type %q", *u.Type)
		}
		next.Type = *u.Type
		cols[store.ColumnType] = string(*u.Type)
	}
	if len(cols) == 0 {
		return next, nil
	}

	if err := r.table.Update(ctx, id, cols); err != nil {
		r.logger.WithError(err).WithField(logging.FieldCategory, id).Error("Failed to update category")
		return models.Category{}, err
	}
	r.items[i] = next
	return next.Clone(), nil
}

// Delete removes a category. Transactions referencing it are left untouched
// and show up as category missing. The excluded sentinel cannot be deleted.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if id == models.ExcludedCategoryID {
		return &apperror.ProtectedCategoryError{ID: id}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return &apperror.NotFoundError{Entity: "category", Key: id}
	}
	if err := r.table.Delete(ctx, id); err != nil {
		r.logger.WithError(err).WithField(logging.FieldCategory, id).Error("Failed to delete category")
		return err
	}

	r.items = slices.Delete(r.items, i, i+1)
	r.logger.WithField(logging.FieldCategory, id).Info("Deleted category")
	return nil
}

// AddSubcategory appends name to the category's list. Adding a name that is
// already present does nothing.
func (r *Registry) AddSubcategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("subcategory name is required")
	}

	return r.editSubcategories(ctx, id, func(subs []string) []string {
		if slices.Contains(subs, name) {
			return nil
		}
		return append(subs, name)
	})
}

// DeleteSubcategory removes name from the category's list.
func (r *Registry) DeleteSubcategory(ctx context.Context, id, name string) error {
	return r.editSubcategories(ctx, id, func(subs []string) []string {
		if !slices.Contains(subs, name) {
			return nil
		}
		return slices.DeleteFunc(subs, func(s string) bool { return s == name })
	})
}

// editSubcategories applies edit to a copy of the list; a nil result means
// there is nothing to write.
func (r *Registry) editSubcategories(ctx context.Context, id string, edit func([]string) []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return &apperror.NotFoundError{Entity: "category", Key: id}
	}

	subs := edit(slices.Clone(r.items[i].Subcategories))
	if subs == nil {
		return nil
	}
	if err := r.table.Update(ctx, id, map[string]any{store.ColumnSubcategories: subs}); err != nil {
		r.logger.WithError(err).WithField(logging.FieldCategory, id).Error("Failed to update subcategories")
		return err
	}
	r.items[i].Subcategories = subs
	return nil
}

func (r *Registry) indexLocked(id string) int {
	return slices.IndexFunc(r.items, func(c models.Category) bool { return c.ID == id })
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a category id from a display name.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
