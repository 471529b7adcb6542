package models

// Storage column names shared by every persistence backend.
const (
	ColumnDate            = "date"
	ColumnDescription     = "description"
	ColumnCategoryID      = "category_id"
	ColumnCategoryName    = "category_name"
	ColumnSubcategoryName = "subcategory_name"
	ColumnNotes           = "notes"
	ColumnExcluded        = "excluded"
	ColumnBankName        = "bank_name"
)

// TransactionPatch is a sparse update. A nil field is absent; a non-nil field
// is applied even when it points at a zero value.
type TransactionPatch struct {
	Date            *string `json:"date,omitempty"`
	Description     *string `json:"description,omitempty"`
	CategoryID      *string `json:"categoryId,omitempty"`
	CategoryName    *string `json:"categoryName,omitempty"`
	SubcategoryName *string `json:"subcategoryName,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Excluded        *bool   `json:"excluded,omitempty"`
	BankName        *string `json:"bankName,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p TransactionPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Apply merges the present fields into t and returns the result.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	out := t.Clone()
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.CategoryName != nil {
		out.CategoryName = *p.CategoryName
	}
	if p.SubcategoryName != nil {
		out.SubcategoryName = *p.SubcategoryName
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Excluded != nil {
		out.Excluded = *p.Excluded
	}
	if p.BankName != nil {
		out.BankName = *p.BankName
	}
	return out
}

// Columns returns the storage columns for the present fields only.
func (p TransactionPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Date != nil {
		cols[ColumnDate] = *p.Date
	}
	if p.Description != nil {
		cols[ColumnDescription] = *p.Description
	}
	if p.CategoryID != nil {
		cols[ColumnCategoryID] = *p.CategoryID
	}
	if p.CategoryName != nil {
		cols[ColumnCategoryName] = *p.CategoryName
	}
	if p.SubcategoryName != nil {
		cols[ColumnSubcategoryName] = *p.SubcategoryName
	}
	if p.Notes != nil {
		cols[ColumnNotes] = *p.Notes
	}
	if p.Excluded != nil {
		cols[ColumnExcluded] = *p.Excluded
	}
	if p.BankName != nil {
		cols[ColumnBankName] = *p.BankName
	}
	return cols
}

// Categorize builds a patch assigning a category and subcategory, keeping the
// exclusion flag in step with the reserved category.
func Categorize(categoryID, categoryName, subcategory string) TransactionPatch {
	excluded := categoryID == ExcludedCategoryID
	return TransactionPatch{
		CategoryID:      &categoryID,
		CategoryName:    &categoryName,
		SubcategoryName: &subcategory,
		Excluded:        &excluded,
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
