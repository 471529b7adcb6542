package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// TransactionRow is the storage shape of a transaction. Money is split into
// four nullable directional columns: income fills the money-in columns and
// leaves money-out null, expenses do the opposite.
type TransactionRow struct {
	ID              string
	Date            string
	Description     string
	MoneyInGBP      decimal.NullDecimal
	MoneyOutGBP     decimal.NullDecimal
	MoneyInAED      decimal.NullDecimal
	MoneyOutAED     decimal.NullDecimal
	CategoryID      string
	CategoryName    string
	SubcategoryName string
	Notes           string
	Excluded        bool
	BankName        string
}

// ToRow converts a canonical transaction to its storage shape.
func ToRow(t models.Transaction) TransactionRow {
	row := TransactionRow{
		ID:              t.ID,
		Date:            t.Date,
		Description:     t.Description,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		SubcategoryName: t.SubcategoryName,
		Notes:           t.Notes,
		Excluded:        t.Excluded,
		BankName:        t.BankName,
	}
	if t.IsTemporary() {
		row.ID = ""
	}

	gbp := decimal.NewNullDecimal(t.Amount)
	var aed decimal.NullDecimal
	if t.AmountOriginal != nil {
		aed = decimal.NewNullDecimal(*t.AmountOriginal)
	}

	if t.Type == models.TypeIncome {
		row.MoneyInGBP, row.MoneyInAED = gbp, aed
	} else {
		row.MoneyOutGBP, row.MoneyOutAED = gbp, aed
	}
	return row
}

// FromRow converts a storage row back to a canonical transaction. It is the
// exact inverse of ToRow for amount, type and original amount.
func FromRow(r TransactionRow) models.Transaction {
	t := models.Transaction{
		ID:              r.ID,
		Date:            r.Date,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		CategoryName:    r.CategoryName,
		SubcategoryName: r.SubcategoryName,
		Notes:           r.Notes,
		Excluded:        r.Excluded,
		BankName:        r.BankName,
	}

	income := r.MoneyInGBP.Valid || (!r.MoneyOutGBP.Valid && r.MoneyInAED.Valid)
	gbp, aed := r.MoneyOutGBP, r.MoneyOutAED
	t.Type = models.TypeExpense
	if income {
		gbp, aed = r.MoneyInGBP, r.MoneyInAED
		t.Type = models.TypeIncome
	}

	t.Amount = decimal.Zero
	if gbp.Valid {
		t.Amount = gbp.Decimal
	}
	if aed.Valid {
		v := aed.Decimal
		t.AmountOriginal = &v
		t.OriginalCurrency = currency.AED
	}
	return t
}

func (r TransactionRow) RowID() string { return r.ID }

func (r TransactionRow) WithID(id string) TransactionRow {
	r.ID = id
	return r
}

func (r TransactionRow) Apply(columns map[string]any) (TransactionRow, error) {
	for col, v := range columns {
		var err error
		switch col {
		case models.ColumnDate:
			r.Date, err = asString(col, v)
		case models.ColumnDescription:
			r.Description, err = asString(col, v)
		case models.ColumnCategoryID:
			r.CategoryID, err = asString(col, v)
		case models.ColumnCategoryName:
			r.CategoryName, err = asString(col, v)
		case models.ColumnSubcategoryName:
			r.SubcategoryName, err = asString(col, v)
		case models.ColumnNotes:
			r.Notes, err = asString(col, v)
		case models.ColumnBankName:
			r.BankName, err = asString(col, v)
		case models.ColumnExcluded:
			b, ok := v.(bool)
			if !ok {
				err = fmt.Errorf("column %s expects bool, got %T", col, v)
			}
			r.Excluded = b
		default:
			err = fmt.Errorf("unknown transaction column: %s", col)
		}
		if err != nil {
			return TransactionRow{}, err
		}
	}
	return r, nil
}

// Category columns.
const (
	ColumnName          = "name"
	ColumnType          = "type"
	ColumnColor         = "color"
	ColumnSubcategories = "subcategories"
)

// CategoryRow is the storage shape of a category.
type CategoryRow struct {
	ID            string
	Name          string
	Type          string
	Color         string
	Subcategories []string
}

// CategoryToRow converts a category to its storage shape.
func CategoryToRow(c models.Category) CategoryRow {
	subs := append([]string{}, c.Subcategories...)
	return CategoryRow{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color, Subcategories: subs}
}

// CategoryFromRow converts a storage row to a category.
func CategoryFromRow(r CategoryRow) models.Category {
	subs := append([]string{}, r.Subcategories...)
	return models.Category{ID: r.ID, Name: r.Name, Type: models.TransactionType(r.Type), Color: r.Color, Subcategories: subs}
}

func (r CategoryRow) RowID() string { return r.ID }

func (r CategoryRow) WithID(id string) CategoryRow {
	r.ID = id
	return r
}

func (r CategoryRow) Apply(columns map[string]any) (CategoryRow, error) {
	for col, v := range columns {
		var err error
		switch col {
		case ColumnName:
			r.Name, err = asString(col, v)
		case ColumnType:
			r.Type, err = asString(col, v)
		case ColumnColor:
			r.Color, err = asString(col, v)
		case ColumnSubcategories:
			subs, ok := v.([]string)
			if !ok {
				err = fmt.Errorf("column %s expects []string, got %T", col, v)
			}
			r.Subcategories = append([]string{}, subs...)
		default:
			err = fmt.Errorf("unknown category column: %s", col)
		}
		if err != nil {
			return CategoryRow{}, err
		}
	}
	return r, nil
}

// Merchant mapping columns.
const (
	ColumnMerchantPattern = "merchant_pattern"
	ColumnCount           = "count"
)

// MerchantMappingRow is the storage shape of a merchant mapping.
type MerchantMappingRow struct {
	ID              string
	MerchantPattern string
	CategoryID      string
	CategoryName    string
	SubcategoryName string
	Count           int
}

// MappingToRow converts a mapping to its storage shape.
func MappingToRow(m models.MerchantMapping) MerchantMappingRow {
	return MerchantMappingRow(m)
}

// MappingFromRow converts a storage row to a mapping.
func MappingFromRow(r MerchantMappingRow) models.MerchantMapping {
	return models.MerchantMapping(r)
}

func (r MerchantMappingRow) RowID() string { return r.ID }

func (r MerchantMappingRow) WithID(id string) MerchantMappingRow {
	r.ID = id
	return r
}

func (r MerchantMappingRow) Apply(columns map[string]any) (MerchantMappingRow, error) {
	for col, v := range columns {
		var err error
		switch col {
		case ColumnMerchantPattern:
			r.MerchantPattern, err = asString(col, v)
		case models.ColumnCategoryID:
			r.CategoryID, err = asString(col, v)
		case models.ColumnCategoryName:
			r.CategoryName, err = asString(col, v)
		case models.ColumnSubcategoryName:
			r.SubcategoryName, err = asString(col, v)
		case ColumnCount:
			n, ok := v.(int)
			if !ok {
				err = fmt.Errorf("column %s expects int, got %T", col, v)
			}
			r.Count = n
		default:
			err = fmt.Errorf("unknown merchant mapping column: %s", col)
		}
		if err != nil {
			return MerchantMappingRow{}, err
		}
	}
	return r, nil
}

func asString(col string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %s expects string, got %T", col, v)
	}
	return s, nil
}
