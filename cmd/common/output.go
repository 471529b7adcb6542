package common

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// Table writes aligned columns.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable starts a table with the given header row.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.Row(headers...)
	return t
}

// Row appends one row.
func (t *Table) Row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

// Flush writes the buffered rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}

// Money formats a primary-currency amount.
func Money(d decimal.Decimal) string {
	return currency.Format(d, currency.GBP)
}

// RangeLabel describes r for headings.
func RangeLabel(r models.DateRange) string {
	switch {
	case r.IsZero():
		return "All time"
	case r.Start == "":
		return "up to " + r.End
	case r.End == "":
		return "from " + r.Start
	case r.Label != "" && r.Label != "Custom":
		return fmt.Sprintf("%s (%s to %s)", r.Label, r.Start, r.End)
	default:
		return r.Start + " to " + r.End
	}
}

// CategoryLabel renders a transaction's category for listings.
func CategoryLabel(t models.Transaction, missing bool) string {
	switch {
	case t.CategoryID == "":
		return "-"
	case missing:
		return t.CategoryName + " (missing)"
	case t.SubcategoryName != "":
		return t.CategoryName + " / " + t.SubcategoryName
	default:
		return t.CategoryName
	}
}
