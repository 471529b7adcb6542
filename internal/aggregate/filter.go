// Package aggregate derives summaries, breakdowns, merchant groups and trend
// series from a transaction list. Every function is pure: results depend only
// on the arguments, and inputs are never modified.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// FilterByDateRange keeps transactions dated within r, both ends inclusive.
// A zero range keeps everything.
func FilterByDateRange(txs []models.Transaction, r models.DateRange) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if r.IsZero() || r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// PartitionActive splits transactions into those counted in totals and
// those excluded from them.
func PartitionActive(txs []models.Transaction) (active, excluded []models.Transaction) {
	active = make([]models.Transaction, 0, len(txs))
	excluded = make([]models.Transaction, 0)
	for _, t := range txs {
		if t.IsExcluded() {
			excluded = append(excluded, t)
		} else {
			active = append(active, t)
		}
	}
	return active, excluded
}

// Filter narrows a transaction list. Zero fields do not filter.
type Filter struct {
	CategoryID  string
	Subcategory string
	BankName    string
	Type        models.TransactionType
	// Search matches description or notes, ignoring case.
	Search string
}

// IsZero reports whether the filter lets everything through.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t models.Transaction) bool {
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.Subcategory != "" && t.SubcategoryName != f.Subcategory {
		return false
	}
	if f.BankName != "" && !strings.EqualFold(t.BankName, f.BankName) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), q) && !strings.Contains(strings.ToLower(t.Notes), q) {
			return false
		}
	}
	return true
}

// ApplyFilters keeps the transactions that match f.
func ApplyFilters(txs []models.Transaction, f Filter) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Preset range names.
const (
	PresetThisMonth    = "this_month"
	PresetLastMonth    = "last_month"
	PresetLast3Months  = "last_3_months"
	PresetLast6Months  = "last_6_months"
	PresetLast12Months = "last_12_months"
	PresetYearToDate   = "year_to_date"
	PresetAllTime      = "all_time"
)

// Presets lists the supported preset names.
var Presets = []string{
	PresetThisMonth, PresetLastMonth, PresetLast3Months, PresetLast6Months,
	PresetLast12Months, PresetYearToDate, PresetAllTime,
}

// PresetRange returns the labelled range for a preset name relative to now.
// Rolling ranges end today and start on the first day of the earliest month.
func PresetRange(name string, now time.Time) (models.DateRange, error) {
	today := dateutils.Day(now)
	iso := dateutils.ToISODate
	rolling := func(months int, label string) models.DateRange {
		start := dateutils.StartOfMonth(today).AddDate(0, -(months - 1), 0)
		return models.DateRange{Start: iso(start), End: iso(today), Label: label}
	}

	switch name {
	case PresetThisMonth:
		return models.DateRange{Start: iso(dateutils.StartOfMonth(today)), End: iso(dateutils.EndOfMonth(today)), Label: "This month"}, nil
	case PresetLastMonth:
		end := dateutils.EndOfPreviousMonth(today)
		return models.DateRange{Start: iso(dateutils.StartOfMonth(end)), End: iso(end), Label: "Last month"}, nil
	case PresetLast3Months:
		return rolling(3, "Last 3 months"), nil
	case PresetLast6Months:
		return rolling(6, "Last 6 months"), nil
	case PresetLast12Months:
		return rolling(12, "Last 12 months"), nil
	case PresetYearToDate:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return models.DateRange{Start: iso(start), End: iso(today), Label: "Year to date"}, nil
	case PresetAllTime:
		return models.DateRange{Label: "All time"}, nil
	default:
		return models.DateRange{}, fmt.Errorf("unknown range preset %q (valid: %s)", name, strings.Join(Presets, ", "))
	}
}

// DataRange returns the span covered by the transactions' dates.
func DataRange(txs []models.Transaction) (models.DateRange, bool) {
	if len(txs) == 0 {
		return models.DateRange{}, false
	}
	r := models.DateRange{Start: txs[0].Date, End: txs[0].Date}
	for _, t := range txs[1:] {
		if t.Date < r.Start {
			r.Start = t.Date
		}
		if t.Date > r.End {
			r.End = t.Date
		}
	}
	return r, true
}
