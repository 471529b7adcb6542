// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// RangeFlags select a date range by preset or explicit bounds.
type RangeFlags struct {
	Preset string
	Start  string
	End    string
}

// Register adds the range flags to cmd with the given default preset.
func (f *RangeFlags) Register(cmd *cobra.Command, defaultPreset string) {
	cmd.Flags().StringVarP(&f.Preset, "range", "r", defaultPreset, fmt.Sprintf("Range preset %v", aggregate.Presets))
	cmd.Flags().StringVar(&f.Start, "from", "", "Range start date (overrides --range)")
	cmd.Flags().StringVar(&f.End, "to", "", "Range end date (overrides --range)")
}

// Resolve returns the selected range relative to now.
func (f RangeFlags) Resolve(now time.Time) (models.DateRange, error) {
	if f.Start == "" && f.End == "" {
		return aggregate.PresetRange(f.Preset, now)
	}
	r := models.DateRange{Label: "Custom"}
	var err error
	if f.Start != "" {
		if r.Start, err = dateutils.NormalizeISO(f.Start); err != nil {
			return r, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if f.End != "" {
		if r.End, err = dateutils.NormalizeISO(f.End); err != nil {
			return r, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if r.Start != "" && r.End != "" && r.End < r.Start {
		return r, fmt.Errorf("--to %s is before --from %s", r.End, r.Start)
	}
	return r, nil
}

// FilterFlags narrow a transaction list.
type FilterFlags struct {
	Category    string
	Subcategory string
	Bank        string
	Type        string
	Search      string
}

// Register adds the filter flags to cmd.
func (f *FilterFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Category, "category", "", "Only this category id")
	cmd.Flags().StringVar(&f.Subcategory, "subcategory", "", "Only this subcategory")
	cmd.Flags().StringVar(&f.Bank, "bank", "", "Only this bank")
	cmd.Flags().StringVar(&f.Type, "type", "", "Only INCOME or EXPENSE")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "Text to find in description or notes")
}

// Filter converts the flags.
func (f FilterFlags) Filter() (aggregate.Filter, error) {
	out := aggregate.Filter{
		CategoryID:  f.Category,
		Subcategory: f.Subcategory,
		BankName:    f.Bank,
		Search:      f.Search,
	}
	if f.Type != "" {
		t, ok := models.ParseTransactionType(f.Type)
		if !ok {
			return out, fmt.Errorf("invalid --type %q (INCOME or EXPENSE)", f.Type)
		}
		out.Type = t
	}
	return out, nil
}

// Select applies the range and filters to txs.
func Select(txs []models.Transaction, rf RangeFlags, ff FilterFlags, now time.Time) (models.DateRange, []models.Transaction, error) {
	r, err := rf.Resolve(now)
	if err != nil {
		return r, nil, err
	}
	f, err := ff.Filter()
	if err != nil {
		return r, nil, err
	}
	return r, aggregate.ApplyFilters(aggregate.FilterByDateRange(txs, r), f), nil
}
