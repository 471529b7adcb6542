// Package breakdown handles the breakdown command
package breakdown

import (
	"fmt"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"

	"github.com/spf13/cobra"
)

var (
	rangeFlags common.RangeFlags
	bank       string
	typeFilter string
	category   string
)

// Cmd represents the breakdown command
var Cmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Show totals per category, or per subcategory of one category",
	Long: `Show totals per category over a date range, largest first. Transactions
without a category, or whose category was deleted, are pooled under
Uncategorized. With --category the category is split by subcategory.`,
	Args: cobra.NoArgs,
	RunE: breakdownFunc,
}

func init() {
	rangeFlags.Register(Cmd, aggregate.PresetThisMonth)
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Break down this category by subcategory")
	Cmd.Flags().StringVar(&bank, "bank", "", "Only this bank")
	Cmd.Flags().StringVar(&typeFilter, "type", "", "Only INCOME or EXPENSE")
}

func breakdownFunc(cmd *cobra.Command, _ []string) error {
	r, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags,
		common.FilterFlags{Bank: bank, Type: typeFilter}, time.Now())
	if err != nil {
		return err
	}
	active, _ := aggregate.PartitionActive(txs)
	out := cmd.OutOrStdout()

	if category != "" {
		name := category
		if c, ok := root.App.GetCategories().Get(category); ok {
			name = c.Name
		}
		fmt.Fprintf(out, "%s, %s\n", name, common.RangeLabel(r))
		t := common.NewTable(out, "SUBCATEGORY", "TOTAL", "COUNT")
		for _, row := range aggregate.SubcategoryBreakdown(active, category) {
			t.Row(row.Name, common.Money(row.Total), fmt.Sprint(row.Count))
		}
		return t.Flush()
	}

	fmt.Fprintln(out, common.RangeLabel(r))
	t := common.NewTable(out, "CATEGORY", "TOTAL", "COUNT", "")
	for _, row := range aggregate.CategoryBreakdown(active, root.App.GetCategories().List()) {
		note := ""
		if row.Missing {
			note = "includes deleted categories"
		}
		t.Row(row.Name, common.Money(row.Total), fmt.Sprint(row.Count), note)
	}
	return t.Flush()
}
