// Package summary handles the summary command
package summary

import (
	"fmt"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"

	"github.com/spf13/cobra"
)

var (
	rangeFlags  common.RangeFlags
	filterFlags common.FilterFlags
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income, expenses and balance for a date range",
	Long: `Show income, expenses and balance for a date range. Excluded transactions
are reported separately and never counted in the totals. Monthly averages are
taken over completed months only.`,
	Args: cobra.NoArgs,
	RunE: summaryFunc,
}

func init() {
	rangeFlags.Register(Cmd, aggregate.PresetThisMonth)
	filterFlags.Register(Cmd)
}

func summaryFunc(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	r, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags, filterFlags, now)
	if err != nil {
		return err
	}
	o := aggregate.BuildOverview(txs, r, now, root.App.KnownCategory)
	n := root.App.GetNormalizer()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, common.RangeLabel(o.Range))
	t := common.NewTable(out, "", n.Primary, n.Secondary, "COUNT")
	t.Row("Income", common.Money(o.Summary.TotalIncome), n.ToSecondary(o.Summary.TotalIncome).StringFixed(2), fmt.Sprint(o.Summary.IncomeCount))
	t.Row("Expenses", common.Money(o.Summary.TotalExpense), n.ToSecondary(o.Summary.TotalExpense).StringFixed(2), fmt.Sprint(o.Summary.ExpenseCount))
	t.Row("Balance", common.Money(o.Summary.Balance), n.ToSecondary(o.Summary.Balance).StringFixed(2), "")
	t.Row("Excluded", common.Money(o.ExcludedTotal), n.ToSecondary(o.ExcludedTotal).StringFixed(2), fmt.Sprint(o.ExcludedCount))
	if err := t.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nAverage per month over %d completed months: income %s, expenses %s\n",
		o.CompletedMonths, common.Money(o.AverageMonthlyIncome), common.Money(o.AverageMonthlyExpense))
	fmt.Fprintf(out, "Savings rate: %s%%\n", o.SavingsRate.StringFixed(2))
	if o.UncategorizedCount > 0 || o.MissingCategoryCount > 0 {
		fmt.Fprintf(out, "%d uncategorized, %d with a deleted category\n", o.UncategorizedCount, o.MissingCategoryCount)
	}
	return nil
}
