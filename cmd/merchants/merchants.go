// Package merchants handles merchant totals and learned merchant mappings
package merchants

import (
	"fmt"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"

	"github.com/spf13/cobra"
)

var (
	rangeFlags   common.RangeFlags
	filterFlags  common.FilterFlags
	showExcluded bool
	limit        int

	confirmCategory    string
	confirmSubcategory string

	applyBackfill bool
)

// Cmd represents the merchants command
var Cmd = &cobra.Command{
	Use:   "merchants",
	Short: "Merchant totals and learned merchant mappings",
	Long: `Merchant totals and learned merchant mappings. A mapping is applied
automatically on import once it has been confirmed 3 times.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group transactions by description",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List learned merchant mappings",
	Args:  cobra.NoArgs,
	RunE:  mappingsFunc,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm DESCRIPTION",
	Short: "Confirm a category for a merchant description",
	Args:  cobra.ExactArgs(1),
	RunE:  confirmFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete PATTERN",
	Short: "Forget a merchant mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild merchant mappings from categorized transactions",
	Long: `Rebuild merchant mappings from categorized transactions. Each description
takes its most recent categorization and the number of transactions sharing it
as the count. Without --apply only the preview is shown.`,
	Args: cobra.NoArgs,
	RunE: backfillFunc,
}

func init() {
	rangeFlags.Register(listCmd, aggregate.PresetThisMonth)
	filterFlags.Register(listCmd)
	listCmd.Flags().BoolVar(&showExcluded, "excluded", false, "Group excluded transactions instead")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many merchants (0 for all)")

	confirmCmd.Flags().StringVarP(&confirmCategory, "category", "c", "", "Category id")
	confirmCmd.Flags().StringVar(&confirmSubcategory, "subcategory", "", "Subcategory name")
	_ = confirmCmd.MarkFlagRequired("category")

	backfillCmd.Flags().BoolVar(&applyBackfill, "apply", false, "Write the previewed mappings")

	Cmd.AddCommand(listCmd, mappingsCmd, confirmCmd, deleteCmd, backfillCmd)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	r, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags, filterFlags, time.Now())
	if err != nil {
		return err
	}
	active, excluded := aggregate.PartitionActive(txs)
	groups := aggregate.GroupByMerchant(active, aggregate.SortByAmount)
	total := "TOTAL"
	if showExcluded {
		groups = aggregate.GroupByMerchant(excluded, aggregate.SortBySignedMagnitude)
		total = "NET"
	}
	if limit > 0 && limit < len(groups) {
		groups = groups[:limit]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, common.RangeLabel(r))
	t := common.NewTable(out, "MERCHANT", total, "COUNT", "LATEST", "CATEGORY")
	for _, g := range groups {
		amount := common.Money(g.Total)
		if showExcluded {
			amount = common.Money(g.SignedTotal)
		}
		cat := g.LatestCategoryID
		if g.LatestSubcategory != "" {
			cat += " / " + g.LatestSubcategory
		}
		t.Row(g.Description, amount, fmt.Sprint(g.Count), g.LatestDate, cat)
	}
	return t.Flush()
}

func mappingsFunc(cmd *cobra.Command, _ []string) error {
	printMappings(cmd, root.App.GetMerchants().List())
	return nil
}

func printMappings(cmd *cobra.Command, mappings []models.MerchantMapping) {
	t := common.NewTable(cmd.OutOrStdout(), "MERCHANT", "CATEGORY", "SUBCATEGORY", "COUNT", "")
	for _, m := range mappings {
		ready := ""
		if m.IsReady() {
			ready = "auto"
		}
		t.Row(m.MerchantPattern, m.CategoryName, m.SubcategoryName, fmt.Sprint(m.Count), ready)
	}
	_ = t.Flush()
}

func confirmFunc(cmd *cobra.Command, args []string) error {
	m, err := root.App.RememberMerchant(root.Context(cmd), args[0], confirmCategory, confirmSubcategory)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d/%d confirmations)\n", m.MerchantPattern, m.CategoryName, m.Count, models.ReadyThreshold)
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	if err := root.App.GetMerchants().Delete(root.Context(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted mapping %s\n", args[0])
	return nil
}

func backfillFunc(cmd *cobra.Command, _ []string) error {
	ms := root.App.GetMerchants()
	items := ms.PreviewBackfill(root.App.GetRepository().List())
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No categorized transactions to learn from")
		return nil
	}
	printMappings(cmd, items)
	if !applyBackfill {
		fmt.Fprintf(out, "\n%d mappings previewed; run with --apply to save them\n", len(items))
		return nil
	}

	committed, err := ms.ExecuteBackfill(root.Context(cmd), items)
	if err != nil {
		root.Log.WithError(err).WithField(logging.FieldCount, committed).Error("Backfill stopped")
		return fmt.Errorf("saved %d of %d mappings: %w", committed, len(items), err)
	}
	fmt.Fprintf(out, "\nSaved %d mappings\n", committed)
	return nil
}
