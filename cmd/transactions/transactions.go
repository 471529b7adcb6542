// Package transactions handles listing and editing stored transactions
package transactions

import (
	"fmt"
	"sort"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/container"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Cmd represents the transactions command
var Cmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "List, add and edit transactions",
	Long:    `List, add and edit stored transactions. Edits are saved immediately and reverted if the store rejects them.`,
}

var (
	listRange   common.RangeFlags
	listFilter  common.FilterFlags
	listLimit   int
	listExclude bool

	entry       container.ManualEntry
	entryType   string
	entryAmount string

	updateCategory    string
	updateSubcategory string
	updateNotes       string
	updateDescription string
	updateDate        string
	updateRemember    bool

	undoExclude bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transaction by hand",
	Long: `Add a transaction by hand. Amounts in AED are converted to GBP and the
AED amount is kept as the original.`,
	Args: cobra.NoArgs,
	RunE: addFunc,
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of a transaction",
	Long: `Change fields of a transaction. Only the flags given are updated.
With --remember the description is recorded as a merchant mapping for the new category.`,
	Args: cobra.ExactArgs(1),
	RunE: updateFunc,
}

var excludeCmd = &cobra.Command{
	Use:   "exclude ID",
	Short: "Exclude a transaction from totals",
	Args:  cobra.ExactArgs(1),
	RunE:  excludeFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

func init() {
	listRange.Register(listCmd, aggregate.PresetAllTime)
	listFilter.Register(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most this many transactions (0 for all)")
	listCmd.Flags().BoolVar(&listExclude, "hide-excluded", false, "Hide excluded transactions")

	addCmd.Flags().StringVar(&entry.Date, "date", "", "Transaction date (default today)")
	addCmd.Flags().StringVarP(&entry.Description, "description", "d", "", "Description")
	addCmd.Flags().StringVarP(&entryAmount, "amount", "a", "", "Amount (positive)")
	addCmd.Flags().StringVar(&entry.Currency, "currency", "GBP", "Currency of the amount (GBP or AED)")
	addCmd.Flags().StringVarP(&entryType, "type", "t", string(models.TypeExpense), "INCOME or EXPENSE")
	addCmd.Flags().StringVarP(&entry.CategoryID, "category", "c", "", "Category id")
	addCmd.Flags().StringVar(&entry.Subcategory, "subcategory", "", "Subcategory name")
	addCmd.Flags().StringVarP(&entry.BankName, "bank", "b", "", "Bank name")
	addCmd.Flags().StringVar(&entry.Notes, "notes", "", "Free-form notes")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("amount")

	updateCmd.Flags().StringVarP(&updateCategory, "category", "c", "", "New category id")
	updateCmd.Flags().StringVar(&updateSubcategory, "subcategory", "", "New subcategory (with --category)")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "New notes")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVar(&updateDate, "date", "", "New date")
	updateCmd.Flags().BoolVar(&updateRemember, "remember", false, "Remember the category for this merchant")

	excludeCmd.Flags().BoolVar(&undoExclude, "undo", false, "Include the transaction again")

	Cmd.AddCommand(listCmd, addCmd, updateCmd, excludeCmd, deleteCmd)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	r, txs, err := common.Select(root.App.GetRepository().List(), listRange, listFilter, time.Now())
	if err != nil {
		return err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })

	registry := root.App.GetCategories()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d transactions\n", common.RangeLabel(r), len(txs))

	t := common.NewTable(out, "ID", "DATE", "TYPE", "AMOUNT", "CATEGORY", "BANK", "DESCRIPTION", "")
	shown := 0
	for _, tx := range txs {
		if listExclude && tx.IsExcluded() {
			continue
		}
		if listLimit > 0 && shown == listLimit {
			break
		}
		flag := ""
		if tx.IsExcluded() {
			flag = "excluded"
		}
		t.Row(tx.ID, tx.Date, string(tx.Type), common.Money(tx.Amount),
			common.CategoryLabel(tx, registry.IsMissing(tx)), tx.BankName, tx.Description, flag)
		shown++
	}
	return t.Flush()
}

func addFunc(cmd *cobra.Command, _ []string) error {
	if entry.Date == "" {
		entry.Date = dateutils.ToISODate(time.Now())
	}
	amount, err := decimal.NewFromString(entryAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", entryAmount, err)
	}
	typ, ok := models.ParseTransactionType(entryType)
	if !ok {
		return fmt.Errorf("invalid --type %q (INCOME or EXPENSE)", entryType)
	}
	entry.Amount = amount
	entry.Type = typ

	tx, err := root.App.AddTransaction(root.Context(cmd), entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s %s\n", tx.ID, tx.Date, common.Money(tx.Amount), tx.Description)
	return nil
}

func updateFunc(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx := root.Context(cmd)
	flags := cmd.Flags()

	if flags.Changed("subcategory") && !flags.Changed("category") {
		return fmt.Errorf("--subcategory needs --category")
	}
	if updateRemember && !flags.Changed("category") {
		return fmt.Errorf("--remember needs --category")
	}

	var patch models.TransactionPatch
	if flags.Changed("notes") {
		patch.Notes = models.Ptr(updateNotes)
	}
	if flags.Changed("description") {
		patch.Description = models.Ptr(updateDescription)
	}
	if flags.Changed("date") {
		iso, err := dateutils.NormalizeISO(updateDate)
		if err != nil {
			return err
		}
		patch.Date = models.Ptr(iso)
	}
	if patch.IsEmpty() && !flags.Changed("category") {
		return fmt.Errorf("nothing to update")
	}

	var (
		tx  models.Transaction
		err error
	)
	if flags.Changed("category") {
		if tx, err = root.App.Categorize(ctx, id, updateCategory, updateSubcategory, updateRemember); err != nil {
			return err
		}
	}
	if !patch.IsEmpty() {
		if tx, err = root.App.GetRepository().Update(ctx, id, patch); err != nil {
			return err
		}
	}

	root.Log.WithField(logging.FieldTransactionID, tx.ID).Debug("Transaction updated from CLI")
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s [%s]\n", tx.ID, tx.Date, tx.Description, common.CategoryLabel(tx, false))
	return nil
}

func excludeFunc(cmd *cobra.Command, args []string) error {
	tx, err := root.App.SetExcluded(root.Context(cmd), args[0], !undoExclude)
	if err != nil {
		return err
	}
	state := "excluded from"
	if !tx.IsExcluded() {
		state = "included in"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s totals\n", tx.ID, state)
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	if err := root.App.GetRepository().Delete(root.Context(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
