// Package importcmd handles the import command
package importcmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/fileutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/importer"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"

	"github.com/spf13/cobra"
)

var (
	bankName string
	dryRun   bool
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import FILE|DIR...",
	Short: "Import transactions from bank CSV exports",
	Long: `Import transactions from bank CSV exports. Directories are searched for
.csv files, which are imported one after the other.

Per-currency columns (Money In/Out - GBP, Money In/Out - AED) are used when
present, otherwise a single signed Amount column in the bank's currency.
Descriptions with a confirmed merchant mapping are categorized automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&bankName, "bank", "b", "", "Account the files belong to (default from config)")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and show the result without storing anything")
}

func importFunc(cmd *cobra.Command, args []string) error {
	files, err := fileutils.ExpandPaths(args, ".csv")
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range files {
		if len(files) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", path)
		}
		if err := importFile(cmd, path); err != nil {
			if len(files) == 1 {
				return err
			}
			root.Log.WithError(err).WithField(logging.FieldFile, path).Error("Import failed")
			fmt.Fprintf(cmd.OutOrStdout(), "Failed: %s\n", apperror.UserMessage(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

func importFile(cmd *cobra.Command, path string) error {
	data, err := fileutils.ReadFile(path, fileutils.MaxInputBytes)
	if err != nil {
		return err
	}

	opts := root.App.ImportOptions(filepath.Base(path), bankName)
	root.Log.WithFields(
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldBank, opts.DefaultBank.Name),
	).Info("Importing file")

	if dryRun {
		result, err := root.App.GetImporter().Preview(data, opts)
		if err != nil {
			return err
		}
		return printPreview(cmd, result)
	}

	outcome, err := root.App.GetImporter().Import(root.Context(cmd), data, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome.Message())
	return nil
}

func printPreview(cmd *cobra.Command, result *importer.Result) error {
	out := cmd.OutOrStdout()
	l := result.Layout
	fmt.Fprintf(out, "Columns: %s\n", strings.Join(l.Headers, ", "))
	for _, c := range [][2]string{
		{"date", l.Date}, {"description", l.Description},
		{"money in GBP", l.MoneyInGBP}, {"money out GBP", l.MoneyOutGBP},
		{"money in AED", l.MoneyInAED}, {"money out AED", l.MoneyOutAED},
		{"bank", l.Bank}, {"amount", l.Amount},
	} {
		if c[1] != "" {
			fmt.Fprintf(out, "  %-14s <- %s\n", c[0], c[1])
		}
	}
	fmt.Fprintf(out, "%d rows parsed, %d auto-categorized, %d skipped, %d dated today\n\n",
		result.Parsed, result.AutoCategorized, result.Skipped, result.DateFallbacks)

	t := common.NewTable(out, "DATE", "TYPE", "AMOUNT", "ORIGINAL", "CATEGORY", "BANK", "DESCRIPTION")
	for _, d := range result.Drafts {
		original := ""
		if d.AmountOriginal != nil {
			original = d.AmountOriginal.StringFixed(2) + " " + d.OriginalCurrency
		}
		t.Row(d.Date, string(d.Type), common.Money(d.Amount), original, common.CategoryLabel(d, false), d.BankName, d.Description)
	}
	return t.Flush()
}
