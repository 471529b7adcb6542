// Package export handles exporting transactions to CSV
package export

import (
	"sort"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	csvutil "github.com/tomwattsa3/wealthwisetracker-sub000/internal/common"

	"github.com/spf13/cobra"
)

var (
	rangeFlags  common.RangeFlags
	filterFlags common.FilterFlags
	output      string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV",
	Long: `Export transactions to CSV, oldest first, with per-currency money columns.
The file can be imported again.`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	rangeFlags.Register(Cmd, aggregate.PresetAllTime)
	filterFlags.Register(Cmd)
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
}

func exportFunc(cmd *cobra.Command, _ []string) error {
	_, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags, filterFlags, time.Now())
	if err != nil {
		return err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date < txs[j].Date })

	n := root.App.GetNormalizer()
	if output == "" {
		return csvutil.WriteTransactionsCSV(cmd.OutOrStdout(), txs, n, csvutil.Delimiter)
	}
	return csvutil.WriteTransactionsToCSV(txs, output, n, root.Log)
}
