// Package trend handles the trend command
package trend

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
	granularity string
)

// Cmd represents the trend command
var Cmd = &cobra.Command{
	Use:   "trend",
	Short: "Show spending over time",
	Long: `Show active expenses bucketed by day, week (Monday to Sunday) or month,
in both currencies. Daily and weekly series include empty buckets.`,
	Args: cobra.NoArgs,
	RunE: trendFunc,
}

func init() {
	rangeFlags.Register(Cmd, aggregate.PresetLast6Months)
	filterFlags.Register(Cmd)
	Cmd.Flags().StringVarP(&granularity, "granularity", "g", string(aggregate.Monthly), "daily, weekly or monthly")
}

func trendFunc(cmd *cobra.Command, _ []string) error {
	g, err := aggregate.ParseGranularity(granularity)
	if err != nil {
		return err
	}
	r, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags, filterFlags, time.Now())
	if err != nil {
		return err
	}
	n := root.App.GetNormalizer()
	buckets, err := aggregate.TrendSeries(txs, g, r, n)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %s\n", common.RangeLabel(r), g)
	t := common.NewTable(out, "PERIOD", n.Primary, n.Secondary, "COUNT")
	for _, b := range buckets {
		t.Row(b.Label, common.Money(b.Amount), b.AmountSecondary.StringFixed(2), fmt.Sprint(b.Count))
	}
	return t.Flush()
}
