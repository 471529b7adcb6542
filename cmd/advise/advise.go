// Package advise handles the AI spending advice command
package advise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/advisor"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"

	"github.com/spf13/cobra"
)

var (
	rangeFlags common.RangeFlags
	question   string
)

// Cmd represents the advise command
var Cmd = &cobra.Command{
	Use:   "advise",
	Short: "Ask the Gemini model for advice on your spending",
	Long: `Ask the Gemini model for advice on your spending. Totals and the most
recent active transactions of the range are sent with the question.
Requires ai.enabled and GEMINI_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: adviseFunc,
}

func init() {
	rangeFlags.Register(Cmd, aggregate.PresetLast3Months)
	Cmd.Flags().StringVarP(&question, "question", "q", "Where could I cut back on spending?", "Question to ask")
}

func adviseFunc(cmd *cobra.Command, _ []string) error {
	a := root.App.GetAdvisor()
	if a == nil {
		return errors.New("AI advice is disabled; set ai.enabled and GEMINI_API_KEY")
	}
	r, txs, err := common.Select(root.App.GetRepository().List(), rangeFlags, common.FilterFlags{}, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(root.Context(cmd), root.App.GetConfig().AITimeout())
	defer cancel()

	answer, err := a.Advise(ctx, txs, question)
	if errors.Is(err, advisor.ErrNoTransactions) {
		return fmt.Errorf("no transactions in %s", common.RangeLabel(r))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
