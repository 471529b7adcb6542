package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/advise"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/breakdown"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/categories"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/export"
	importcmd "github.com/tomwattsa3/wealthwisetracker-sub000/cmd/import"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/merchants"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/serve"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/summary"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/transactions"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/trend"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/webhook"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(transactions.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(breakdown.Cmd)
	root.Cmd.AddCommand(trend.Cmd)
	root.Cmd.AddCommand(merchants.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(webhook.Cmd)
	root.Cmd.AddCommand(advise.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, apperror.UserMessage(err))
		os.Exit(1)
	}
}
