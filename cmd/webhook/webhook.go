// Package webhook handles the import webhook setting
package webhook

import (
	"fmt"
	"net/url"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the webhook command
var Cmd = &cobra.Command{
	Use:   "webhook",
	Short: "Configure the webhook notified after each import",
	Long: `Configure the webhook notified after each import. Imported transactions
are POSTed as JSON; a failed delivery never undoes the import.`,
}

var setCmd = &cobra.Command{
	Use:   "set URL",
	Short: "Set the webhook URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid webhook URL %q", args[0])
		}
		if err := root.App.GetSettings().SetWebhookURL(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", args[0])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Disable the webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := root.App.GetSettings().SetWebhookURL(""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Webhook disabled")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the webhook URL",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		u := root.App.GetSettings().WebhookURL()
		if u == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook disabled")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
	},
}

func init() {
	Cmd.AddCommand(setCmd, clearCmd, showCmd)
}
