package merchants_test

import (
	"testing"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/merchants"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	for _, c := range merchants.Cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("subcommand %s not found", name)
	return nil
}

func TestMerchantsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "merchants", merchants.Cmd.Use)
	assert.Contains(t, merchants.Cmd.Long, "confirmed 3 times")
	for _, name := range []string{"list", "mappings", "confirm", "delete", "backfill"} {
		assert.NotNil(t, subcommand(t, name).RunE, name)
	}
}

func TestMerchantsCommand_Flags(t *testing.T) {
	list := subcommand(t, "list")
	limit := list.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "20", limit.DefValue)
	assert.Equal(t, "false", list.Flags().Lookup("excluded").DefValue)

	confirm := subcommand(t, "confirm")
	category := confirm.Flags().Lookup("category")
	require.NotNil(t, category)
	assert.Contains(t, category.Annotations[cobra.BashCompOneRequiredFlag], "true")

	assert.Equal(t, "false", subcommand(t, "backfill").Flags().Lookup("apply").DefValue)
}

func TestMerchantsCommand_Args(t *testing.T) {
	confirm := subcommand(t, "confirm")
	assert.Error(t, confirm.Args(confirm, nil))
	assert.NoError(t, confirm.Args(confirm, []string{"TESCO"}))
}
