package root_test

import (
	"context"
	"testing"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "wealthwise", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "personal finance tracker")
	assert.Contains(t, root.Cmd.Long, "imports bank CSV exports")
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
	assert.True(t, root.Cmd.SilenceUsage)
}

func TestRootCommand_Flags(t *testing.T) {
	root.Init()
	root.Init()

	configFlag := root.Cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)

	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("store"))
}

func TestContext_FallsBackToBackground(t *testing.T) {
	cmd := &cobra.Command{}
	assert.NotNil(t, root.Context(cmd))

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	cmd.SetContext(ctx)
	assert.Equal(t, "v", root.Context(cmd).Value(key{}))
}

func TestPersistentPostRun_WithoutApp(t *testing.T) {
	root.App = nil
	assert.NotPanics(t, func() {
		root.Cmd.PersistentPostRun(root.Cmd, nil)
	})
}
