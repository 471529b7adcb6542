package webhook_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root.Init()
	if !webhook.Cmd.HasParent() {
		root.Cmd.AddCommand(webhook.Cmd)
	}
	t.Setenv("HOME", dir)
	t.Setenv("WEALTHWISE_STORE_DRIVER", "memory")
	t.Setenv("WEALTHWISE_SETTINGS_FILE", filepath.Join(dir, "settings.yaml"))

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(args)
	err := root.Cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWebhookCommand_Metadata(t *testing.T) {
	assert.Equal(t, "webhook", webhook.Cmd.Use)
	assert.Contains(t, webhook.Cmd.Long, "never undoes the import")

	names := []string{}
	for _, c := range webhook.Cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"set", "clear", "show"}, names)
}

func TestWebhookCommand_SetShowClear(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "webhook", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Webhook disabled")

	_, err = run(t, dir, "webhook", "set", "https://hooks.example.com/import")
	require.NoError(t, err)

	out, err = run(t, dir, "webhook", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "https://hooks.example.com/import")

	_, err = run(t, dir, "webhook", "clear")
	require.NoError(t, err)

	out, err = run(t, dir, "webhook", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Webhook disabled")
}

func TestWebhookCommand_RejectsInvalidURL(t *testing.T) {
	_, err := run(t, t.TempDir(), "webhook", "set", "not a url")
	assert.Error(t, err)
}
