package importcmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	importcmd "github.com/tomwattsa3/wealthwisetracker-sub000/cmd/import"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Date,Description,Money In - GBP,Money Out - GBP,Money In - AED,Money Out - AED
2024-03-01,Salary,2000.00,,,
2024-03-02,Tesco,,45.10,,
2024-03-03,Carrefour,,,,93.00
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root.Init()
	if !importcmd.Cmd.HasParent() {
		root.Cmd.AddCommand(importcmd.Cmd)
	}
	dir := t.TempDir()
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

func writeStatement(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCommand_DryRun(t *testing.T) {
	path := writeStatement(t, statement)

	out, err := run(t, "import", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "money out AED  <- Money Out - AED")
	assert.Contains(t, out, "3 rows parsed, 0 auto-categorized, 0 skipped")
	assert.Contains(t, out, "Carrefour")
	assert.Contains(t, out, "£20.00")
}

func TestImportCommand_Imports(t *testing.T) {
	path := writeStatement(t, statement)

	out, err := run(t, "import", "--dry-run=false", "--bank", "Monzo", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 transactions (0 auto-categorized)")
}

func TestImportCommand_StructuralError(t *testing.T) {
	path := writeStatement(t, "Name,Notes\nA,B\n")

	_, err := run(t, "import", "--dry-run=false", path)
	assert.Error(t, err)
}

func TestImportCommand_MissingFile(t *testing.T) {
	_, err := run(t, "import", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestImportCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.csv"), []byte(statement), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("Name,Notes\nA,B\n"), 0o600))

	out, err := run(t, "import", "--dry-run=false", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "Imported 3 transactions")
	assert.Contains(t, out, "Failed: ")
}
