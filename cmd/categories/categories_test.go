package categories_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/categories"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root.Init()
	if !categories.Cmd.HasParent() {
		root.Cmd.AddCommand(categories.Cmd)
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

func TestCategoriesCommand_Metadata(t *testing.T) {
	assert.Equal(t, "categories", categories.Cmd.Use)
	assert.Contains(t, categories.Cmd.Long, "cannot be deleted")

	names := []string{}
	for _, c := range categories.Cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "update", "delete", "subcategory"}, names)
}

func TestCategoriesCommand_List(t *testing.T) {
	out, err := run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "excluded")
	assert.Contains(t, out, "Eating Out")
	assert.Contains(t, out, "Restaurants, Coffee, Takeaway")
}

func TestCategoriesCommand_ListByType(t *testing.T) {
	out, err := run(t, "categories", "list", "--type", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "Groceries")
}

func TestCategoriesCommand_ExcludedIsProtected(t *testing.T) {
	_, err := run(t, "categories", "delete", "excluded")
	var protected *apperror.ProtectedCategoryError
	assert.ErrorAs(t, err, &protected)
}

func TestCategoriesCommand_Add(t *testing.T) {
	out, err := run(t, "categories", "add", "Pets", "--sub", "Food", "--sub", "Vet")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Pets (pets)")
}

func TestCategoriesCommand_UpdateNeedsFields(t *testing.T) {
	_, err := run(t, "categories", "update", "groceries")
	assert.Error(t, err)
}
