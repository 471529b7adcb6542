// Package categories handles the category registry commands
package categories

import (
	"fmt"
	"strings"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/common"
	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	registry "github.com/tomwattsa3/wealthwisetracker-sub000/internal/categories"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"

	"github.com/spf13/cobra"
)

var (
	listType string

	newID    string
	newType  string
	newColor string
	newSubs  []string

	updateName  string
	updateColor string
	updateType  string
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories and subcategories",
	Long: `Manage categories and subcategories. The "excluded" category always
exists and cannot be deleted; transactions assigned to it are left out of totals.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  addFunc,
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename, recolor or retype a category",
	Long: `Rename, recolor or retype a category. Transactions keep the category
name they were saved with.`,
	Args: cobra.ExactArgs(1),
	RunE: updateFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a category",
	Long: `Delete a category. Transactions that use it keep the id and are
reported under Uncategorized until they are recategorized.`,
	Args: cobra.ExactArgs(1),
	RunE: deleteFunc,
}

var subcategoryCmd = &cobra.Command{
	Use:   "subcategory",
	Short: "Add or remove subcategories",
}

var subAddCmd = &cobra.Command{
	Use:   "add ID NAME",
	Short: "Add a subcategory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App.GetCategories().AddSubcategory(root.Context(cmd), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], args[0])
		return nil
	},
}

var subDeleteCmd = &cobra.Command{
	Use:   "delete ID NAME",
	Short: "Remove a subcategory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App.GetCategories().DeleteSubcategory(root.Context(cmd), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only INCOME or EXPENSE categories")

	addCmd.Flags().StringVar(&newID, "id", "", "Category id (default derived from the name)")
	addCmd.Flags().StringVarP(&newType, "type", "t", string(models.TypeExpense), "INCOME or EXPENSE")
	addCmd.Flags().StringVar(&newColor, "color", "", "Display color (default neutral grey)")
	addCmd.Flags().StringSliceVar(&newSubs, "sub", nil, "Subcategory (repeatable)")

	updateCmd.Flags().StringVar(&updateName, "name", "", "New name")
	updateCmd.Flags().StringVar(&updateColor, "color", "", "New color")
	updateCmd.Flags().StringVarP(&updateType, "type", "t", "", "New type")

	subcategoryCmd.AddCommand(subAddCmd, subDeleteCmd)
	Cmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd, subcategoryCmd)
}

func parseType(raw string) (models.TransactionType, error) {
	t, ok := models.ParseTransactionType(raw)
	if !ok {
		return "", fmt.Errorf("invalid --type %q (INCOME or EXPENSE)", raw)
	}
	return t, nil
}

func listFunc(cmd *cobra.Command, _ []string) error {
	reg := root.App.GetCategories()
	cats := reg.List()
	if listType != "" {
		t, err := parseType(listType)
		if err != nil {
			return err
		}
		cats = reg.ListByType(t)
	}

	t := common.NewTable(cmd.OutOrStdout(), "ID", "NAME", "TYPE", "COLOR", "SUBCATEGORIES")
	for _, c := range cats {
		t.Row(c.ID, c.Name, string(c.Type), c.Color, strings.Join(c.Subcategories, ", "))
	}
	return t.Flush()
}

func addFunc(cmd *cobra.Command, args []string) error {
	t, err := parseType(newType)
	if err != nil {
		return err
	}
	c, err := root.App.GetCategories().Create(root.Context(cmd), models.Category{
		ID:            newID,
		Name:          args[0],
		Type:          t,
		Color:         newColor,
		Subcategories: newSubs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", c.Name, c.ID)
	return nil
}

func updateFunc(cmd *cobra.Command, args []string) error {
	var u registry.Update
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = models.Ptr(updateName)
	}
	if flags.Changed("color") {
		u.Color = models.Ptr(updateColor)
	}
	if flags.Changed("type") {
		t, err := parseType(updateType)
		if err != nil {
			return err
		}
		u.Type = &t
	}
	if u.Name == nil && u.Color == nil && u.Type == nil {
		return fmt.Errorf("nothing to update")
	}

	c, err := root.App.GetCategories().Update(root.Context(cmd), args[0], u)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, %s, %s\n", c.ID, c.Name, c.Type, c.Color)
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	if err := root.App.GetCategories().Delete(root.Context(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
