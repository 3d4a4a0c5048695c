package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/model"
)

func newCategoriesCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and manage categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(dir)
			if err != nil {
				return err
			}

			for _, c := range env.st.Categories() {
				cmd.Printf("%-6s %-28s %-8s %s\n", c.Code, c.Name, c.Type, c.Spend)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", ".", "tally data directory")
	cmd.AddCommand(newCategoriesAddCommand(&dir))
	cmd.AddCommand(newCategoriesRemoveCommand(&dir))

	return cmd
}

func newCategoriesAddCommand(dir *string) *cobra.Command {
	var name string
	var catType string
	var spend string

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(*dir)
			if err != nil {
				return err
			}

			svc := categories.NewService(env.st.Categories())
			cat := model.Category{
				Code:  args[0],
				Name:  name,
				Type:  model.CategoryType(catType),
				Spend: model.SpendKind(spend),
			}
			if err := svc.Add(cat); err != nil {
				return err
			}
			if err := env.st.SaveCategories(svc.All()); err != nil {
				return err
			}

			cmd.Printf("Added category %s (%s)\n", cat.Code, cat.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&catType, "type", "expense", "category type: expense, income, asset")
	cmd.Flags().StringVar(&spend, "spend", "variable", "spend kind: fixed, variable")

	return cmd
}

func newCategoriesRemoveCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code>",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(*dir)
			if err != nil {
				return err
			}

			svc := categories.NewService(env.st.Categories())
			if err := svc.Remove(args[0]); err != nil {
				return err
			}
			if err := env.st.SaveCategories(svc.All()); err != nil {
				return err
			}

			cmd.Printf("Removed category %s\n", args[0])
			return nil
		},
	}
}
