package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func newMealPlansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mealplans",
		Aliases: []string{"meal-plans"},
		Short:   "Show meal plans",
	}

	all := &cobra.Command{
		Use:   "list",
		Short: "List every meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			plans, err := c.MealPlans(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, plans)
		},
	}

	thisWeek := &cobra.Command{
		Use:   "this-week",
		Short: "Show this week's meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := c.MealPlanThisWeek(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, plan)
		},
	}

	today := &cobra.Command{
		Use:   "today",
		Short: "Show the slug of today's recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			slug, err := c.TodaysMeal(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"slug": slug})
		},
	}

	shopping := &cobra.Command{
		Use:   "shopping-list <id>",
		Short: "Build a shopping list from a meal plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.MealPlanShoppingList(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, list)
		},
	}

	cmd.AddCommand(all, thisWeek, today, shopping)
	return cmd
}

func newShoppingListsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shopping-lists",
		Aliases: []string{"shopping-list"},
		Short:   "Show and tick off shopping lists",
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.GetShoppingList(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, list)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id> <item>",
		Short: "Flip the checked state of an item (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := parseID(args[1])
			if err != nil {
				return err
			}
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.GetShoppingList(cmd.Context(), id)
			if err != nil {
				return err
			}
			list.ID = id
			updated, err := list.ToggleChecked(cmd.Context(), item)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, updated)
		},
	}

	cmd.AddCommand(get, toggle)
	return cmd
}
