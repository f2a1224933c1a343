package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rsclarke/mealie/mealie"
)

type organizerAPI struct {
	list    func(*mealie.Client, context.Context) ([]*mealie.Organizer, error)
	empty   func(*mealie.Client, context.Context) ([]*mealie.Organizer, error)
	create  func(*mealie.Client, context.Context, string) (*mealie.Organizer, error)
	recipes func(*mealie.Client, context.Context, string) ([]*mealie.Recipe, error)
	remove  func(*mealie.Client, context.Context, string) error
}

func newTagsCmd(a *app) *cobra.Command {
	return newOrganizerCmd(a, "tags", "tag", organizerAPI{
		list:    (*mealie.Client).Tags,
		empty:   (*mealie.Client).EmptyTags,
		create:  (*mealie.Client).CreateTag,
		recipes: (*mealie.Client).TagRecipes,
		remove:  (*mealie.Client).DeleteTag,
	})
}

func newCategoriesCmd(a *app) *cobra.Command {
	return newOrganizerCmd(a, "categories", "category", organizerAPI{
		list:    (*mealie.Client).Categories,
		empty:   (*mealie.Client).EmptyCategories,
		create:  (*mealie.Client).CreateCategory,
		recipes: (*mealie.Client).CategoryRecipes,
		remove:  (*mealie.Client).DeleteCategory,
	})
}

func newOrganizerCmd(a *app, plural, singular string, api organizerAPI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   plural,
		Short: "Manage recipe " + plural,
	}

	var emptyOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			fetch := api.list
			if emptyOnly {
				fetch = api.empty
			}
			items, err := fetch(c, cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, items)
		},
	}
	list.Flags().BoolVar(&emptyOnly, "empty", false, "only "+plural+" with no recipes")

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a " + singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			o, err := api.create(c, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, o)
		},
	}

	recipes := &cobra.Command{
		Use:   "recipes <slug>",
		Short: "List recipes filed under a " + singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			rs, err := api.recipes(c, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, rs)
		},
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a " + singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := api.remove(c, cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"slug": args[0], "deleted": true})
		},
	}

	cmd.AddCommand(list, create, recipes, del)
	return cmd
}
