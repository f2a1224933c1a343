package main

import (
	"github.com/spf13/cobra"

	"github.com/rsclarke/mealie/internal/logging"
	"github.com/rsclarke/mealie/mealie"
)

func newRecipesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe"},
		Short:   "Browse and manage recipes",
	}

	var start, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recipe summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			recipes, err := c.ListRecipes(cmd.Context(), start, limit)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, recipes)
		},
	}
	list.Flags().IntVar(&start, "start", 0, "offset of the first recipe")
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of recipes")

	get := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			r, err := c.GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, r)
		},
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("recipe deleted", logging.Slug(args[0]))
			return a.printJSON(cmd, map[string]any{"slug": args[0], "deleted": true})
		},
	}

	createURL := &cobra.Command{
		Use:   "create-url <url>",
		Short: "Import a recipe by scraping a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			slug, err := c.CreateRecipeFromURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"slug": slug})
		},
	}

	importZip := &cobra.Command{
		Use:   "import-zip <file>",
		Short: "Import a recipe from a zip archive (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			slug, err := c.CreateRecipeFromZip(cmd.Context(), data)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"slug": slug})
		},
	}

	var zipOut string
	zipCmd := &cobra.Command{
		Use:   "zip <slug>",
		Short: "Download a recipe as a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.RecipeZip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeData(cmd, zipOut, data)
		},
	}
	zipCmd.Flags().StringVarP(&zipOut, "output", "o", "", "write to file instead of stdout")

	var size, imageOut string
	image := &cobra.Command{
		Use:   "image <slug>",
		Short: "Download a recipe image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.RecipeImage(cmd.Context(), args[0], mealie.ImageSize(size))
			if err != nil {
				return err
			}
			return writeData(cmd, imageOut, data)
		},
	}
	image.Flags().StringVar(&size, "size", string(mealie.ImageOriginal), "image size: original.webp|min-original.webp|tiny-original.webp")
	image.Flags().StringVarP(&imageOut, "output", "o", "", "write to file instead of stdout")

	comment := &cobra.Command{
		Use:   "comment <slug> <text>",
		Short: "Add a comment to a recipe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			cm, err := c.CreateRecipeComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, cm)
		},
	}

	untagged := &cobra.Command{
		Use:   "untagged",
		Short: "List recipes without tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			recipes, err := c.UntaggedRecipes(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, recipes)
		},
	}

	cmd.AddCommand(list, get, del, createURL, importZip, zipCmd, image, comment, untagged)
	return cmd
}
