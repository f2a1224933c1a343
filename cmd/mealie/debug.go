package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsclarke/mealie/mealie"
)

func newAboutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show public server information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newBareClient()
			if err != nil {
				return err
			}
			info, err := c.About(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, info)
		},
	}
}

func newDebugCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Server diagnostics (admin)",
	}

	show := func(use, short string, fetch func(*mealie.Client, context.Context) (any, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := a.newClient(cmd.Context())
				if err != nil {
					return err
				}
				v, err := fetch(c, cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(cmd, v)
			},
		}
	}

	info := show("info", "Show server configuration", func(c *mealie.Client, ctx context.Context) (any, error) {
		return c.DebugInfo(ctx)
	})
	stats := show("stats", "Show content statistics", func(c *mealie.Client, ctx context.Context) (any, error) {
		return c.DebugStatistics(ctx)
	})
	version := show("version", "Show server version", func(c *mealie.Client, ctx context.Context) (any, error) {
		return c.DebugVersion(ctx)
	})

	var lines int
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Print the last lines of the server log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			text, err := c.DebugLog(cmd.Context(), lines)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	logCmd.Flags().IntVarP(&lines, "lines", "n", 100, "number of lines")

	cmd.AddCommand(info, stats, version, logCmd)
	return cmd
}
