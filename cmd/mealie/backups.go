package main

import (
	"github.com/spf13/cobra"
)

func newBackupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Aliases: []string{"backup"},
		Short:   "Create, download and delete server backups",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			backups, err := c.Backups(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, backups)
		},
	}

	var tag string
	create := &cobra.Command{
		Use:   "create",
		Short: "Export the database to a new backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			name, err := c.CreateBackup(cmd.Context(), tag)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"name": name})
		},
	}
	create.Flags().StringVar(&tag, "tag", "", "name prefix for the archive")

	var out string
	download := &cobra.Command{
		Use:   "download <name>",
		Short: "Download a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.DownloadBackup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeData(cmd, out, data)
		},
	}
	download.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteBackup(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printJSON(cmd, map[string]any{"name": args[0], "deleted": true})
		},
	}

	cmd.AddCommand(list, create, download, del)
	return cmd
}
