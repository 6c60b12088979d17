package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/camden-git/agencybackend/database"
)

func newDataCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect or remove stored models and archives",
	}
	cmd.AddCommand(newDataCheckCmd(log), newDataCleanCmd(log))
	return cmd
}

func newDataCheckCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print row counts and list stored models and archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(log)
			if err != nil {
				return err
			}
			inv, err := database.NewInventory(db)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			counts, err := inv.Counts(ctx)
			if err != nil {
				return err
			}
			modelRows, err := inv.Models(ctx)
			if err != nil {
				return err
			}
			archiveRows, err := inv.Archives(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Models: %d\nArchives: %d\nAdmins: %d\n", counts.Models, counts.Archives, counts.Admins)

			if len(modelRows) > 0 {
				fmt.Fprintln(out, "\nModels:")
				for _, m := range modelRows {
					fmt.Fprintf(out, "  %s  %-24s %-10s %s (%d archives)\n", m.ID, m.Slug, m.Category, m.Name, m.ArchiveCount)
				}
			}
			if len(archiveRows) > 0 {
				fmt.Fprintln(out, "\nArchives:")
				for _, a := range archiveRows {
					fmt.Fprintf(out, "  %s  %s (model %s)\n", a.ID, a.Title, a.ModelSlug)
				}
			}
			return nil
		},
	}
}

func newDataCleanCmd(log *logrus.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete every archive and model; admin accounts are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This deletes all models and archives. Continue? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			db, err := openDB(log)
			if err != nil {
				return err
			}
			inv, err := database.NewInventory(db)
			if err != nil {
				return err
			}

			res, err := inv.PurgeContent(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d archives and %d models.\n", res.ArchivesDeleted, res.ModelsDeleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
