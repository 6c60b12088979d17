package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
	"github.com/camden-git/agencybackend/validation"
)

func newAdminCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminCreateCmd(log))
	return cmd
}

func newAdminCreateCmd(log *logrus.Logger) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := validation.AdminInput{Email: models.NormalizeEmail(email), Password: password}
			if err := validation.Check(&input); err != nil {
				var verr *validation.Error
				if errors.As(err, &verr) {
					for _, issue := range verr.Issues {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %v: %s\n", issue.Path, issue.Message)
					}
				}
				return errors.New("invalid admin details")
			}

			db, err := openDB(log)
			if err != nil {
				return err
			}

			admin := &models.Admin{Email: input.Email}
			if err := admin.SetPassword(input.Password); err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			repo := repository.NewAdminRepository(db)
			if err := repo.Create(cmd.Context(), admin); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("an admin with email %s already exists", input.Email)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
