package main

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/services"
	"github.com/spf13/cobra"
)

var (
	superuserEmail    string
	superuserPassword string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff account with superuser rights",
	RunE:  runCreateSuperuser,
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address of the new account")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "Password of the new account")
}

func runCreateSuperuser(cmd *cobra.Command, args []string) error {
	if superuserEmail == "" || superuserPassword == "" {
		return errors.New("both --email and --password are required")
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(rt.db)

	user, err := services.NewUserService(rt.db, rt.cfg).CreateSuperuser(superuserEmail, superuserPassword)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Superuser created: %s (%s)\n", user.Email, user.ID)
	return nil
}
