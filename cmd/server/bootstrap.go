package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rideconnect/internal/services"
)

// newBootstrapAdminCmd creates the first admin. Every later account goes
// through the whitelist, which only an admin can fill.
func newBootstrapAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, _, err := openDB()
			if err != nil {
				return err
			}
			profile, err := services.BootstrapAdmin(db, email, name, password)
			if err != nil {
				return fmt.Errorf("bootstrap admin: %s", services.UserMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s <%s> created (%s)\n", profile.Name, profile.Email, profile.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
