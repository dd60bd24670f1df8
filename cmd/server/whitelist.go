package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"rideconnect/internal/models"
	"rideconnect/internal/services"
)

func newWhitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage the registration whitelist",
	}
	cmd.AddCommand(newWhitelistImportCmd())
	return cmd
}

func newWhitelistImportCmd() *cobra.Command {
	var addedBy string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Whitelist every row of a spreadsheet (email, name, role)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := openDB()
			if err != nil {
				return err
			}

			var admin models.Profile
			err = db.Where("email = ? AND role = ?", services.NormalizeEmail(addedBy), models.RoleAdmin).First(&admin).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no admin with email %q", addedBy)
			}
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := services.ImportWhitelist(db, admin.ID, f)
			if err != nil {
				return err
			}
			services.RecordAction(db, admin.ID, models.ActionWhitelistImported, map[string]interface{}{
				"file":     args[0],
				"imported": report.Imported,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d, duplicates %d, skipped %d\n", report.Imported, report.Duplicates, report.Skipped)
			for _, rowErr := range report.Errors {
				fmt.Fprintf(out, "row %d: %s\n", rowErr.Row, rowErr.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addedBy, "added-by", "", "email of the admin recorded as adding the rows")
	_ = cmd.MarkFlagRequired("added-by")
	return cmd
}
