package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-inventory-ui/companies/companyapi"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/spf13/cobra"
)

// companiesRoles may view and change companies
var companiesRoles = []string{users.RoleAdmin, users.RoleManager}

func (a *App) newCompaniesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List and administer companies",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all companies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := a.require(cmd.Context(), companiesRoles...); err != nil {
					return err
				}
				list, err := a.companies.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list companies: %w", err)
				}
				return writeCompanies(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one company",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.require(cmd.Context(), companiesRoles...); err != nil {
					return err
				}
				company, err := a.companies.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get company %d: %w", id, err)
				}
				return writeCompany(cmd.OutOrStdout(), company)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a company",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.require(cmd.Context(), companiesRoles...); err != nil {
					return err
				}
				if err := a.companies.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete company %d: %w", id, err)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "image <id> <file>",
			Short: "Upload a company logo",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.require(cmd.Context(), companiesRoles...); err != nil {
					return err
				}

				file, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("open image: %w", err)
				}
				defer file.Close()

				company, err := a.companies.UploadImage(cmd.Context(), companyapi.ImageUpload{
					CompanyID: id,
					Filename:  filepath.Base(args[1]),
					Content:   file,
				})
				if err != nil {
					return fmt.Errorf("upload image for company %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Image: %s\n", company.Image)
				return nil
			},
		},
	)
	return cmd
}
