package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUsersCmd manages player accounts.
func NewUsersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage player accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add USERNAME PASSWORD",
		Short: "Register a new player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			user, err := d.service.Register(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	})
	return cmd
}
