package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage admin accounts",
	}

	setAdmin := func(admin bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, err := e.users()
			if err != nil {
				return err
			}
			user, err := svc.SetAdmin(cmd.Context(), args[0], admin)
			if err != nil {
				return err
			}
			if admin {
				success(cmd.OutOrStdout(), "%s is now an admin", user.Username)
			} else {
				success(cmd.OutOrStdout(), "%s is no longer an admin", user.Username)
			}
			return nil
		}
	}

	promote := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant admin access",
		Args:  cobra.ExactArgs(1),
		RunE:  setAdmin(true),
	}
	demote := &cobra.Command{
		Use:   "demote <username>",
		Short: "Revoke admin access",
		Args:  cobra.ExactArgs(1),
		RunE:  setAdmin(false),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.users()
			if err != nil {
				return err
			}
			users, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				admin := ""
				if u.IsAdmin {
					admin = "yes"
				}
				rows = append(rows, []string{strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Email, admin})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Username", "Email", "Admin"}, rows)
			return nil
		},
	}

	cmd.AddCommand(promote, demote, list)
	return cmd
}
