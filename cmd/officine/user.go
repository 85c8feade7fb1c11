package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"officine.org/internal/directory"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage inspector accounts",
	}
	cmd.AddCommand(newUserCreateCommand(opts))
	cmd.AddCommand(newUserListCommand(opts))
	cmd.AddCommand(newUserUpdateCommand(opts))
	cmd.AddCommand(newUserPasswdCommand(opts))
	cmd.AddCommand(newUserDeactivateCommand(opts))
	return cmd
}

func newUserCreateCommand(opts *rootOptions) *cobra.Command {
	var req directory.CreateRequest
	var role string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			req.Username = args[0]
			req.Role = directory.Role(role)
			user, err := opts.cmds.CreateUser(token, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(directory.RoleInspector), "admin|lead_inspector|inspector|viewer")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every account, inactive ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			users, err := opts.cmds.ListUsers(token)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newUserUpdateCommand(opts *rootOptions) *cobra.Command {
	var fullName, role string
	var active bool

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Patch account fields; only the flags you pass are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			var upd directory.Update
			if cmd.Flags().Changed("full-name") {
				upd.FullName = &fullName
			}
			if cmd.Flags().Changed("role") {
				r := directory.Role(role)
				upd.Role = &r
			}
			if cmd.Flags().Changed("active") {
				upd.Active = &active
			}
			if err := opts.cmds.UpdateUser(token, args[0], upd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "", "admin|lead_inspector|inspector|viewer")
	cmd.Flags().BoolVar(&active, "active", true, "account active flag")
	return cmd
}

func newUserPasswdCommand(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd <user-id>",
		Short: "Rotate an account password; outstanding sessions are revoked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := opts.cmds.ChangeUserPassword(token, args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newUserDeactivateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <user-id>",
		Short: "Disable an account and invalidate its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := opts.cmds.DeactivateUser(token, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deactivated")
			return nil
		},
	}
}
