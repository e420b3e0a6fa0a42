package cli

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/spf13/cobra"
)

// usersRoles may administer user accounts
var usersRoles = []string{users.RoleAdmin}

func (a *App) newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and administer user accounts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := a.require(cmd.Context(), usersRoles...); err != nil {
					return err
				}
				list, err := a.users.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				return writeUsers(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "search <keyword>",
			Short: "Search users by username, name or email",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.require(cmd.Context(), usersRoles...); err != nil {
					return err
				}
				list, err := a.users.Search(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("search users: %w", err)
				}
				return writeUsers(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.require(cmd.Context(), usersRoles...); err != nil {
					return err
				}
				user, err := a.users.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get user %d: %w", id, err)
				}
				return writeUser(cmd.OutOrStdout(), user)
			},
		},
		a.userActionCmd("lock", "Lock a user account", func(ctx context.Context, id int64) error {
			return a.users.UpdateLockStatus(ctx, users.LockStatusUpdate{UserID: id, Lock: true})
		}),
		a.userActionCmd("unlock", "Unlock a user account", func(ctx context.Context, id int64) error {
			return a.users.UpdateLockStatus(ctx, users.LockStatusUpdate{UserID: id, Lock: false})
		}),
		a.userActionCmd("enable", "Enable a user account", func(ctx context.Context, id int64) error {
			return a.users.UpdateEnabledStatus(ctx, users.EnabledStatusUpdate{UserID: id, Enabled: true})
		}),
		a.userActionCmd("disable", "Disable a user account", func(ctx context.Context, id int64) error {
			return a.users.UpdateEnabledStatus(ctx, users.EnabledStatusUpdate{UserID: id, Enabled: false})
		}),
		a.userActionCmd("delete", "Delete a user account", func(ctx context.Context, id int64) error {
			return a.users.Delete(ctx, id)
		}),
		a.newUserRoleCmd(),
	)
	return cmd
}

// userActionCmd is a "<action> <id>" command whose outcome is reported by the
// mutation's notice
func (a *App) userActionCmd(use, short string, action func(ctx context.Context, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.require(cmd.Context(), usersRoles...); err != nil {
				return err
			}
			if err := action(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s user %d: %w", use, id, err)
			}
			return nil
		},
	}
}

func (a *App) newUserRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles <id> <role>...",
		Short: "Replace a user's roles (e.g. admin, manager, sales, user)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.require(cmd.Context(), usersRoles...); err != nil {
				return err
			}
			roles := users.NormalizeRoles(args[1:])
			if len(roles) == 1 {
				err = a.users.UpdateRole(cmd.Context(), users.RoleUpdate{UserID: id, Role: roles[0]})
			} else {
				err = a.users.UpdateRoles(cmd.Context(), users.RolesUpdate{UserID: id, Roles: roles})
			}
			if err != nil {
				return fmt.Errorf("update roles of user %d: %w", id, err)
			}
			return nil
		},
	}
}
