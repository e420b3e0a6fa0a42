package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *App) newLoginCmd() *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Long: "Sign in and keep the session for later commands.\n\n" +
			"The password is prompted for without echo, or read from the first line of\n" +
			"stdin with --password-stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			var (
				password string
				err      error
			)
			if username == "" {
				if username, err = prompt(cmd, reader, "Username: "); err != nil {
					return err
				}
			}
			if passwordStdin {
				password, err = readLine(reader)
			} else {
				password, err = promptPassword(cmd, reader)
			}
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			user, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, users.RoleLabel(user.PrimaryRole()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := readLine(reader)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal
func promptPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(raw), err
	}
	return readLine(reader)
}

// readLine returns one line without its line ending. EOF after some input is not an error.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.store.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			a.auth.Logout(cmd.Context())
			return nil
		},
	}
}

func (a *App) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.require(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
			fmt.Fprintf(tw, "Name:\t%s\n", user.DisplayName())
			fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
			fmt.Fprintf(tw, "Roles:\t%s\n", roleLabels(user.Roles))
			return tw.Flush()
		},
	}
}
