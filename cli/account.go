package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"moviehub/app"
	"moviehub/user"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Account describes the login state of the local session.
type Account struct {
	Authenticated       bool       `json:"authenticated" yaml:"authenticated"`
	User                *user.User `json:"user,omitempty" yaml:"user,omitempty"`
	NeedsPasswordChange bool       `json:"needs_password_change,omitempty" yaml:"needs_password_change,omitempty"`
}

func writeAccount(w io.Writer, a Account) {
	if !a.Authenticated || a.User == nil {
		fmt.Fprintln(w, "Not logged in.")
		return
	}
	fmt.Fprintf(w, "Logged in as %s <%s>\n", a.User.Name, a.User.Email)
	if a.NeedsPasswordChange {
		fmt.Fprintln(w, "Please change your password.")
	}
}

func newLoginCommand(opts *RootOptions, open Opener) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the movie API",
		Long: `Log in to the movie API.

Without --password the password is prompted for on a terminal, or read from
the first line of stdin when it is piped.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")

	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, _ []string) error {
		if password == "" {
			p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			password = p
		}

		u, err := s.Auth.Login(ctx, user.Credentials{Email: email, Password: password})
		if err != nil {
			return err
		}
		a := Account{Authenticated: true, User: &u, NeedsPasswordChange: s.Auth.NeedsPasswordChange()}
		return out.Print(a, func(w io.Writer) { writeAccount(w, a) })
	})
	return cmd
}

// readPassword prompts without echo when in is a terminal and otherwise
// takes the first line of in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, _ []string) error {
		s.Auth.Logout(ctx)
		a := Account{}
		return out.Print(a, func(w io.Writer) { fmt.Fprintln(w, "Logged out.") })
	})
	return cmd
}

func newWhoamiCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(opts, open, func(ctx context.Context, s *app.Session, out *Printer, _ []string) error {
		if err := s.Auth.CheckAuth(ctx); err != nil {
			out.Logf("stored session rejected: %v", Message(err))
		}

		var a Account
		if u, ok := s.Auth.CurrentUser(); ok {
			a = Account{Authenticated: true, User: &u, NeedsPasswordChange: s.Auth.NeedsPasswordChange()}
		}
		return out.Print(a, func(w io.Writer) { writeAccount(w, a) })
	})
	return cmd
}
