// Package cli is the terminal front end of the movie session usecases.
package cli

import (
	"context"
	"fmt"

	"moviehub/app"
	"moviehub/errs"

	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
}

// Opener builds the session a command works on. The returned close function
// releases storage and is called once the command is done.
type Opener func(ctx context.Context, opts *RootOptions) (*app.Session, func() error, error)

// NewRootCommand creates the moviectl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "moviectl",
		Short: "Browse, search and favorite movies",
		Long: `moviectl talks to the movie API the same way the web client does.

Favorites and the login session are kept in local storage between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return errs.Errorf(errs.EINVALID, "invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(newBrowseCommand(opts, open))
	cmd.AddCommand(newSearchCommand(opts, open))
	cmd.AddCommand(newShowCommand(opts, open))
	cmd.AddCommand(newFavoriteCommand(opts, open))
	cmd.AddCommand(newFavoritesCommand(opts, open))
	cmd.AddCommand(newLoginCommand(opts, open))
	cmd.AddCommand(newLogoutCommand(opts, open))
	cmd.AddCommand(newWhoamiCommand(opts, open))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

type action func(ctx context.Context, s *app.Session, out *Printer, args []string) error

// run opens the session, hands it to fn and closes it afterwards.
func run(opts *RootOptions, open Opener, fn action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out := &Printer{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		}

		s, closeFn, err := open(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		defer func() {
			if err := closeFn(); err != nil {
				out.Logf("close storage: %v", err)
			}
		}()
		return fn(cmd.Context(), s, out, args)
	}
}
