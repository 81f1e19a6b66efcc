package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"moviehub/errs"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errs.Is(err, errs.EINVALID):
		return ExitUsage
	}
	return ExitFailure
}

// Message is the text shown to the user for err.
func Message(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Printer writes command results in the selected format.
type Printer struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Print encodes v as json or yaml, or calls text for the human format.
func (p *Printer) Print(v interface{}, text func(w io.Writer)) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	text(p.Writer)
	return nil
}

// Logf writes a diagnostic line when verbose output is on. It goes to
// ErrWriter so json and yaml output stay parseable.
func (p *Printer) Logf(format string, args ...interface{}) {
	if !p.Verbose {
		return
	}
	w := p.ErrWriter
	if w == nil {
		w = p.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// failed prefers the message the controller recorded for the user.
func failed(err error, shown string) error {
	if shown == "" || shown == Message(err) {
		return err
	}
	return errs.Wrap(errs.ErrorCode(err), err, shown)
}
