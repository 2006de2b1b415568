package cli

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/doeshing/gpa/internal/ports"
)

// Prompter implements ConfirmationPrompter with a huh confirm form.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter. With nil streams it uses stdio and is
// only enabled when stdin is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isTerminal(os.Stdin)
	}
	if out == nil {
		out = os.Stderr
	}
	return &Prompter{in: in, out: out, interactive: interactive}
}

// Enabled indicates whether the user can be asked.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks a yes/no question. Aborting the form counts as "no".
func (p *Prompter) Confirm(title, description string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithInput(p.in).WithOutput(p.out)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
