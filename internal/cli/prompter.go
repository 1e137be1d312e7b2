package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotConfirmed is returned when the user declines a confirmation.
var ErrNotConfirmed = errors.New("not confirmed")

// Prompter asks the user questions on the terminal.
type Prompter struct {
	reader *lineReader
	writer io.Writer
	stdin  *os.File
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// When reader is a terminal, secrets are read without echo.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: newLineReader(reader),
		writer: writer,
	}
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.stdin = f
	}
	return p
}

// Ask prints a prompt and returns the trimmed answer, or def when the answer is empty.
func (p *Prompter) Ask(ctx context.Context, question, def string) (string, error) {
	prompt := question
	if def != "" {
		prompt += " [" + def + "]"
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. Anything but y or yes declines.
func (p *Prompter) Confirm(ctx context.Context, question string) error {
	answer, err := p.Ask(ctx, question+" (y/N)", "")
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	default:
		return ErrNotConfirmed
	}
}

// Secret reads a value without echoing it when attached to a terminal.
func (p *Prompter) Secret(ctx context.Context, question string) (string, error) {
	if p.stdin == nil {
		return p.Ask(ctx, question, "")
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(question)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := term.ReadPassword(int(p.stdin.Fd()))
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
