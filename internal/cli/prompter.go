package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Veraticus/contractdesk/internal/model"
)

// Prompter asks the user for input on the terminal.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
	// secret reads a line without echo. When nil, secrets are read like
	// any other line.
	secret func() (string, error)
}

// NewPrompter creates a prompter. When reader is a terminal, passwords are
// read without echo.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.secret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			if _, werr := fmt.Fprintln(p.writer); werr != nil {
				slog.Warn("Failed to write newline after password", "error", werr)
			}
			return strings.TrimSpace(string(b)), err
		}
	}
	return p
}

// Ask prompts for a line. An empty answer returns def.
func (p *Prompter) Ask(ctx context.Context, prompt, def string) (string, error) {
	label := prompt
	if def != "" {
		label = fmt.Sprintf("%s [%s]", prompt, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
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

// AskRequired prompts until a non-empty answer is given.
func (p *Prompter) AskRequired(ctx context.Context, prompt string) (string, error) {
	for {
		answer, err := p.Ask(ctx, prompt, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatError(prompt+" is required.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// AskSecret prompts for a password.
func (p *Prompter) AskSecret(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	if p.secret == nil {
		return p.reader.ReadLine(ctx)
	}
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	return p.secret()
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose prompts until one of choices is entered. Matching ignores case.
func (p *Prompter) Choose(ctx context.Context, prompt string, choices []string) (string, error) {
	label := fmt.Sprintf("%s (%s)", prompt, strings.Join(choices, "/"))
	for {
		answer, err := p.Ask(ctx, label, "")
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if strings.EqualFold(answer, c) {
				return c, nil
			}
		}
		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// LoginCredentials asks for whatever part of the credentials is missing.
func (p *Prompter) LoginCredentials(ctx context.Context, username, password string) (model.LoginCredentials, error) {
	var err error
	if username == "" {
		if username, err = p.AskRequired(ctx, "Username"); err != nil {
			return model.LoginCredentials{}, err
		}
	}
	if password == "" {
		if password, err = p.AskSecret(ctx, "Password"); err != nil {
			return model.LoginCredentials{}, err
		}
	}
	return model.LoginCredentials{Username: username, Password: password}, nil
}

// RegisterCredentials asks for a new account. The email is optional.
func (p *Prompter) RegisterCredentials(ctx context.Context, username, email, password string) (model.RegisterCredentials, error) {
	login, err := p.LoginCredentials(ctx, username, password)
	if err != nil {
		return model.RegisterCredentials{}, err
	}
	if email == "" {
		if email, err = p.Ask(ctx, "Email (optional)", ""); err != nil {
			return model.RegisterCredentials{}, err
		}
	}
	return model.RegisterCredentials{Username: login.Username, Email: email, Password: login.Password}, nil
}
