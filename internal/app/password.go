package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PasswordFunc asks the operator for a secret.
type PasswordFunc func(ctx context.Context, prompt string) (string, error)

// PromptPassword reads a secret from the terminal with echo disabled.
// End of input and cancellation of ctx return ErrCancelled.
func PromptPassword(ctx context.Context, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt")
	}
	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("reading terminal state: %w", err)
	}

	type answer struct {
		secret []byte
		err    error
	}
	ch := make(chan answer, 1)

	fmt.Fprint(os.Stderr, prompt)
	go func() {
		secret, err := term.ReadPassword(fd)
		ch <- answer{secret, err}
	}()

	select {
	case <-ctx.Done():
		term.Restore(fd, state)
		fmt.Fprintln(os.Stderr)
		return "", ErrCancelled
	case a := <-ch:
		fmt.Fprintln(os.Stderr)
		if errors.Is(a.err, io.EOF) {
			return "", ErrCancelled
		}
		if a.err != nil {
			return "", fmt.Errorf("reading password: %w", a.err)
		}
		return string(a.secret), nil
	}
}
