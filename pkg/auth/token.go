package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoToken is returned by a source that has nothing to offer
var ErrNoToken = errors.New("no access token available")

// cookiePrefix is what users often paste along with the token
const cookiePrefix = "remember_token="

// EnvVar is the environment variable the configuration reads the token from
const EnvVar = "COUBCRAWL_ACCESS_TOKEN"

// TokenSource yields an access token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token calls f
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Normalize strips a pasted cookie prefix and surrounding whitespace
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, cookiePrefix)
	return strings.TrimSpace(token)
}

// Mask hides all but the last four characters of a token for display
func Mask(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// Static returns a source that always yields token
func Static(token string) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		if t := Normalize(token); t != "" {
			return t, nil
		}
		return "", ErrNoToken
	})
}

// PromptSource asks the user for a token
type PromptSource struct {
	In  io.Reader
	Out io.Writer

	// readSecret reads without echo when In is a terminal
	readSecret func() ([]byte, error)
	// reader buffers In across calls; pass a *bufio.Reader as In to share
	// it with other prompts reading the same stream
	reader *bufio.Reader
}

// NewTerminalPrompt prompts on stderr and reads in, hiding input when
// stdin is a terminal. in should be the reader every other stdin prompt
// of the run uses.
func NewTerminalPrompt(in io.Reader) *PromptSource {
	p := &PromptSource{In: in, Out: os.Stderr}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.readSecret = func() ([]byte, error) {
			defer fmt.Fprintln(p.Out)
			return term.ReadPassword(fd)
		}
	}
	return p
}

// Token prompts once and returns whatever was entered, normalized.
// A blank answer yields an empty token and no error.
func (p *PromptSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintln(p.Out, "Write/paste your access token. Run 'coubcrawl token-help' if you don't know how to get it.")
	fmt.Fprint(p.Out, "Access Token: ")

	if p.readSecret != nil {
		secret, err := p.readSecret()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return Normalize(string(secret)), nil
	}

	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return Normalize(line), nil
}

// Chain tries each source in order and returns the first non-blank token.
// Sources returning ErrNoToken or a blank token are skipped.
type Chain []TokenSource

// Token walks the chain
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		t, err := src.Token(ctx)
		if errors.Is(err, ErrNoToken) {
			continue
		}
		if err != nil {
			return "", err
		}
		if t = Normalize(t); t != "" {
			return t, nil
		}
	}
	return "", nil
}
