package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"  abc \n", "abc"},
		{"remember_token=abc", "abc"},
		{" remember_token= abc ", "abc"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(none)", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "******7890", Mask("1234567890"))
}

func TestStatic(t *testing.T) {
	ctx := context.Background()

	tok, err := Static("remember_token=xyz").Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = Static("  ").Token(ctx)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestPromptSource(t *testing.T) {
	var out bytes.Buffer
	p := &PromptSource{In: strings.NewReader("remember_token=pasted\n"), Out: &out}

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pasted", tok)
	assert.Contains(t, out.String(), "Access Token: ")
}

func TestPromptSourceReadsSuccessiveLines(t *testing.T) {
	p := &PromptSource{In: strings.NewReader("\nsecond\n"), Out: &bytes.Buffer{}}

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
}

func TestPromptSourceBlankAndEOF(t *testing.T) {
	p := &PromptSource{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestPromptSourceSecret(t *testing.T) {
	p := &PromptSource{
		Out:        &bytes.Buffer{},
		readSecret: func() ([]byte, error) { return []byte(" hidden "), nil },
	}
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hidden", tok)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	called := false
	last := TokenSourceFunc(func(ctx context.Context) (string, error) {
		called = true
		return "prompted", nil
	})

	tok, err := Chain{Static(""), nil, Static("cfg"), last}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cfg", tok)
	assert.False(t, called)

	tok, err = Chain{Static(""), last}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "prompted", tok)

	boom := TokenSourceFunc(func(ctx context.Context) (string, error) { return "", errors.New("tty gone") })
	_, err = Chain{boom, last}.Token(ctx)
	assert.Error(t, err)

	tok, err = Chain{Static("")}.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSessionCachesNonBlankOnly(t *testing.T) {
	answers := []string{"", "  ", "tok"}
	calls := 0
	src := TokenSourceFunc(func(ctx context.Context) (string, error) {
		a := answers[calls]
		calls++
		return a, nil
	})
	s := NewSession(src)
	ctx := context.Background()

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, _ = s.Token(ctx)
	assert.Empty(t, tok)

	tok, _ = s.Token(ctx)
	assert.Equal(t, "tok", tok)

	tok, _ = s.Token(ctx)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, 3, calls)
}

func TestSessionSourceError(t *testing.T) {
	s := NewSession(TokenSourceFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("read failed")
	}))
	_, err := s.Token(context.Background())
	assert.Error(t, err)

	s = NewSession(nil)
	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestShowTokenGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowTokenGuide(&buf)
	assert.Contains(t, buf.String(), "remember_token")
	assert.Contains(t, buf.String(), EnvVar)
}
