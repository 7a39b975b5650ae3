// file: internals/features/verifications/token/generator.go
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
)

const (
	// 16 byte = 128 bit entropy → 32 karakter hex
	ByteLength = 16
	Length     = ByteLength * 2

	DefaultMaxAttempts = 8
)

var (
	ErrTokenCollision = errors.New("token collision: retry budget exhausted")

	reToken = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// ExistsFunc reports whether a token is already stored in the variant's table.
type ExistsFunc func(ctx context.Context, token string) (bool, error)

type Generator struct {
	// Rand default crypto/rand.Reader; diganti di test untuk memaksa tabrakan
	Rand        io.Reader
	MaxAttempts int
}

func NewGenerator() *Generator {
	return &Generator{Rand: rand.Reader, MaxAttempts: DefaultMaxAttempts}
}

// Generate draws random tokens until exists reports no match.
// exists == nil skips the lookup (unique index tetap jadi backstop).
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		tok, err := g.random()
		if err != nil {
			return "", err
		}
		if exists == nil {
			return tok, nil
		}
		taken, err := exists(ctx, tok)
		if err != nil {
			return "", fmt.Errorf("token existence check: %w", err)
		}
		if !taken {
			return tok, nil
		}
	}
	return "", ErrTokenCollision
}

func (g *Generator) random() (string, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, ByteLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("entropy source unavailable: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsWellFormed: 32 karakter hex lowercase, sama persis dengan output Generate.
func IsWellFormed(tok string) bool {
	return reToken.MatchString(tok)
}
