// Package token genera valores aleatorios opacos (CSRF, sesiones, links de email)
// y sus hashes.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// Reader es la fuente de entropía. Sólo se reemplaza en tests.
var Reader io.Reader = rand.Reader

func random(nBytes int) ([]byte, error) {
	b := make([]byte, nBytes)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, fmt.Errorf("token: entropy: %w", err)
	}
	return b, nil
}

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b, err := random(nBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateHex genera nBytes aleatorios en hexadecimal.
func GenerateHex(nBytes int) (string, error) {
	b, err := random(nBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SHA256Hex devuelve sha256(input) en hexadecimal (para guardar en DB).
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
