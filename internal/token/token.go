// Package token issues and hashes the opaque secrets used across the
// service: share link tokens and personal API tokens. Only SHA-256 hashes are
// ever written to the database.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// Prefixes identify a token's kind so the two can never be confused in logs
// or support requests.
const (
	// LinkPrefix marks share link tokens ("jsl" = joe-share link).
	LinkPrefix = "jsl_"
	// APIPrefix marks personal API tokens.
	APIPrefix = "js_"
)

// New creates a token with the given prefix.
// It returns the plaintext token and its SHA-256 hash. Plaintext = prefix +
// base62-encoded 32 cryptographically random bytes, so a token carries 256
// bits of entropy and has no structural relationship to anything it unlocks.
func New(prefix string) (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return
	}

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, 0, 44)
	n := new(big.Int).SetBytes(b)
	base := big.NewInt(62)
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		encoded = append(encoded, alphabet[mod.Int64()])
	}
	// Reverse to get most-significant digit first.
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}

	plaintext = prefix + string(encoded)
	hash = Hash(plaintext)
	return
}

// Generate creates a new share link token.
func Generate() (plaintext, hash string, err error) {
	return New(LinkPrefix)
}

// Hash returns the hex-encoded SHA-256 hash of a plaintext token.
func Hash(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}
