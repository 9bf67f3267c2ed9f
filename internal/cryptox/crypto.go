// Package cryptox wraps password hashing.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// dummyHash is compared against when no stored hash exists so that the
// unknown-account path costs about the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword(prehash("taskkeeper-dummy-password"), bcrypt.DefaultCost)

// prehash folds plain into 44 base64 bytes. bcrypt only reads the first 72
// bytes and rejects longer input, so every byte of a long password has to
// reach it through the digest.
func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns a bcrypt hash of plain. Any length is accepted.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(prehash(plain), bcrypt.DefaultCost)
}

// ComparePassword checks plain against hash. A nil or empty hash is treated
// as a mismatch after a full-cost comparison.
func ComparePassword(hash []byte, plain string) error {
	if len(hash) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, prehash(plain))
		return ErrMismatch
	}
	err := bcrypt.CompareHashAndPassword(hash, prehash(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
