// Package random generates secrets for cookies and CSRF tokens.
package random

import (
	"crypto/rand"
	"encoding/hex"
)

const keySize = 32

var read = rand.Read

// Bytes generates n random bytes.
func Bytes(n int) []byte {
	bytes := make([]byte, n)

	_, err := read(bytes)
	if err != nil {
		panic(err)
	}

	return bytes
}

// String returns n random bytes hex encoded.
func String(n int) string {
	return hex.EncodeToString(Bytes(n))
}

// Key returns configured as bytes, or a fresh random key when it is empty.
// Random keys do not survive a restart.
func Key(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}

	return Bytes(keySize)
}
