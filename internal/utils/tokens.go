package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewStateToken returns nBytes of randomness, hex encoded. nBytes <= 0 means 32.
func NewStateToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
