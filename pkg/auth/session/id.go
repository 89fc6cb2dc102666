package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const idBytes = 32

var idLength = base64.RawURLEncoding.EncodedLen(idBytes)

// NewID mints an opaque, unguessable cart session identifier.
func NewID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidID reports whether value has the shape of an id produced by NewID.
func ValidID(value string) bool {
	if len(value) != idLength {
		return false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	return err == nil && len(decoded) == idBytes
}
