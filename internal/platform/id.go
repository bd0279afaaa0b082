package platform

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// apiKeyBytes is the amount of random source material behind a client API
// key. 48 bytes encode to a 64-character URL-safe token.
const apiKeyBytes = 48

func NewID() string {
	return uuid.New().String()
}

// NewAPIKey returns an opaque URL-safe credential for a service client.
func NewAPIKey() string {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
