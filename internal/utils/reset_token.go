package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is how long a password reset token stays usable.
const ResetTokenTTL = 10 * time.Minute

// ResetToken is a freshly generated password reset secret. Raw is sent to
// the user; only Hash is stored.
type ResetToken struct {
	Raw     string
	Hash    string
	Expires time.Time
}

// NewResetToken generates a 32-byte random token expiring ResetTokenTTL
// after now.
func NewResetToken(now time.Time) (ResetToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{Raw: raw, Hash: HashToken(raw), Expires: now.Add(ResetTokenTTL)}, nil
}

// HashToken returns the SHA-256 hex digest of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes of cryptographically secure random data, hex
// encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
