package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const invitationTokenBytes = 32

// NewInvitationToken returns a 256-bit hex token and the hash to persist.
// Only the hash is stored; the token itself goes out in the invitation link.
func NewInvitationToken() (token, hash string, err error) {
	buf := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate invitation token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, HashInvitationToken(token), nil
}

// HashInvitationToken is the lookup key for a presented token.
func HashInvitationToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
