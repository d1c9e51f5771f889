package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// VerificationCodeLen is the length of an email verification code:
// 3 random bytes, hex-encoded, upper-cased.
const VerificationCodeLen = 6

// NewVerificationCode returns a short human-typable code like "A3F09C".
func NewVerificationCode() (string, error) {
	var buf [VerificationCodeLen / 2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read verification code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf[:])), nil
}

// NewSessionToken mints the opaque bearer value stored on the account
// while a session is open.
func NewSessionToken() string {
	return uuid.NewString()
}
