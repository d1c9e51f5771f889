package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. The hash string records them, so they can be
// raised later without invalidating stored hashes.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLen     = 16
	argonKeyLen      = 32
)

var errBadHash = errors.New("malformed argon2id hash")

// HashPassword derives an argon2id hash in PHC string format. Plaintext
// secrets are never stored; signin compares against this hash only.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

func VerifyPassword(hash, plaintext string) (bool, error) {
	var (
		version         int
		memory, iters   uint32
		parallelism     uint8
		saltB64, keyB64 string
	)
	n, err := fmt.Sscanf(hash, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &version, &memory, &iters, &parallelism, &saltB64)
	if err != nil || n != 5 {
		return false, errBadHash
	}
	if version != argon2.Version {
		return false, errors.New("unsupported argon2 version")
	}

	// Sscanf's %s is greedy; the salt and key are still joined by '$'.
	for i := range saltB64 {
		if saltB64[i] == '$' {
			keyB64 = saltB64[i+1:]
			saltB64 = saltB64[:i]
			break
		}
	}
	if saltB64 == "" || keyB64 == "" {
		return false, errBadHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false, errBadHash
	}
	key, err := base64.RawStdEncoding.DecodeString(keyB64)
	if err != nil {
		return false, errBadHash
	}
	if len(salt) == 0 || len(key) == 0 {
		return false, errBadHash
	}

	otherKey := argon2.IDKey([]byte(plaintext), salt, iters, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, otherKey) == 1, nil
}
