// Package cryptox implements hashing of security-question answers.
//
// Answers are hashed with argon2id and a per-record random salt, encoded as
// a PHC-style string. Earlier clients stored an unsalted iterated-SHA256 hex
// digest; VerifyAnswer still accepts that form so existing profile rows keep
// working until they are rewritten.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/example/movequote/internal/common"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16

	// legacyStretchRounds is the iteration count of the old unsalted scheme.
	legacyStretchRounds = 100_000
)

// HashAnswer normalizes the answer (trim, lowercase) and hashes it with
// argon2id under a fresh random salt. The result is self-describing:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<b64 salt>$<b64 hash>
func HashAnswer(answer string) string {
	salt := common.GenerateRandByteArray(saltLen)
	key := argon2.IDKey(normalize(answer), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// VerifyAnswer reports whether answer matches the stored encoded hash.
// It dispatches on the hash format: PHC argon2id strings are verified with
// the embedded salt, anything else is treated as a legacy unsalted digest.
// Comparison is constant-time in both branches.
func VerifyAnswer(answer, encoded string) bool {
	if encoded == "" {
		return false
	}
	if strings.HasPrefix(encoded, "$argon2id$") {
		return verifyArgon(answer, encoded)
	}
	return verifyLegacy(answer, encoded)
}

func verifyArgon(answer, encoded string) bool {
	parts := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	if len(parts) != 6 {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey(normalize(answer), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// verifyLegacy re-creates the old construction: SHA-256 over the UTF-8 answer,
// then re-hashing the digest for a fixed number of rounds, hex-encoded.
func verifyLegacy(answer, storedHex string) bool {
	sum := sha256.Sum256([]byte(answer))
	for i := 0; i < legacyStretchRounds; i++ {
		sum = sha256.Sum256(sum[:])
	}
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHex)) == 1
}

func normalize(answer string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(answer)))
}
