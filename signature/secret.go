package signature

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SecretPrefix marks a reminder signing secret.
const SecretPrefix = "hdsec_"

// SecretLen is the length of a well-formed secret: the prefix plus 32 bytes
// of lowercase hex.
const SecretLen = len(SecretPrefix) + 64

// ErrBadSecret is returned for a signing secret that GenerateSecret could
// not have produced.
var ErrBadSecret = errors.New("signature: malformed signing secret")

// GenerateSecret returns a fresh secret for the reminders.signing_secret
// setting.
func GenerateSecret() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("huddle: reading random bytes for a signing secret: " + err.Error())
	}
	return SecretPrefix + hex.EncodeToString(b[:])
}

// ValidateSecret rejects secrets with the wrong prefix, length, or alphabet.
// Publishers and device agents both run it so a truncated secret fails loudly
// instead of producing signatures nobody can verify.
func ValidateSecret(secret string) error {
	body, ok := strings.CutPrefix(secret, SecretPrefix)
	if !ok {
		return fmt.Errorf("%w: missing %q prefix", ErrBadSecret, SecretPrefix)
	}
	if len(secret) != SecretLen {
		return fmt.Errorf("%w: length %d, want %d", ErrBadSecret, len(secret), SecretLen)
	}
	for _, c := range body {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: non-hex character %q", ErrBadSecret, c)
		}
	}
	return nil
}
