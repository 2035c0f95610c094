package signature_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xraph/huddle/signature"
)

func TestGenerateSecret(t *testing.T) {
	secret := signature.GenerateSecret()

	if !strings.HasPrefix(secret, signature.SecretPrefix) {
		t.Errorf("expected prefix %q, got %q", signature.SecretPrefix, secret)
	}
	if len(secret) != signature.SecretLen {
		t.Errorf("expected length %d, got %d for %q", signature.SecretLen, len(secret), secret)
	}
	for i, c := range strings.TrimPrefix(secret, signature.SecretPrefix) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("non-hex character at position %d: %c", i, c)
		}
	}
	if secret == signature.GenerateSecret() {
		t.Error("two consecutive secrets were equal")
	}
}

func TestValidateSecret(t *testing.T) {
	good := signature.GenerateSecret()
	if err := signature.ValidateSecret(good); err != nil {
		t.Fatalf("generated secret rejected: %v", err)
	}

	bad := []string{
		"",
		"hdsec_",
		"hdsec_short",
		good[:len(good)-1],
		good + "0",
		"whsec_" + strings.TrimPrefix(good, signature.SecretPrefix),
		signature.SecretPrefix + strings.ToUpper(strings.TrimPrefix(good, signature.SecretPrefix)),
		signature.SecretPrefix + strings.Repeat("g", 64),
	}
	for _, s := range bad {
		if err := signature.ValidateSecret(s); !errors.Is(err, signature.ErrBadSecret) {
			t.Errorf("ValidateSecret(%q) = %v, want ErrBadSecret", s, err)
		}
	}
}

func TestMalformedSecretNeverVerifies(t *testing.T) {
	payload := []byte(`{"action":"schedule"}`)
	sig := signature.Sign(payload, "hdsec_short", 1700000000)

	if signature.Verify(payload, "hdsec_short", 1700000000, sig) {
		t.Error("Verify() accepted a malformed secret")
	}
	err := signature.Check(payload, "hdsec_short", sig, "1700000000", time.Unix(1700000000, 0), 0)
	if !errors.Is(err, signature.ErrBadSecret) {
		t.Errorf("Check() = %v, want ErrBadSecret", err)
	}
}
