// Package signature signs reminder commands with HMAC-SHA256 so a device
// agent can reject commands that did not come from a trusted repository.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Header names carried next to a signed payload.
const (
	HeaderSignature = "Huddle-Signature"
	HeaderTimestamp = "Huddle-Timestamp"
)

var (
	// ErrMismatch is returned when a signature does not match the payload.
	ErrMismatch = errors.New("signature: mismatch")
	// ErrStale is returned when a signed timestamp is outside the tolerance.
	ErrStale = errors.New("signature: timestamp outside tolerance")
)

// Sign generates the signature for payload.
// The content to sign is "{timestamp}.{payload}".
// Returns a versioned signature in the format "v1=<hex>".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks sig against the expected signature in constant time.
// A malformed secret never verifies.
func Verify(payload []byte, secret string, timestamp int64, sig string) bool {
	if ValidateSecret(secret) != nil {
		return false
	}
	expected := Sign(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// Headers returns the header values for payload signed at now.
func Headers(payload []byte, secret string, now time.Time) map[string]string {
	ts := now.Unix()
	return map[string]string{
		HeaderSignature: Sign(payload, secret, ts),
		HeaderTimestamp: strconv.FormatInt(ts, 10),
	}
}

// Check verifies header values produced by Headers. A zero tolerance skips
// the freshness check.
func Check(payload []byte, secret, sig, timestamp string, now time.Time, tolerance time.Duration) error {
	if err := ValidateSecret(secret); err != nil {
		return err
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrMismatch, timestamp)
	}
	if tolerance > 0 {
		skew := now.Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > tolerance {
			return ErrStale
		}
	}
	if !Verify(payload, secret, ts, sig) {
		return ErrMismatch
	}
	return nil
}
