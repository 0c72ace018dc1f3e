package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
)

// maxSignatureAge bounds replay of captured requests.
const maxSignatureAge = 5 * time.Minute

// ComputeSignature returns the v0 request signature for a raw body.
func ComputeSignature(signingSecret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the signature and timestamp headers of an
// inbound event request against the signing secret. now is injectable
// for tests.
func VerifySignature(signingSecret, timestamp, signature string, body []byte, now time.Time) error {
	if timestamp == "" || signature == "" {
		return fmt.Errorf("missing signature headers")
	}

	ts, err := strconv.ParseFloat(timestamp, 64)
	if err != nil {
		return fmt.Errorf("bad signature timestamp %q", timestamp)
	}
	age := math.Abs(float64(now.Unix()) - ts)
	if age > maxSignatureAge.Seconds() {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	expected := ComputeSignature(signingSecret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
