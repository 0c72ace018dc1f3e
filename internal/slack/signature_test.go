package slack

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func TestVerifySignatureRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := fmt.Sprintf("%d", now.Unix())
	body := []byte(`{"type":"event_callback","event_id":"Ev123"}`)

	sig := ComputeSignature(testSigningSecret, ts, body)
	assert.Regexp(t, `^v0=[0-9a-f]{64}$`, sig)

	require.NoError(t, VerifySignature(testSigningSecret, ts, sig, body, now))
}

func TestVerifySignatureRejectsMissingHeaders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Error(t, VerifySignature(testSigningSecret, "", "v0=abc", []byte("x"), now))
	assert.Error(t, VerifySignature(testSigningSecret, "1700000000", "", []byte("x"), now))
}

func TestVerifySignatureRejectsBadTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	err := VerifySignature(testSigningSecret, "not-a-number", "v0=abc", []byte("x"), now)
	assert.Error(t, err)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte("payload")

	tests := []struct {
		name   string
		offset time.Duration
		ok     bool
	}{
		{"fresh", 0, true},
		{"four minutes old", -4 * time.Minute, true},
		{"just over five minutes old", -5*time.Minute - time.Second, false},
		{"from the future", 6 * time.Minute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := fmt.Sprintf("%d", now.Add(tt.offset).Unix())
			sig := ComputeSignature(testSigningSecret, ts, body)
			err := VerifySignature(testSigningSecret, ts, sig, body, now)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := fmt.Sprintf("%d", now.Unix())
	body := []byte(`{"event_id":"Ev123"}`)
	sig := ComputeSignature(testSigningSecret, ts, body)

	assert.Error(t, VerifySignature(testSigningSecret, ts, sig, []byte(`{"event_id":"Ev999"}`), now),
		"modified body must fail")
	assert.Error(t, VerifySignature("wrong-secret", ts, sig, body, now),
		"wrong secret must fail")
	assert.Error(t, VerifySignature(testSigningSecret, ts, "v0=deadbeef", body, now),
		"forged signature must fail")
}
