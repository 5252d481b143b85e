package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HMACSigner implements ports.PayloadSigner using HMAC-SHA256. It signs the
// JSON bodies pushed to kitchen displays.
type HMACSigner struct{}

// NewHMACSigner creates a new HMAC-SHA256 signer.
func NewHMACSigner() *HMACSigner {
	return &HMACSigner{}
}

// Sign computes HMAC-SHA256 of payload using secretKey.
// Returns lowercase hex-encoded signature.
func (s *HMACSigner) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secretKey, payload).
func (s *HMACSigner) Verify(secretKey string, payload string, signature string) bool {
	expected := s.Sign(secretKey, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// TimestampedPayload binds a delivery timestamp to the body so receivers can
// reject replays. Format: TIMESTAMP.BODY
func TimestampedPayload(timestamp int64, body string) string {
	return strconv.FormatInt(timestamp, 10) + "." + body
}
