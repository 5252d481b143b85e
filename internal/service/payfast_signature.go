package service

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/pkg/apperror"
)

// componentReplacer restores the characters encodeURIComponent leaves as-is
// but url.QueryEscape escapes. QueryEscape already renders spaces as '+'.
var componentReplacer = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s like encodeURIComponent, with %20 as '+'.
func encodeComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

// MD5SignatureCodec implements ports.SignatureCodec for the PayFast
// parameter-string signature.
type MD5SignatureCodec struct{}

// NewMD5SignatureCodec creates a new codec.
func NewMD5SignatureCodec() *MD5SignatureCodec {
	return &MD5SignatureCodec{}
}

// Canonicalize builds the string that gets hashed: keys sorted byte-wise,
// signature and blank values dropped, key=value pairs joined by '&', and the
// passphrase appended last when it is not blank. Values are encoded as given;
// trimming only decides whether a value is blank.
func (c *MD5SignatureCodec) Canonicalize(params domain.ParameterSet, passphrase string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == domain.FieldSignature || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(k))
		b.WriteByte('=')
		b.WriteString(encodeComponent(params[k]))
	}

	if strings.TrimSpace(passphrase) != "" {
		b.WriteString("&" + domain.FieldPassphrase + "=")
		b.WriteString(encodeComponent(passphrase))
	}
	return b.String()
}

// Sign returns the lowercase hex MD5 of the canonical string.
func (c *MD5SignatureCodec) Sign(params domain.ParameterSet, passphrase string) string {
	sum := md5.Sum([]byte(c.Canonicalize(params, passphrase)))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature and compares it, case-sensitively, with the
// received one. A blank or absent signature is a MissingSignature error.
func (c *MD5SignatureCodec) Verify(params domain.ParameterSet, passphrase string) (bool, error) {
	received := params[domain.FieldSignature]
	if strings.TrimSpace(received) == "" {
		return false, apperror.ErrMissingSignature()
	}

	expected := c.Sign(params, passphrase)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1, nil
}
