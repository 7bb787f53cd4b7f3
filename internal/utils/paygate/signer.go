// Package paygate implements the payment gateway's signed wire format:
// parameters are sorted lexicographically by key, concatenated as
// key=urlencode(value) joined by '&', and signed with HMAC-SHA512 over
// that exact string. The hex signature travels as the secureHash param.
package paygate

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	// SecureHashParam is the query parameter carrying the signature.
	SecureHashParam = "secureHash"
	// SecureHashTypeParam is sent by some gateway versions alongside the
	// signature and is excluded from the signed payload.
	SecureHashTypeParam = "secureHashType"
)

// CanonicalString builds the exact string that gets signed: keys sorted
// lexicographically, empty values skipped, values URL-encoded.
func CanonicalString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
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
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// Sign computes the lowercase hex HMAC-SHA512 of the canonical string.
func Sign(secret string, params map[string]string) string {
	return HMACSHA512(secret, CanonicalString(params))
}

// HMACSHA512 computes the keyed hash over data and returns lowercase hex.
func HMACSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedQuery builds the full redirect query string: every key and value
// URL-encoded, plus the secureHash parameter appended last.
func SignedQuery(secret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
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
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	b.WriteByte('&')
	b.WriteString(SecureHashParam)
	b.WriteByte('=')
	b.WriteString(Sign(secret, params))
	return b.String()
}

// Verify checks the signature carried in params against a recomputation
// over the remaining parameters. It never fails with an error: a missing
// or mismatched signature simply yields false. The caller's map is not
// modified.
func Verify(secret string, params map[string]string) bool {
	provided, ok := params[SecureHashParam]
	if !ok || provided == "" {
		return false
	}

	payload := make(map[string]string, len(params))
	for k, v := range params {
		if k == SecureHashParam || k == SecureHashTypeParam {
			continue
		}
		payload[k] = v
	}

	expected := Sign(secret, payload)
	// Exact, case-sensitive compare of the hex encodings.
	return hmac.Equal([]byte(expected), []byte(provided))
}
