package paygate_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/carbonex/carbon_settlement_app/internal/utils/paygate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "RAOEXHYVSDDIIENYWSLDIIZTANXUXZFJ"

func sampleParams() map[string]string {
	return map[string]string{
		"version":      "2.1.0",
		"command":      "pay",
		"merchantCode": "CARBONEX01",
		"amount":       "5000000",
		"currency":     "VND",
		"txnRef":       "TXN1700000000001",
		"orderInfo":    "Wallet topup - account 42",
		"orderType":    "other",
		"locale":       "vn",
		"returnUrl":    "https://example.com/payments/return",
		"clientIp":     "203.0.113.7",
		"createDate":   "20250101120000",
		"expireDate":   "20250101120300",
	}
}

func TestCanonicalStringSortsKeysAndEncodesValues(t *testing.T) {
	canonical := paygate.CanonicalString(map[string]string{
		"b":     "two words",
		"a":     "1",
		"empty": "",
		"c":     "x&y",
	})
	assert.Equal(t, "a=1&b=two+words&c=x%26y", canonical)
}

func TestSignIsDeterministic(t *testing.T) {
	params := sampleParams()
	first := paygate.Sign(testSecret, params)
	second := paygate.Sign(testSecret, params)

	require.Len(t, first, 128) // SHA-512 hex
	assert.Equal(t, first, second)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestVerifyAcceptsOwnSignature(t *testing.T) {
	params := sampleParams()
	params[paygate.SecureHashParam] = paygate.Sign(testSecret, sampleParams())

	assert.True(t, paygate.Verify(testSecret, params))
}

func TestVerifyIgnoresSecureHashTypeParam(t *testing.T) {
	params := sampleParams()
	params[paygate.SecureHashParam] = paygate.Sign(testSecret, sampleParams())
	params[paygate.SecureHashTypeParam] = "HMACSHA512"

	assert.True(t, paygate.Verify(testSecret, params))
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	assert.False(t, paygate.Verify(testSecret, sampleParams()))
}

func TestVerifyRejectsAnySingleCharacterMutation(t *testing.T) {
	base := sampleParams()
	signature := paygate.Sign(testSecret, base)

	// Mutate each parameter value one at a time.
	for key := range base {
		mutated := sampleParams()
		mutated[key] = mutated[key] + "x"
		mutated[paygate.SecureHashParam] = signature
		assert.False(t, paygate.Verify(testSecret, mutated), "mutation of %q must invalidate signature", key)
	}

	// Mutate the signature itself.
	tampered := sampleParams()
	flipped := []byte(signature)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	tampered[paygate.SecureHashParam] = string(flipped)
	assert.False(t, paygate.Verify(testSecret, tampered))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	params := sampleParams()
	params[paygate.SecureHashParam] = paygate.Sign("other-secret", sampleParams())

	assert.False(t, paygate.Verify(testSecret, params))
}

func TestVerifyDoesNotModifyCallerMap(t *testing.T) {
	params := sampleParams()
	params[paygate.SecureHashParam] = paygate.Sign(testSecret, sampleParams())

	paygate.Verify(testSecret, params)

	_, stillThere := params[paygate.SecureHashParam]
	assert.True(t, stillThere)
}

func TestSignedQueryEndsWithSecureHash(t *testing.T) {
	query := paygate.SignedQuery(testSecret, sampleParams())

	require.Contains(t, query, paygate.SecureHashParam+"=")
	parts := strings.Split(query, "&")
	last := parts[len(parts)-1]
	assert.True(t, strings.HasPrefix(last, paygate.SecureHashParam+"="))

	// The signed query round-trips through Verify.
	parsed := map[string]string{}
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		require.Len(t, kv, 2)
		key, err := url.QueryUnescape(kv[0])
		require.NoError(t, err)
		val, err := url.QueryUnescape(kv[1])
		require.NoError(t, err)
		parsed[key] = val
	}
	assert.True(t, paygate.Verify(testSecret, parsed))
}
