// Package vnpay builds and verifies VNPay 2.1.0 payment requests.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	paramPrefix = "vnp_"

	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

// componentUnescaper restores the characters that form encoding escapes but
// URI component encoding leaves alone.
var componentUnescaper = strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// escape encodes s as a URI component with spaces as '+'.
func escape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Canonicalize renders the vnp_ parameters as the string that gets signed:
// keys sorted by their escaped form, values escaped as URI components with
// spaces as '+'. The hash parameters themselves are excluded.
func Canonicalize(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !strings.HasPrefix(k, paramPrefix) || k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		keys = append(keys, escape(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, escaped := range keys {
		key, err := url.QueryUnescape(escaped)
		if err != nil {
			key = escaped
		}
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escaped)
		b.WriteByte('=')
		b.WriteString(escape(params.Get(key)))
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC-SHA512 of data under secret.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over params and compares it with the
// received vnp_SecureHash in constant time.
func Verify(secret string, params url.Values) bool {
	provided := params.Get(ParamSecureHash)
	if secret == "" || provided == "" {
		return false
	}
	expected := Sign(secret, Canonicalize(params))
	return hmac.Equal([]byte(expected), []byte(provided))
}
