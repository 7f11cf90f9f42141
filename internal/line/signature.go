package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader is the request header LINE uses to carry the body digest.
const SignatureHeader = "X-Line-Signature"

// Sign computes base64(HMAC-SHA256(secret, body)), the value LINE sends in
// the signature header.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidSignature checks a claimed signature against the raw request body
// using a constant-time comparison. An empty secret means signature
// verification is disabled for this deployment; the caller decides how to
// treat that case.
func ValidSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
