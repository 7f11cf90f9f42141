package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestSignMatchesReferenceHMAC(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got := Sign(secret, body); got != want {
		t.Fatalf("Sign mismatch: got %q want %q", got, want)
	}
	if !ValidSignature(secret, body, want) {
		t.Fatalf("valid signature rejected")
	}
}

func TestValidSignatureRejectsMutations(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[{"type":"message"}]}`)
	sig := Sign(secret, body)

	// Single-byte body mutation
	mutated := append([]byte(nil), body...)
	mutated[0] ^= 0x01
	if ValidSignature(secret, mutated, sig) {
		t.Fatalf("mutated body accepted")
	}

	// Single-byte signature mutation
	badSig := []byte(sig)
	badSig[0] ^= 0x01
	if ValidSignature(secret, body, string(badSig)) {
		t.Fatalf("mutated signature accepted")
	}

	if ValidSignature(secret, body, "") {
		t.Fatalf("empty signature accepted")
	}
	if ValidSignature("other-secret", body, sig) {
		t.Fatalf("signature for different secret accepted")
	}
}
