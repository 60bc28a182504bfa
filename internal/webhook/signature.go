package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

func digest(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

// Sign returns the X-KI-Signature header value for payload
func Sign(secret string, payload []byte) string {
	return signaturePrefix + hex.EncodeToString(digest(secret, payload))
}

// Verify checks a header produced by Sign. Headers without the sha256=
// prefix or with malformed hex never match.
func Verify(secret string, payload []byte, header string) bool {
	encoded, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(encoded)
	if err != nil {
		return false
	}
	return hmac.Equal(got, digest(secret, payload))
}
