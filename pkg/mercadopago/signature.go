package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrMissingSignature is returned when the x-signature header is absent
	// or malformed.
	ErrMissingSignature = errors.New("missing or malformed x-signature header")
	// ErrSignatureMismatch is returned when the computed HMAC does not match
	// the provided one.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// VerifyWebhookSignature checks the provider's HMAC over the canonical
// manifest "id:{dataID};request-id:{requestID};ts:{ts};". Segments with empty
// values are omitted, matching the provider's signing scheme. The dataID is
// lower-cased before signing when it is alphanumeric.
func VerifyWebhookSignature(secret, signatureHeader, requestID, dataID string) error {
	ts, v1, ok := parseSignatureHeader(signatureHeader)
	if !ok {
		return ErrMissingSignature
	}

	manifest := buildManifest(normalizeDataID(dataID), requestID, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrSignatureMismatch
	}
	return nil
}

// parseSignatureHeader splits "ts=...,v1=..." into its parts.
func parseSignatureHeader(header string) (ts, v1 string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	return ts, v1, ts != "" && v1 != ""
}

func buildManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:")
		b.WriteString(dataID)
		b.WriteString(";")
	}
	if requestID != "" {
		b.WriteString("request-id:")
		b.WriteString(requestID)
		b.WriteString(";")
	}
	b.WriteString("ts:")
	b.WriteString(ts)
	b.WriteString(";")
	return b.String()
}

func normalizeDataID(dataID string) string {
	if isAlphanumeric(dataID) {
		return strings.ToLower(dataID)
	}
	return dataID
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return s != ""
}
