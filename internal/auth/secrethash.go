// Package auth implements the identity-provider login flows: the
// redirect-based authorization-code exchange and the direct password grant.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SecretHash computes the per-request signature the credential store requires
// when a confidential client secret is configured: an HMAC-SHA256 over
// username+clientID keyed by the client secret, base64 encoded.
//
// Returns "" when no client secret is configured (public client).
func SecretHash(username, clientID, clientSecret string) string {
	if clientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
