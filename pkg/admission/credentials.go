package admission

import (
	"net/http"
	"strings"
)

// Credential is a presented API key split into its two halves. The wire
// form is "user:secret", where user names the key record and secret is
// the raw key material that gets hashed for comparison.
type Credential struct {
	User   string
	Secret string
}

// ParseCredential splits a raw "user:secret" value. The secret may
// itself contain colons; only the first one separates the halves.
func ParseCredential(raw string) (Credential, bool) {
	user, secret, ok := strings.Cut(raw, ":")
	if !ok || user == "" || secret == "" {
		return Credential{}, false
	}
	return Credential{User: user, Secret: secret}, true
}

// CredentialFromRequest extracts the bearer credential from the
// Authorization header. A payload-carried apiKey field is handled by
// the caller, which parses the body anyway, and fed through
// ParseCredential.
func CredentialFromRequest(r *http.Request) (Credential, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return Credential{}, false
	}
	return ParseCredential(strings.TrimSpace(auth[len(prefix):]))
}
