package keys

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"

	"stratus-gw/stratus/pkg/config"
)

// Outcome classifies a credential lookup.
type Outcome int

const (
	// Unknown means no key record matched the credential.
	Unknown Outcome = iota
	// Revoked means a record matched but the key is revoked or disabled.
	Revoked
	// Valid means the credential resolved to an active key.
	Valid
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Revoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Info is the resolved record for a valid credential.
type Info struct {
	// Name is the key's display name.
	Name string

	// Admin grants administrative scope.
	Admin bool

	// RateLimit is the per-key rate override, nil for global policy.
	RateLimit *config.RatePolicy
}

// Store resolves credentials against configured key records. Records are
// swapped wholesale on configuration reload.
type Store struct {
	mu   sync.RWMutex
	keys map[string]config.KeyConfig
}

// NewStore creates a credential store from key records.
func NewStore(records []config.KeyConfig) *Store {
	s := &Store{}
	s.Replace(records)
	return s
}

// Replace swaps in a new set of key records.
func (s *Store) Replace(records []config.KeyConfig) {
	m := make(map[string]config.KeyConfig, len(records))
	for _, k := range records {
		m[k.Name] = k
	}

	s.mu.Lock()
	s.keys = m
	s.mu.Unlock()
}

// Resolve looks up the record named user and verifies secret against its
// stored hash. The secret comparison runs in constant time.
func (s *Store) Resolve(user, secret string) (Outcome, *Info) {
	s.mu.RLock()
	record, ok := s.keys[user]
	s.mu.RUnlock()

	if !ok {
		return Unknown, nil
	}

	digest := sha256.Sum256([]byte(secret))
	presented := hex.EncodeToString(digest[:])
	if subtle.ConstantTimeCompare([]byte(presented), []byte(record.KeyHash)) != 1 {
		return Unknown, nil
	}

	if record.Revoked || record.Disabled {
		return Revoked, nil
	}

	return Valid, &Info{
		Name:      record.Name,
		Admin:     record.Admin,
		RateLimit: record.RateLimit,
	}
}

// HashSecret returns the SHA-256 hex digest of a secret, in the form
// stored in configuration. Used by the CLI to mint key records.
func HashSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}
