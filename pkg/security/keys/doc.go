// Package keys resolves presented API credentials to key records.
//
// A credential is the secret half of a "user:key" pair. Secrets are never
// stored; configuration carries their SHA-256 digests and lookup hashes
// the presented secret before comparing in constant time. A revoked or
// disabled key resolves to the same failure surface as an unknown one so
// callers cannot probe key state.
package keys
