// Package config defines the gateway configuration, its defaults and
// validation, and loading from YAML with environment variable overrides.
//
// Operator-tunable settings (retry policy, priority mode, endpoint
// block-list, IP lists) are live-reloadable: a Watcher observes the config
// file and republishes a validated snapshot on change. The request path
// reads the current snapshot through an atomic pointer, so reloads never
// block in-flight requests.
package config
