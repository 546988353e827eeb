// Stratus is a self-hosted gateway for LLM inference backends.
//
// It sits in front of a fleet of Ollama-compatible servers, providing:
//   - API key authentication with IP allow/deny lists
//   - Fixed-window rate limiting with per-key overrides
//   - Automatic model selection for "auto" requests
//   - Backend selection with retry and failover
//   - Streaming response relay with usage auditing
//
// Usage:
//
//	# Start the gateway with the default configuration file
//	stratus run
//
//	# Start with a custom configuration file
//	stratus run --config /etc/stratus/config.yaml
//
//	# Validate a configuration file without starting
//	stratus validate
//
//	# Hash an API key secret for the config file
//	stratus hash-key
//
//	# Show version information
//	stratus version
package main

func main() {
	Execute()
}
