// Package analyzer derives a capability profile from an inbound
// chat or generation payload. The profile records which model
// capabilities the request needs (images, code, tool calling, internet
// access, extended reasoning, low latency), a coarse request type, and
// a keyword set used for semantic scoring.
//
// Analysis is a pure function over the decoded payload. Detection is
// heuristic by design: the rules live in a versioned table in rules.go
// so they can be reviewed and tested as data rather than scattered
// string checks.
package analyzer
