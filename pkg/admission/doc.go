// Package admission performs the policy checks that gate every request
// before routing: IP allow/deny filtering, API key authentication, and
// endpoint blocking for non-administrative keys.
//
// Admission failures are terminal policy decisions, never retried. The
// checks are pure - the only side effect is audit logging performed by
// the caller.
package admission
