package admission

import (
	"log/slog"
	"path"
	"strings"

	"stratus-gw/stratus/pkg/security/keys"
)

// Filter runs the three admission checks in order: IP filtering,
// credential authentication, endpoint blocking. A request passes only
// when all three do. The checks are side-effect free; audit logging is
// the handler's concern.
type Filter struct {
	ips     *IPFilter
	keys    *keys.Store
	blocked []string
	logger  *slog.Logger
}

// New creates an admission filter.
func New(ips *IPFilter, store *keys.Store, blockedEndpoints []string, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{ips: ips, keys: store, blocked: blockedEndpoints, logger: logger}
}

// CheckIP admits or rejects the client address.
func (f *Filter) CheckIP(ip string) error {
	return f.ips.Check(ip)
}

// Authenticate resolves a credential to its key record. Unknown,
// revoked, and disabled keys all return ErrUnauthenticated; the
// distinction is logged but never surfaced to the client.
func (f *Filter) Authenticate(cred Credential) (*keys.Info, error) {
	outcome, info := f.keys.Resolve(cred.User, cred.Secret)
	if outcome != keys.Valid {
		f.logger.Warn("authentication failed",
			slog.String("user", cred.User),
			slog.String("outcome", outcome.String()))
		return nil, ErrUnauthenticated
	}
	return info, nil
}

// CheckEndpoint rejects blocked endpoints for keys without admin scope.
// Patterns match the final path segment ("delete" blocks /api/delete)
// or the full path when they contain a slash; globs are supported.
func (f *Filter) CheckEndpoint(reqPath string, info *keys.Info) error {
	if info != nil && info.Admin {
		return nil
	}
	segment := reqPath
	if i := strings.LastIndex(reqPath, "/"); i >= 0 {
		segment = reqPath[i+1:]
	}
	for _, pattern := range f.blocked {
		target := segment
		if strings.Contains(pattern, "/") {
			target = reqPath
		}
		if pattern == target {
			return f.blockedErr(reqPath, info)
		}
		if strings.ContainsAny(pattern, "*?[") {
			if ok, err := path.Match(pattern, target); err == nil && ok {
				return f.blockedErr(reqPath, info)
			}
		}
	}
	return nil
}

func (f *Filter) blockedErr(reqPath string, info *keys.Info) error {
	name := ""
	if info != nil {
		name = info.Name
	}
	return &EndpointBlockedError{Path: reqPath, Key: name}
}
