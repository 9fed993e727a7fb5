// Package policy holds the static route authorization table. Decisions are a
// pure function of the request path and the caller's verified role set.
package policy

import (
	"strings"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// rule gates every path at or under prefix. public rules need no roles at
// all; otherwise the caller must hold at least one of the listed roles.
type rule struct {
	prefix string
	public bool
	roles  []domain.Role
}

var rules = []rule{
	{prefix: "/auth/login", public: true},
	{prefix: "/auth/register", public: true},
	{prefix: "/auth/forgot-password", public: true},
	{prefix: "/auth/reset-password", public: true},
	{prefix: "/health", public: true},
	{prefix: "/metrics", public: true},

	{prefix: "/auth/add-user", roles: []domain.Role{domain.RoleAdmin}},
	{prefix: "/auth/add-manager", roles: []domain.Role{domain.RoleAdmin}},
	{prefix: "/auth/approve-user", roles: []domain.Role{domain.RoleAdmin}},
	{prefix: "/auth/reject-user", roles: []domain.Role{domain.RoleAdmin}},

	{prefix: "/auth/change-password", roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser}},
	{prefix: "/upload", roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}},
	{prefix: "/email", roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}},
}

// Decide evaluates path against the rule table. Matching is longest-prefix so
// the most specific rule wins. A path matching no rule requires any
// authenticated (non-empty) role set; it is never public.
func Decide(path string, roles []domain.Role) Decision {
	var matched *rule
	for i := range rules {
		r := &rules[i]
		if !matchesPrefix(path, r.prefix) {
			continue
		}
		if matched == nil || len(r.prefix) > len(matched.prefix) {
			matched = r
		}
	}

	if matched == nil {
		// Default: authenticated required.
		if len(roles) > 0 {
			return Allow
		}
		return Deny
	}

	if matched.public {
		return Allow
	}

	for _, required := range matched.roles {
		for _, held := range roles {
			if held == required {
				return Allow
			}
		}
	}
	return Deny
}

// matchesPrefix reports whether path equals prefix or sits under it as a
// sub-path ("/upload" matches "/upload/file" but not "/uploads").
func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
