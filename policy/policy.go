package policy

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// KindAll allows every statement type when present in the allow set.
	KindAll = "all"
	// KindUnknown labels statements the classifier could not map.
	KindUnknown = "unknown"
)

// Policy controls what the server lets a client do: which SQL statement types
// may run and, for HTTP transports, how callers authenticate.
type Policy struct {
	// Allowed holds lowercase statement types permitted to run.
	Allowed map[string]bool `json:"allowed,omitempty" yaml:"allowed,omitempty"`
	// Disallowed holds lowercase statement types rejected before dispatch.
	Disallowed map[string]bool `json:"disallowed,omitempty" yaml:"disallowed,omitempty"`

	// Oauth2Config protects the HTTP transports when set
	Oauth2Config *oauth2.Config `json:"oauth2,omitempty" yaml:"oauth2,omitempty"`

	// RequireIdentityToken indicates whether this policy mandates identity tokens
	RequireIdentityToken bool `json:"requireIdentityToken,omitempty" yaml:"requireIdentityToken,omitempty"`
}

// DeniedError is returned when a statement type is not permitted.
type DeniedError struct {
	Kind string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("Statement type of %s is not allowed. Please review sql statement permissions in configuration file.", e.Kind)
}

// FromPermissions flattens a list of single-key {kind: bool} entries into
// allow and disallow sets.
func FromPermissions(permissions []map[string]bool) *Policy {
	ret := &Policy{Allowed: map[string]bool{}, Disallowed: map[string]bool{}}
	for _, entry := range permissions {
		for kind, allowed := range entry {
			key := strings.ToLower(strings.TrimSpace(kind))
			if key == "" {
				continue
			}
			if allowed {
				ret.Allowed[key] = true
			} else {
				ret.Disallowed[key] = true
			}
		}
	}
	return ret
}

// Allows reports whether the statement kind may run.
func (p *Policy) Allows(kind string) bool {
	if p == nil {
		return false
	}
	key := strings.ToLower(kind)
	switch {
	case p.Allowed[KindAll]:
		return true
	case p.Disallowed[key]:
		return false
	case p.Allowed[key]:
		return true
	case p.Allowed[KindUnknown]:
		// types missing from both sets are treated as unmapped
		return true
	}
	return false
}

// Authorize returns *DeniedError when kind is not allowed.
func (p *Policy) Authorize(kind string) error {
	if p.Allows(kind) {
		return nil
	}
	return &DeniedError{Kind: kind}
}
