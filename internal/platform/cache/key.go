package cache

import (
	"fmt"
	"strings"
)

const sep = "|"

// Key identifies one cached query: a resource name, an optional scope (the
// session subject for caller-specific data) and ordered parameters.
type Key struct {
	Resource string
	Scope    string
	Params   []string
}

func NewKey(resource string, params ...any) Key {
	k := Key{Resource: resource, Params: make([]string, 0, len(params))}
	for _, p := range params {
		k.Params = append(k.Params, fmt.Sprint(p))
	}
	return k
}

// Scoped returns a copy of k bound to scope.
func (k Key) Scoped(scope string) Key {
	out := Key{Resource: k.Resource, Scope: scope, Params: make([]string, len(k.Params))}
	copy(out.Params, k.Params)
	return out
}

func (k Key) String() string {
	parts := make([]string, 0, len(k.Params)+2)
	parts = append(parts, escape(k.Resource), escape(k.Scope))
	for _, p := range k.Params {
		parts = append(parts, escape(p))
	}
	return strings.Join(parts, sep)
}

func resourcePrefix(resource string) string {
	return escape(resource) + sep
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, sep, `\`+sep).Replace(s)
}
