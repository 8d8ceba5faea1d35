// Package allowlist holds the set of extensions a non-superuser is
// permitted to install or upgrade.
package allowlist

import (
	"sort"
	"strings"
)

// List is an immutable set of permitted extension names. The zero value
// permits nothing, matching an unset allowlist.
type List struct {
	names map[string]struct{}
}

// New builds a List from explicit names. Empty entries are dropped.
func New(names []string) *List {
	l := &List{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			l.names[n] = struct{}{}
		}
	}
	return l
}

// Parse builds a List from a comma-separated string, the format of the
// allowed_extensions configuration key.
func Parse(s string) *List {
	if strings.TrimSpace(s) == "" {
		return New(nil)
	}
	return New(strings.Split(s, ","))
}

// Allowed reports whether the named extension may be installed.
// Comparison is exact and case-sensitive, like the catalog lookup.
func (l *List) Allowed(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.names[name]
	return ok
}

// Empty reports whether the list permits nothing.
func (l *List) Empty() bool {
	return l == nil || len(l.names) == 0
}

// Names returns the permitted names in sorted order.
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.names))
	for n := range l.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
