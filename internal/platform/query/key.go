package query

import "strings"

// Key identifies one cacheable request. Keys are compared structurally, so two
// keys with equal fields share one entry and one in-flight fetch.
type Key struct {
	Kind     string
	League   string
	Variable string
}

func (k Key) String() string {
	return strings.Join([]string{k.Kind, k.League, k.Variable}, "/")
}
