package permissions

import "github.com/crossstore/hub/internal/protocol"

// Authorizer answers permission queries against an immutable table.
// It holds no other state and has no side effects.
type Authorizer struct {
	table Table
}

// NewAuthorizer creates an authorizer over table.
func NewAuthorizer(table Table) *Authorizer {
	return &Authorizer{table: table}
}

// Permitted reports whether origin may invoke method. The table is scanned
// in configured order; the first entry whose pattern accepts the origin and
// whose allowance contains the method grants access. An origin-only match
// does not stop the scan, so entries for the same origin are additive.
func (a *Authorizer) Permitted(origin string, method protocol.Method) bool {
	for _, entry := range a.table {
		if entry.allow[method] && entry.origin.MatchString(origin) {
			return true
		}
	}
	return false
}

// PermittedName is Permitted over a bare method name. Names outside the
// five recognized methods are never permitted regardless of table contents.
func (a *Authorizer) PermittedName(origin, name string) bool {
	method, ok := protocol.MethodFromName(name)
	if !ok {
		return false
	}
	return a.Permitted(origin, method)
}
