package auth

// Gate answers permission questions for roles. It is a pure lookup against
// the injected catalog: no network, no data store, safe for concurrent use.
type Gate struct {
	catalog *Catalog
}

func NewGate(catalog *Catalog) *Gate {
	return &Gate{catalog: catalog}
}

func (g *Gate) HasPermission(role Role, permission Permission) bool {
	return g.catalog.Grants(role, permission)
}

// HasAnyPermission is satisfied by at least one match.
func (g *Gate) HasAnyPermission(role Role, permissions []Permission) bool {
	for _, p := range permissions {
		if g.catalog.Grants(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions requires every listed permission to be granted.
func (g *Gate) HasAllPermissions(role Role, permissions []Permission) bool {
	for _, p := range permissions {
		if !g.catalog.Grants(role, p) {
			return false
		}
	}
	return true
}
