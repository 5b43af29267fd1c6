package auth

// Capability tags gating dashboard and hardware actions.
const (
	PermViewDashboard  Permission = "view_dashboard"
	PermViewAnalytics  Permission = "view_analytics"
	PermAddTracker     Permission = "add_tracker"
	PermEditTracker    Permission = "edit_tracker"
	PermDeleteTracker  Permission = "delete_tracker"
	PermManageUsers    Permission = "manage_users"
	PermViewUsers      Permission = "view_users"
	PermSystemConfig   Permission = "system_config"
	PermViewLogs       Permission = "view_logs"
	PermDeployFirmware Permission = "deploy_firmware"
	PermManageDevices  Permission = "manage_devices"
)

// AllPermissions lists every capability tag. Admin is granted exactly this
// set, which keeps it a superset of every other role by construction.
var AllPermissions = []Permission{
	PermViewDashboard,
	PermViewAnalytics,
	PermAddTracker,
	PermEditTracker,
	PermDeleteTracker,
	PermManageUsers,
	PermViewUsers,
	PermSystemConfig,
	PermViewLogs,
	PermDeployFirmware,
	PermManageDevices,
}

// Catalog is the immutable role → permission mapping. It is built once at
// startup and injected wherever authorization decisions are made; reads need
// no locking because the map is never mutated after construction.
type Catalog struct {
	grants map[Role][]Permission
}

// NewCatalog copies the given mapping so later changes to the argument cannot
// leak into the catalog.
func NewCatalog(grants map[Role][]Permission) *Catalog {
	copied := make(map[Role][]Permission, len(grants))
	for role, perms := range grants {
		list := make([]Permission, len(perms))
		copy(list, perms)
		copied[role] = list
	}
	return &Catalog{grants: copied}
}

// DefaultCatalog builds the canonical role taxonomy.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[Role][]Permission{
		RoleAdmin: AllPermissions,
		RoleManager: {
			PermViewDashboard,
			PermViewAnalytics,
			PermAddTracker,
			PermEditTracker,
			PermViewUsers,
			PermManageDevices,
		},
		RoleOperator: {
			PermViewDashboard,
			PermAddTracker,
			PermEditTracker,
			PermManageDevices,
		},
		RoleViewer: {
			PermViewDashboard,
		},
	})
}

// PermissionsFor returns a copy of the role's grant set. Unknown roles get an
// empty set: the catalog fails closed, it never grants by default and never
// returns an error.
func (c *Catalog) PermissionsFor(role Role) []Permission {
	perms, ok := c.grants[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Grants reports whether the role's set includes the permission.
func (c *Catalog) Grants(role Role, permission Permission) bool {
	for _, p := range c.grants[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Roles returns the roles the catalog knows about.
func (c *Catalog) Roles() []Role {
	roles := make([]Role, 0, len(c.grants))
	for role := range c.grants {
		roles = append(roles, role)
	}
	return roles
}
