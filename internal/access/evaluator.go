package access

// HasPermission reports whether the role holds an exact-or-wildcard grant
// for the requested (resource, action) pair. It never returns an error:
// unknown roles or resources simply yield false.
func HasPermission(role Role, resource Resource, action Action) bool {
	for _, p := range rolePermissions[role] {
		if p.Matches(resource, action) {
			return true
		}
	}
	return false
}

// CanAccess reports whether the role may read the resource.
func CanAccess(role Role, resource Resource) bool {
	return HasPermission(role, resource, ActionRead)
}

// CanCreate reports whether the role may create the resource.
func CanCreate(role Role, resource Resource) bool {
	return HasPermission(role, resource, ActionCreate)
}

// CanUpdate reports whether the role may update the resource.
func CanUpdate(role Role, resource Resource) bool {
	return HasPermission(role, resource, ActionUpdate)
}

// CanDelete reports whether the role may delete the resource.
func CanDelete(role Role, resource Resource) bool {
	return HasPermission(role, resource, ActionDelete)
}

// IsAdmin reports whether the role is exactly admin.
func IsAdmin(role Role) bool {
	return role == RoleAdmin
}

// IsManager reports whether the role is manager or above. Used as the gate
// for sensitive panels such as the security overview.
func IsManager(role Role) bool {
	return role == RoleAdmin || role == RoleManager
}
