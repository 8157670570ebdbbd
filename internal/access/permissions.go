package access

// rolePermissions is the single source of truth for what each role may do.
// It is static configuration: defined once, never mutated at runtime, and
// shared by reference without locking.
//
// There is no deny-list and no precedence - a single existential match
// grants access, and anything not listed here is denied (closed world).
// No role below admin holds delete rights; that is intentional product
// policy, not an omission.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		{Resource: ResourceAny, Action: ActionCreate},
		{Resource: ResourceAny, Action: ActionRead},
		{Resource: ResourceAny, Action: ActionUpdate},
		{Resource: ResourceAny, Action: ActionDelete},
	},
	RoleManager: {
		{Resource: ResourcePatients, Action: ActionCreate},
		{Resource: ResourcePatients, Action: ActionRead},
		{Resource: ResourcePatients, Action: ActionUpdate},
		{Resource: ResourceClaims, Action: ActionCreate},
		{Resource: ResourceClaims, Action: ActionRead},
		{Resource: ResourceClaims, Action: ActionUpdate},
		{Resource: ResourcePayments, Action: ActionRead},
		{Resource: ResourcePayments, Action: ActionUpdate},
		{Resource: ResourcePriorAuthorizations, Action: ActionCreate},
		{Resource: ResourcePriorAuthorizations, Action: ActionRead},
		{Resource: ResourcePriorAuthorizations, Action: ActionUpdate},
		{Resource: ResourceProviders, Action: ActionCreate},
		{Resource: ResourceProviders, Action: ActionRead},
		{Resource: ResourceProviders, Action: ActionUpdate},
	},
	RoleStaff: {
		{Resource: ResourcePatients, Action: ActionCreate},
		{Resource: ResourcePatients, Action: ActionRead},
		{Resource: ResourceClaims, Action: ActionCreate},
		{Resource: ResourceClaims, Action: ActionRead},
		{Resource: ResourcePriorAuthorizations, Action: ActionCreate},
		{Resource: ResourcePriorAuthorizations, Action: ActionRead},
		{Resource: ResourceProviders, Action: ActionRead},
	},
	RoleReadonly: {
		{Resource: ResourcePatients, Action: ActionRead},
		{Resource: ResourceClaims, Action: ActionRead},
		{Resource: ResourcePayments, Action: ActionRead},
		{Resource: ResourcePriorAuthorizations, Action: ActionRead},
		{Resource: ResourceProviders, Action: ActionRead},
	},
}

// Permissions returns the permission set for a role. Unknown roles have no
// permissions; they fall through to deny everywhere.
func Permissions(role Role) []Permission {
	return rolePermissions[role]
}
