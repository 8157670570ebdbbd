package access

import (
	dErrors "meridian/pkg/domain-errors"
)

// Role is a named bundle of permissions assigned to a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleReadonly Role = "readonly"
)

// Roles lists every known role for validation and exhaustive tests.
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff, RoleReadonly}

// ParseRole validates and parses a role string.
//
// Usage: call at trust boundaries for external input. Unknown role strings
// must never be persisted; they would fail every permission check downstream.
//
// Errors: returns CodeInvalidInput for unknown roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleStaff, RoleReadonly:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: must be admin, manager, staff or readonly")
	}
}

// Action is one of the four CRUD operations subject to access control.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every known action for validation and exhaustive tests.
var Actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// ParseAction validates and parses an action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return Action(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown action: must be create, read, update or delete")
	}
}

// Resource is a logical entity type subject to access control.
type Resource string

const (
	ResourcePatients            Resource = "patients"
	ResourceClaims              Resource = "claims"
	ResourcePayments            Resource = "payments"
	ResourceProviders           Resource = "providers"
	ResourcePriorAuthorizations Resource = "prior_authorizations"

	// ResourceAny is the wildcard resource matching every resource.
	// It appears only in permission grants, never in requests.
	ResourceAny Resource = "*"
)

// Resources lists every concrete (non-wildcard) resource.
var Resources = []Resource{
	ResourcePatients,
	ResourceClaims,
	ResourcePayments,
	ResourceProviders,
	ResourcePriorAuthorizations,
}

// ParseResource validates and parses a resource string. The wildcard is not
// accepted; callers request access to concrete resources only.
func ParseResource(s string) (Resource, error) {
	for _, r := range Resources {
		if Resource(s) == r {
			return r, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown resource")
}

// Permission is an allowed (resource, action) pair. Immutable.
type Permission struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
}

// Matches reports whether this grant covers a request for the given
// resource and action. Comparison is exact string equality, with the
// wildcard resource covering every resource.
func (p Permission) Matches(resource Resource, action Action) bool {
	return (p.Resource == ResourceAny || p.Resource == resource) && p.Action == action
}
