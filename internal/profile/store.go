// Package profile wraps the external profile row-store. It is the only
// place user identity maps to a stored role; access control consumes it
// through the Store interface and treats it as an opaque collaborator.
package profile

import "context"

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound (wrapped) when no profile row exists for the user
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	// FindRole returns the stored role string for a user. The caller is
	// responsible for parsing and for failing closed on unknown values.
	FindRole(ctx context.Context, userID string) (string, error)

	// UpdateRole persists a new role for the user. The caller must have
	// already confirmed the mutation is authorized.
	UpdateRole(ctx context.Context, userID string, role string) error
}
