package roles

import "context"

// Repo is the generic role relation, keyed by user ID. The backing store may
// hold multiple rows per user; implementations return the first match.
type Repo interface {
	Get(ctx context.Context, userID string) (Role, error) // RoleNone, nil when no row exists
	Exists(ctx context.Context, userID string) (bool, error)
	Insert(ctx context.Context, userID string, role Role) error
	Delete(ctx context.Context, userID string) error
}

// ProviderMembershipRepo is the separate service-provider relation. A row for
// a user marks the account as a provider regardless of the generic role
// relation.
type ProviderMembershipRepo interface {
	IsProvider(ctx context.Context, userID string) (bool, error)
}
