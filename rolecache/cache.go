package rolecache

import (
	"context"
	"time"

	"github.com/immoflow/accessgate/roles"
)

// DefaultTTL is how long a resolved role stays valid before the next check
// goes back to the role store.
const DefaultTTL = 30 * time.Minute

// Cache stores the last resolved role for the active session so repeated
// permission checks skip the remote lookup.
//
// A negative result is never cached: Put(RoleNone) clears any existing entry
// instead of storing it, so the next check re-queries the store. Callers must
// Clear on sign-out and whenever the session's user ID changes, otherwise a
// previous account's role can leak into the next one.
type Cache interface {
	Put(ctx context.Context, role roles.Role) error
	Get(ctx context.Context) (roles.Role, bool, error)
	Clear(ctx context.Context) error
}
