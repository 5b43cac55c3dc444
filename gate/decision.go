package gate

import "github.com/immoflow/accessgate/roles"

// Decision is the tri-state outcome of a permission check.
type Decision int

const (
	Pending Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "pending"
}

// DenyCause categorizes a denial for notifications and diagnostics.
type DenyCause string

const (
	CauseNone            DenyCause = ""
	CauseUnauthenticated DenyCause = "unauthenticated"
	CauseTimeout         DenyCause = "timeout"
	CauseDomainMismatch  DenyCause = "domain_mismatch"
	CauseRoleMismatch    DenyCause = "role_mismatch"
	CauseNoRoleAssigned  DenyCause = "no_role_assigned"
)

// Requirement is what a guarded surface demands of the session. The zero
// value means "any authenticated session".
type Requirement struct {
	Role        roles.Role
	EmailDomain string
}

func (r Requirement) zero() bool {
	return r.Role == roles.RoleNone && r.EmailDomain == ""
}

// Result is the terminal outcome of one check.
type Result struct {
	Decision     Decision
	Cause        DenyCause
	Role         roles.Role // resolved role, when resolution ran
	RedirectPath string     // where to send a denied principal
}

// Redirect targets for denied checks.
const (
	PathLogin        = "/login"
	PathAccessDenied = "/access-denied"
)
