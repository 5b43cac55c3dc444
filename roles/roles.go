package roles

import "strings"

// Role is the access tier attached to a platform account.
type Role string

const (
	// RoleAdmin is back-office staff. Admin satisfies every role requirement.
	RoleAdmin Role = "admin"
	// RoleManager is a property manager. Managers inherit user-level access.
	RoleManager Role = "manager"
	// RoleProvider is an external service provider or technician with
	// access to the provider extranet.
	RoleProvider Role = "provider"
	// RoleUser is a tenant or owner using the resident portal.
	RoleUser Role = "user"
	// RoleNone means no role has been resolved for the account. It never
	// satisfies a requirement.
	RoleNone Role = ""
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleProvider, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Satisfies reports whether a resolved role meets a required role.
// An empty requirement is met by any role including RoleNone (the gate
// treats "authenticated" as sufficient). RoleNone never satisfies a
// concrete requirement.
func (r Role) Satisfies(required Role) bool {
	if required == RoleNone {
		return true
	}
	if r == RoleNone {
		return false
	}
	if r == required {
		return true
	}
	if r == RoleAdmin {
		return true
	}
	if r == RoleManager && required == RoleUser {
		return true
	}
	return false
}

// MatchesDomain reports whether an email address belongs to the given
// organizational domain. The comparison is case-insensitive and requires a
// full "@domain" suffix so that "evil-trusted.example" does not match
// "trusted.example".
func MatchesDomain(email, domain string) bool {
	if email == "" || domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain))
}
