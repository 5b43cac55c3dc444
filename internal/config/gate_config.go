package config

import "time"

type Gate struct{}

var _ GateConfig = Gate{}

// GetTrustedDomain returns the organizational email domain whose members are
// treated as admins without a role row.
func (Gate) GetTrustedDomain() string {
	return v.GetString("TRUSTED_DOMAIN")
}

// GetCheckTimeout bounds how long a permission check may stay pending before
// a forced decision.
func (Gate) GetCheckTimeout() time.Duration {
	return v.GetDuration("CHECK_TIMEOUT")
}

func (Gate) GetRoleCacheTTL() time.Duration {
	return v.GetDuration("ROLE_CACHE_TTL")
}

func (Gate) GetRetryAttempts() int {
	return v.GetInt("RETRY_ATTEMPTS")
}

func (Gate) GetRetryUnit() time.Duration {
	return v.GetDuration("RETRY_UNIT")
}

// GetJWTSecret is the shared HMAC secret of the hosted auth service, used to
// verify bearer tokens locally when OIDC discovery is not configured.
func (Gate) GetJWTSecret() string {
	return v.GetString("JWT_SECRET")
}

func (Gate) GetOIDCIssuer() string {
	return v.GetString("OIDC_ISSUER")
}

func (Gate) GetOIDCClientID() string {
	return v.GetString("OIDC_CLIENT_ID")
}

func (Gate) GetOIDCClientSecret() string {
	return v.GetString("OIDC_CLIENT_SECRET")
}
