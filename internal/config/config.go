package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	GateConfig
	DatabaseConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpSender() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// GateConfig carries the access-gating knobs: the trusted organizational
// email domain, the safety-timeout bound, cache TTL and retry schedule, and
// the hosted auth service credentials.
type GateConfig interface {
	GetTrustedDomain() string
	GetCheckTimeout() time.Duration
	GetRoleCacheTTL() time.Duration
	GetRetryAttempts() int
	GetRetryUnit() time.Duration
	GetJWTSecret() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
}

type DatabaseConfig interface {
	GetPostgresDSN() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type mainConfig struct {
	EnvVars
	Cors
	Gate
	Database
}

func New() Config {
	return mainConfig{}
}
