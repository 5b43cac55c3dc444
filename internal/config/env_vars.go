package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// All configuration comes from the environment; viper binds the variables
// and carries the defaults.
var v = viper.New()

func init() {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_NAME", "Accessgate")
	v.SetDefault("ENV", "DEV")
	v.SetDefault("BASE_URL", "http://localhost:8080")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_SENDER", "no-reply@immoflow.example")

	v.SetDefault("TRUSTED_DOMAIN", "immoflow.example")
	v.SetDefault("CHECK_TIMEOUT", "45s")
	v.SetDefault("ROLE_CACHE_TTL", "30m")
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_UNIT", "1s")

	v.SetDefault("POSTGRES_DSN", "postgres://localhost:5432/accessgate")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := v.GetString("PORT")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return v.GetString("APP_NAME")
}

func (EnvVars) GetEnv() string {
	return v.GetString("ENV")
}

// GetBaseURL returns the externally visible base URL of this service, used
// for redirect targets and reset links.
func (EnvVars) GetBaseURL() string {
	return v.GetString("BASE_URL")
}

func (EnvVars) GetSmtpHost() string {
	return v.GetString("SMTP_HOST")
}

func (EnvVars) GetSmtpPort() string {
	return v.GetString("SMTP_PORT")
}

func (EnvVars) GetSmtpAccount() string {
	return v.GetString("SMTP_ACCOUNT")
}

func (EnvVars) GetSmtpPassword() string {
	return v.GetString("SMTP_PASSWORD")
}

func (EnvVars) GetSmtpSender() string {
	return v.GetString("SMTP_SENDER")
}
