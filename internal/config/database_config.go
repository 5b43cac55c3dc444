package config

type Database struct{}

var _ DatabaseConfig = Database{}

func (Database) GetPostgresDSN() string {
	return v.GetString("POSTGRES_DSN")
}

// GetRedisAddr returns the shared cache address. Empty means the in-process
// role cache is used instead.
func (Database) GetRedisAddr() string {
	return v.GetString("REDIS_ADDR")
}

func (Database) GetRedisPassword() string {
	return v.GetString("REDIS_PASSWORD")
}

func (Database) GetRedisDB() int {
	return v.GetInt("REDIS_DB")
}
