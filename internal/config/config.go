package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Bootstrap BootstrapAdminConfig
}

type ServerConfig struct {
	Port string
	Env  string
	// CORSOrigins are the allowed browser origins. Ignored in development,
	// where every origin is allowed.
	CORSOrigins []string
}

type StorageConfig struct {
	// Path is the SQLite database file holding the key/value state.
	Path string
	// MigrationsDir is where goose looks for schema migrations.
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// RateLimit toggles the redis-backed limiter on the auth endpoints.
	RateLimit bool
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// BootstrapAdminConfig is the externally provided admin credential pair. When
// Phone or Password is empty the bootstrap login path is disabled entirely.
type BootstrapAdminConfig struct {
	Phone    string
	Password string
	Name     string
}

// Enabled reports whether the bootstrap admin login path is configured.
func (b BootstrapAdminConfig) Enabled() bool {
	return b.Phone != "" && b.Password != ""
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("STORAGE_PATH", "pharmacure.db")
	viper.SetDefault("STORAGE_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_RATE_LIMIT", false)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("BOOTSTRAP_ADMIN_NAME", "Administrator")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Env:         viper.GetString("SERVER_ENV"),
			CORSOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Storage: StorageConfig{
			Path:          viper.GetString("STORAGE_PATH"),
			MigrationsDir: viper.GetString("STORAGE_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:      viper.GetString("REDIS_HOST"),
			Port:      viper.GetString("REDIS_PORT"),
			Password:  viper.GetString("REDIS_PASSWORD"),
			DB:        viper.GetInt("REDIS_DB"),
			RateLimit: viper.GetBool("REDIS_RATE_LIMIT"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Bootstrap: BootstrapAdminConfig{
			Phone:    viper.GetString("BOOTSTRAP_ADMIN_PHONE"),
			Password: viper.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
			Name:     viper.GetString("BOOTSTRAP_ADMIN_NAME"),
		},
	}
}
