package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Argon2   Argon2Config
	Secure   SecureConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URI             string
	Name            string
	UsersCollection string
}

type SessionConfig struct {
	Secret  string
	TTLDays int
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

type SecureConfig struct {
	IsDevelopment bool
}

func Load() (*Config, error) {
	viper.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		_ = viper.ReadInConfig()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URI:             getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Name:            getEnvOrDefault("MONGO_DATABASE", "horus"),
			UsersCollection: getEnvOrDefault("MONGO_USERS_COLLECTION", "Users"),
		},
		Session: SessionConfig{
			Secret:  os.Getenv("SESSION_SECRET"),
			TTLDays: viper.GetInt("SESSION_TTL_DAYS"),
		},
		Argon2: Argon2Config{
			Memory:      uint32(viper.GetInt("ARGON2_MEMORY")),
			Iterations:  uint32(viper.GetInt("ARGON2_ITERATIONS")),
			Parallelism: uint8(viper.GetInt("ARGON2_PARALLELISM")),
		},
		Secure: SecureConfig{
			IsDevelopment: viper.GetBool("DEVELOPMENT"),
		},
	}
	if cfg.Session.TTLDays <= 0 {
		cfg.Session.TTLDays = 14
	}
	if cfg.Argon2.Memory == 0 {
		cfg.Argon2.Memory = 64 * 1024
	}
	if cfg.Argon2.Iterations == 0 {
		cfg.Argon2.Iterations = 3
	}
	if cfg.Argon2.Parallelism == 0 {
		cfg.Argon2.Parallelism = 2
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
