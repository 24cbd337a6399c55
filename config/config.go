package config

import (
	"fmt"
	"os"
)

// Storage backend selection, fixed at startup and never mixed
// within one deployment.
const (
	StorageFilesystem = "filesystem"
	StorageDatabase   = "database"
)

type Config struct {
	DatabaseURL    string
	Port           string
	StorageBackend string
	UploadDir      string
	JWTSecret      string
}

// Load reads configuration from the environment. Defaults are for
// local development only and must not be relied on in a deployed
// environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           envOrDefault("PORT", "8080"),
		StorageBackend: envOrDefault("STORAGE_BACKEND", StorageFilesystem),
		UploadDir:      envOrDefault("UPLOAD_DIR", "./uploads"),
		JWTSecret:      envOrDefault("JWT_SECRET", "dev-secret-change-me"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envOrDefault("DB_USER", "postgres"),
			envOrDefault("DB_PASSWORD", "postgres"),
			envOrDefault("DB_HOST", "localhost"),
			envOrDefault("DB_PORT", "5432"),
			envOrDefault("DB_NAME", "atelier"),
		)
	}

	if cfg.StorageBackend != StorageFilesystem && cfg.StorageBackend != StorageDatabase {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %q or %q)",
			cfg.StorageBackend, StorageFilesystem, StorageDatabase)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
