package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageFilesystem, cfg.StorageBackend)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
}

func TestLoad_ExplicitDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/prod")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/prod", cfg.DatabaseURL)
}

func TestLoad_ComposedDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "portfolio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.DatabaseURL, "db.internal")
	assert.Contains(t, cfg.DatabaseURL, "portfolio")
}

func TestLoad_InlineBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "database")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageDatabase, cfg.StorageBackend)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	assert.Error(t, err)
}
