package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestFromViper_Defaults(t *testing.T) {
	clearEnv(t, "STORAGE_BACKEND", ProjectIDEnvKey, "ARTIFACT_BUCKET", "MODEL_REGISTRY_KEY",
		"MODEL_PUSHER_KEY", "DB_ENABLED", "CACHE_ENABLED", "LOG_LEVEL", "SERVER_PORT")

	cfg := FromViper(viper.New())

	assert.Equal(t, BackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "model-artifacts", cfg.Artifacts.Bucket)
	assert.Equal(t, "model-registry", cfg.Artifacts.ModelRegistryKey)
	assert.Equal(t, "model-registry", cfg.Artifacts.ModelPusherKey)
	assert.NotEmpty(t, cfg.Artifacts.EstimatorTmpDir)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 60, cfg.Cache.ListTTLSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", " MinIO ")
	t.Setenv(ProjectIDEnvKey, "  my-project ")
	t.Setenv("ARTIFACT_BUCKET", "visa-models")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CACHE_LIST_TTL_SECONDS", "15")

	cfg := FromViper(viper.New())

	assert.Equal(t, BackendMinio, cfg.Storage.Backend)
	assert.Equal(t, "my-project", cfg.Storage.GCS.ProjectID)
	assert.Equal(t, "visa-models", cfg.Artifacts.Bucket)
	assert.True(t, cfg.Storage.Minio.UseSSL)
	assert.Equal(t, 15, cfg.Cache.ListTTLSeconds)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   StorageConfig{Backend: BackendGCS, GCS: GCSConfig{ProjectID: "p"}},
			Artifacts: ArtifactsConfig{Bucket: "b"},
			Database:  DatabaseConfig{Driver: "postgres"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid gcs", mutate: func(*Config) {}},
		{name: "gcs without project id", mutate: func(c *Config) { c.Storage.GCS.ProjectID = "" }, wantErr: true},
		{name: "memory without project id", mutate: func(c *Config) {
			c.Storage.Backend = BackendMemory
			c.Storage.GCS.ProjectID = ""
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "ftp" }, wantErr: true},
		{name: "blank bucket", mutate: func(c *Config) { c.Artifacts.Bucket = "  " }, wantErr: true},
		{name: "pgx driver", mutate: func(c *Config) {
			c.Database.Enabled = true
			c.Database.Driver = "pgx"
		}},
		{name: "unsupported driver", mutate: func(c *Config) {
			c.Database.Enabled = true
			c.Database.Driver = "mysql"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestValidate_MissingProjectIDNamesVariable(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Backend: BackendGCS}, Artifacts: ArtifactsConfig{Bucket: "b"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ProjectIDEnvKey)
}
