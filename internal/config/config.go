// Package config loads runtime configuration from .env and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ProjectIDEnvKey names the environment variable holding the GCP project identifier.
const ProjectIDEnvKey = "GCP_PROJECT_ID"

// Storage backend identifiers accepted by STORAGE_BACKEND.
const (
	BackendGCS     = "gcs"
	BackendMinio   = "minio"
	BackendS3      = "s3"
	BackendSevalla = "sevalla"
	BackendLocal   = "local"
	BackendMemory  = "memory"
)

// ErrInvalid is the root of every configuration failure.
var ErrInvalid = errors.New("configuration error")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Artifacts ArtifactsConfig
	Cache     CacheConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	UploadDir      string
}

type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Backend string
	GCS     GCSConfig
	Minio   MinioConfig
	Sevalla SevallaConfig
	Local   LocalConfig
}

type GCSConfig struct {
	ProjectID       string
	Region          string
	CredentialsFile string
	// Endpoint overrides the JSON API base path (emulators); auth is skipped when set.
	Endpoint string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type SevallaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type LocalConfig struct {
	RootDir string
}

// ArtifactsConfig carries the bucket and key prefixes the pipeline writes under.
type ArtifactsConfig struct {
	Bucket           string
	ModelRegistryKey string
	ModelPusherKey   string
	EstimatorTmpDir  string
}

type CacheConfig struct {
	Enabled        bool
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	ListTTLSeconds int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env (if present) and the environment once per process.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper builds a Config from v after registering defaults and environment binding.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			UploadDir:      v.GetString("SERVER_UPLOAD_DIR"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			GCS: GCSConfig{
				ProjectID:       strings.TrimSpace(v.GetString(ProjectIDEnvKey)),
				Region:          v.GetString("GCP_REGION"),
				CredentialsFile: v.GetString("GCP_CREDENTIALS_FILE"),
				Endpoint:        v.GetString("GCS_ENDPOINT"),
			},
			Minio: MinioConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Region:    v.GetString("MINIO_REGION"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
			Sevalla: SevallaConfig{
				Endpoint:  v.GetString("SEVALLA_ENDPOINT"),
				AccessKey: v.GetString("SEVALLA_ACCESS_KEY"),
				SecretKey: v.GetString("SEVALLA_SECRET_KEY"),
				Region:    v.GetString("SEVALLA_REGION"),
				UseSSL:    v.GetBool("SEVALLA_USE_SSL"),
			},
			Local: LocalConfig{
				RootDir: v.GetString("LOCAL_STORAGE_DIR"),
			},
		},
		Artifacts: ArtifactsConfig{
			Bucket:           v.GetString("ARTIFACT_BUCKET"),
			ModelRegistryKey: v.GetString("MODEL_REGISTRY_KEY"),
			ModelPusherKey:   v.GetString("MODEL_PUSHER_KEY"),
			EstimatorTmpDir:  v.GetString("ESTIMATOR_TMP_DIR"),
		},
		Cache: CacheConfig{
			Enabled:        v.GetBool("CACHE_ENABLED"),
			RedisURL:       v.GetString("REDIS_URL"),
			RedisHost:      v.GetString("REDIS_HOST"),
			RedisPort:      v.GetString("REDIS_PORT"),
			RedisPassword:  v.GetString("REDIS_PASSWORD"),
			RedisDB:        v.GetInt("REDIS_DB"),
			ListTTLSeconds: v.GetInt("CACHE_LIST_TTL_SECONDS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 60)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "model_registry")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("STORAGE_BACKEND", BackendGCS)
	v.SetDefault(ProjectIDEnvKey, "")
	v.SetDefault("GCP_REGION", "us-central1")
	v.SetDefault("GCP_CREDENTIALS_FILE", "")
	v.SetDefault("GCS_ENDPOINT", "")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_REGION", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("SEVALLA_ENDPOINT", "")
	v.SetDefault("SEVALLA_ACCESS_KEY", "")
	v.SetDefault("SEVALLA_SECRET_KEY", "")
	v.SetDefault("SEVALLA_REGION", "us-east-1")
	v.SetDefault("SEVALLA_USE_SSL", true)
	v.SetDefault("LOCAL_STORAGE_DIR", "./data/objects")
	v.SetDefault("ARTIFACT_BUCKET", "model-artifacts")
	v.SetDefault("MODEL_REGISTRY_KEY", "model-registry")
	v.SetDefault("MODEL_PUSHER_KEY", "model-registry")
	v.SetDefault("ESTIMATOR_TMP_DIR", os.TempDir())
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_LIST_TTL_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Validate checks the settings every entry point depends on. Backend specific
// credentials are checked when the backend is opened.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendGCS:
		if c.Storage.GCS.ProjectID == "" {
			return fmt.Errorf("%w: environment variable %s is not set", ErrInvalid, ProjectIDEnvKey)
		}
	case BackendMinio, BackendS3, BackendSevalla, BackendLocal, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}

	if strings.TrimSpace(c.Artifacts.Bucket) == "" {
		return fmt.Errorf("%w: ARTIFACT_BUCKET must be provided", ErrInvalid)
	}
	if c.Database.Enabled && c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("%w: unsupported DB_DRIVER %q", ErrInvalid, c.Database.Driver)
	}
	return nil
}

// EnsureDir creates dir when missing.
func EnsureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
}
