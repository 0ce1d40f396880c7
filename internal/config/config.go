package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/api/resource"
)

const (
	StorageLocal    = "local"
	StorageS3       = "s3"
	StoragePostgres = "postgres"

	TrainerBuiltin = "builtin"
	TrainerRemote  = "remote"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Training TrainingConfig
	Trainer  TrainerConfig
	Profile  ProfileConfig
}

type AppConfig struct {
	Title string
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type StorageConfig struct {
	Backend string
	Dir     string
	S3      S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type UploadConfig struct {
	// MaxBytes is parsed from a Kubernetes style quantity such as "200Mi".
	MaxBytes int64
}

type TrainingConfig struct {
	Folds     int
	TrainSize float64
	SessionID int64
	Sort      string
	Include   []string
}

type TrainerConfig struct {
	Backend   string
	RemoteURL string
	Timeout   time.Duration
}

type ProfileConfig struct {
	CacheSize int
	Title     string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("APP_TITLE", "AutoStreamML")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8501)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 100)
	v.SetDefault("LOGGER_MAX_BACKUPS", 3)
	v.SetDefault("LOGGER_MAX_AGE_DAYS", 28)
	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("STORAGE_DIR", ".")
	v.SetDefault("STORAGE_S3_ENDPOINT", "")
	v.SetDefault("STORAGE_S3_REGION", "us-east-1")
	v.SetDefault("STORAGE_S3_BUCKET", "autostreamml")
	v.SetDefault("STORAGE_S3_PREFIX", "session")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "autostreamml")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("UPLOAD_MAX_SIZE", "200Mi")
	v.SetDefault("TRAINING_FOLDS", 10)
	v.SetDefault("TRAINING_TRAIN_SIZE", 0.7)
	v.SetDefault("TRAINING_SESSION_ID", 0)
	v.SetDefault("TRAINING_SORT", "R2")
	v.SetDefault("TRAINING_INCLUDE", "")
	v.SetDefault("TRAINER_BACKEND", TrainerBuiltin)
	v.SetDefault("TRAINER_REMOTE_URL", "")
	v.SetDefault("TRAINER_REMOTE_TIMEOUT", "10m")
	v.SetDefault("PROFILE_CACHE_SIZE", 16)
	v.SetDefault("PROFILE_TITLE", "Exploratory Data Analysis Report")

	// Env
	v.AutomaticEnv()

	maxUpload, err := resource.ParseQuantity(v.GetString("UPLOAD_MAX_SIZE"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	lifetime, err := time.ParseDuration(v.GetString("DATABASE_CONN_MAX_LIFETIME"))
	if err != nil {
		lifetime = 30 * time.Minute
	}

	timeout, err := time.ParseDuration(v.GetString("TRAINER_REMOTE_TIMEOUT"))
	if err != nil {
		timeout = 10 * time.Minute
	}

	cfg := &Config{
		App: AppConfig{
			Title: v.GetString("APP_TITLE"),
		},
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOGGER_MAX_AGE_DAYS"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Dir:     v.GetString("STORAGE_DIR"),
			S3: S3Config{
				Endpoint:        v.GetString("STORAGE_S3_ENDPOINT"),
				Region:          v.GetString("STORAGE_S3_REGION"),
				Bucket:          v.GetString("STORAGE_S3_BUCKET"),
				Prefix:          v.GetString("STORAGE_S3_PREFIX"),
				AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			},
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Upload: UploadConfig{
			MaxBytes: maxUpload.Value(),
		},
		Training: TrainingConfig{
			Folds:     v.GetInt("TRAINING_FOLDS"),
			TrainSize: v.GetFloat64("TRAINING_TRAIN_SIZE"),
			SessionID: v.GetInt64("TRAINING_SESSION_ID"),
			Sort:      strings.ToUpper(v.GetString("TRAINING_SORT")),
			Include:   splitList(v.GetString("TRAINING_INCLUDE")),
		},
		Trainer: TrainerConfig{
			Backend:   strings.ToLower(v.GetString("TRAINER_BACKEND")),
			RemoteURL: strings.TrimRight(v.GetString("TRAINER_REMOTE_URL"), "/"),
			Timeout:   timeout,
		},
		Profile: ProfileConfig{
			CacheSize: v.GetInt("PROFILE_CACHE_SIZE"),
			Title:     v.GetString("PROFILE_TITLE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageLocal, StoragePostgres:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Trainer.Backend {
	case TrainerBuiltin:
	case TrainerRemote:
		if c.Trainer.RemoteURL == "" {
			return fmt.Errorf("TRAINER_REMOTE_URL is required for the remote trainer")
		}
	default:
		return fmt.Errorf("unknown TRAINER_BACKEND %q", c.Trainer.Backend)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if c.Training.Folds < 2 {
		return fmt.Errorf("TRAINING_FOLDS must be at least 2, got %d", c.Training.Folds)
	}
	if c.Training.TrainSize <= 0 || c.Training.TrainSize >= 1 {
		return fmt.Errorf("TRAINING_TRAIN_SIZE must be in (0, 1), got %g", c.Training.TrainSize)
	}
	if c.Profile.CacheSize < 0 {
		return fmt.Errorf("PROFILE_CACHE_SIZE must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
