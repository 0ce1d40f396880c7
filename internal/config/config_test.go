package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "AutoStreamML", cfg.App.Title)
	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, int64(200*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 10, cfg.Training.Folds)
	assert.Equal(t, 0.7, cfg.Training.TrainSize)
	assert.Equal(t, "R2", cfg.Training.Sort)
	assert.Empty(t, cfg.Training.Include)
	assert.Equal(t, TrainerBuiltin, cfg.Trainer.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Trainer.Timeout)
	assert.Equal(t, 16, cfg.Profile.CacheSize)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("UPLOAD_MAX_SIZE", "1Gi")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("TRAINING_INCLUDE", "lr, ridge ,")
	t.Setenv("TRAINING_SORT", "mae")
	t.Setenv("TRAINER_BACKEND", "remote")
	t.Setenv("TRAINER_REMOTE_URL", "http://automl:9000/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1<<30), cfg.Upload.MaxBytes)
	assert.Equal(t, StorageS3, cfg.Storage.Backend)
	assert.Equal(t, []string{"lr", "ridge"}, cfg.Training.Include)
	assert.Equal(t, "MAE", cfg.Training.Sort)
	assert.Equal(t, "http://automl:9000", cfg.Trainer.RemoteURL)
}

func TestLoad_InvalidQuantity(t *testing.T) {
	t.Setenv("UPLOAD_MAX_SIZE", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("TRAINER_BACKEND", "remote")
	_, err := Load()
	assert.ErrorContains(t, err, "TRAINER_REMOTE_URL")

	t.Setenv("TRAINER_BACKEND", "builtin")
	t.Setenv("STORAGE_BACKEND", "ftp")
	_, err = Load()
	assert.ErrorContains(t, err, "STORAGE_BACKEND")

	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("TRAINING_FOLDS", "1")
	_, err = Load()
	assert.ErrorContains(t, err, "TRAINING_FOLDS")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.DSN())
}
