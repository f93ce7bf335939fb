package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\nschedule:\n  watch_babies: [\"b1\"]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "gorm", cfg.Storage.Backend)
	assert.Equal(t, "default", cfg.Schedule.DefaultTemplateID)
	assert.Equal(t, 5, cfg.Schedule.BackupLimit)
	assert.Equal(t, []string{"b1"}, cfg.Schedule.WatchBabies)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestScheduleConfig_Location(t *testing.T) {
	loc, err := ScheduleConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())

	_, err = ScheduleConfig{Timezone: "Not/AZone"}.Location()
	assert.Error(t, err)
}
