package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"babyday-backend/config"
	"babyday-backend/internal/model"
)

func TestInit_SQLiteMemory(t *testing.T) {
	db, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file:dbinit?mode=memory&cache=shared"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&model.KVEntry{}))
	assert.True(t, db.Migrator().HasTable(&model.PushSubscription{}))
	assert.True(t, db.Migrator().HasColumn(&model.KVEntry{}, "entry_key"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
