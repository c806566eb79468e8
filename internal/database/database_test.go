package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("file:x?mode=memory"))
}

func TestConnect_SQLiteFileAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "police-app.db")
	cfg := &config.Config{DBDriver: config.DriverSQLite, DatabasePath: path}

	db, err := Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	applied, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	info, err := Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Positive(t, info.Size)
	assert.NotNil(t, info.Modified)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestStat_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	info, err := Stat(path)
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Nil(t, info.Modified)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
