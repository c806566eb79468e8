package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
)

func TestRun_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     config.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "police.db"),
	}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "0001_criminal_registry")
	for _, table := range []string{"criminals", "crimes", "criminals_crimes", "schema_migrations"} {
		assert.Contains(t, out.String(), "✓ "+table+"\n")
	}

	out.Reset()
	require.NoError(t, run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "No pending migrations")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := open(&config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported driver")
}
