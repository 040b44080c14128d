package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Consume the lazy load so getters don't reset values set by the tests.
	_ = Load()
	os.Exit(m.Run())
}

func TestLoadFromFiles_LaterSourcesWin(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"db_driver":"postgres","app_port":"9000","queue_workers":4}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# local overrides\nAPP_PORT=\"9100\"\nKAFKA_BROKERS=a:9092, b:9092\n"), 0o644))

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "postgres", get("DB_DRIVER", ""))
	assert.Equal(t, "9100", get("APP_PORT", ""))
	assert.Equal(t, 4, getInt("QUEUE_WORKERS", 0))
	assert.Equal(t, []string{"a:9092", "b:9092"}, KafkaBrokers())
}

func TestLoadFromFiles_MissingFilesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
	assert.Equal(t, "memory", QueueDriver())
	assert.Nil(t, KafkaBrokers())
}

func TestDatabaseDSN_FollowsDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))

	Set("DB_DRIVER", "mysql")
	assert.Equal(t, defaultMySQLDSN, DatabaseDSN())

	Set("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())

	Set("DATABASE_DSN", "custom")
	assert.Equal(t, "custom", DatabaseDSN())
}

func TestLocation_FallsBackOnUnknownZone(t *testing.T) {
	Set("APP_TIMEZONE", "Mars/Olympus")
	assert.NotNil(t, Location())
}
