package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHEETS_URL", "https://script.example.com/exec")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, BackendSheets, cfg.Backend.Driver)
	assert.Equal(t, "Karyawan", cfg.Backend.EmployeeSheet)
	assert.Equal(t, "Absensi Harian", cfg.Backend.AttendanceSheet)
	assert.Equal(t, 10*time.Second, cfg.Sheets.Timeout)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, "Asia/Jakarta", cfg.Attendance.Timezone)
}

func TestLoadRequiresSheetsURL(t *testing.T) {
	t.Setenv("SHEETS_URL", "")
	t.Setenv("BACKEND_DRIVER", BackendSheets)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadPostgresBackendWithRedisCache(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "Postgres")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend.Driver)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("SHEETS_URL", "https://script.example.com/exec")
	t.Setenv("CACHE_DRIVER", "memcached")

	_, err := Load()
	require.Error(t, err)
}
