package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Backend drivers for the row store.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Cache drivers for the attendance snapshot.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend    BackendConfig
	Sheets     SheetsConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	CORS       CORSConfig
	Log        LogConfig
	Attendance AttendanceConfig
}

// BackendConfig selects the row store implementation.
type BackendConfig struct {
	Driver          string
	EmployeeSheet   string
	AttendanceSheet string
}

// SheetsConfig points at the spreadsheet web app.
type SheetsConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the attendance read cache. A zero TTL keeps entries until invalidated.
type CacheConfig struct {
	Driver string
	TTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig holds aggregation settings.
type AttendanceConfig struct {
	Timezone string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		Driver:          strings.ToLower(v.GetString("BACKEND_DRIVER")),
		EmployeeSheet:   v.GetString("SHEET_EMPLOYEES"),
		AttendanceSheet: v.GetString("SHEET_ATTENDANCE"),
	}

	cfg.Sheets = SheetsConfig{
		URL:       v.GetString("SHEETS_URL"),
		Timeout:   parseDuration(v.GetString("SHEETS_TIMEOUT"), 10*time.Second),
		RateLimit: v.GetFloat64("SHEETS_RATE_LIMIT"),
		RateBurst: v.GetInt("SHEETS_RATE_BURST"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Driver: strings.ToLower(v.GetString("CACHE_DRIVER")),
		TTL:    parseDuration(v.GetString("CACHE_TTL"), 0),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		Timezone: v.GetString("ATTENDANCE_TIMEZONE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend.Driver {
	case BackendSheets:
		if c.Sheets.URL == "" {
			return errors.New("SHEETS_URL is required when BACKEND_DRIVER=sheets")
		}
	case BackendPostgres:
	default:
		return errors.New("BACKEND_DRIVER must be one of sheets, postgres")
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return errors.New("CACHE_DRIVER must be one of memory, redis, none")
	}
	if c.Backend.EmployeeSheet == "" || c.Backend.AttendanceSheet == "" {
		return errors.New("sheet names must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("BACKEND_DRIVER", BackendSheets)
	v.SetDefault("SHEET_EMPLOYEES", "Karyawan")
	v.SetDefault("SHEET_ATTENDANCE", "Absensi Harian")

	v.SetDefault("SHEETS_URL", "")
	v.SetDefault("SHEETS_TIMEOUT", "10s")
	v.SetDefault("SHEETS_RATE_LIMIT", 5)
	v.SetDefault("SHEETS_RATE_BURST", 5)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "absensi")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_DRIVER", CacheMemory)
	v.SetDefault("CACHE_TTL", "0s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ATTENDANCE_TIMEZONE", "Asia/Jakarta")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
