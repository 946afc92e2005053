// Package config loads service settings from defaults, an optional config
// file, a .env file, environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned by Load when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("config: missing DB_URL (or DATABASE_URL) environment variable")

const (
	legacyPostgresScheme = "postgres://"
	postgresScheme       = "postgresql://"
)

// Config is the fully resolved service configuration.
type Config struct {
	Database Database
	HTTP     HTTP
	Log      Log
}

// Database holds the connection string and pool tuning.
type Database struct {
	URL             string
	Schema          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// HTTP configures the listener and middleware defaults.
type HTTP struct {
	Addr        string
	Timeout     time.Duration
	CORSOrigins []string
	ImagePath   string
}

// Log selects the slog handler and level.
type Log struct {
	Level  string
	Format string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.schema", "ns")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("http.addr", ":5000")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.image_path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

type envBinding struct {
	key  string
	envs []string
}

func envBindings() []envBinding {
	return []envBinding{
		// DB_URL wins over DATABASE_URL when both are set.
		{"database.url", []string{"DB_URL", "DATABASE_URL"}},
		{"database.schema", []string{"NEUROSYNTH_DB_SCHEMA"}},
		{"database.max_open_conns", []string{"NEUROSYNTH_DB_MAX_OPEN_CONNS"}},
		{"database.max_idle_conns", []string{"NEUROSYNTH_DB_MAX_IDLE_CONNS"}},
		{"database.conn_max_lifetime", []string{"NEUROSYNTH_DB_CONN_MAX_LIFETIME"}},
		{"database.conn_max_idle_time", []string{"NEUROSYNTH_DB_CONN_MAX_IDLE_TIME"}},
		{"http.addr", []string{"NEUROSYNTH_HTTP_ADDR"}},
		{"http.timeout", []string{"NEUROSYNTH_HTTP_TIMEOUT"}},
		{"http.cors_origins", []string{"NEUROSYNTH_CORS_ORIGINS"}},
		{"http.image_path", []string{"NEUROSYNTH_IMAGE_PATH"}},
		{"log.level", []string{"NEUROSYNTH_LOG_LEVEL"}},
		{"log.format", []string{"NEUROSYNTH_LOG_FORMAT"}},
	}
}

// BindEnv maps environment variables onto configuration keys.
func BindEnv(v *viper.Viper) error {
	for _, binding := range envBindings() {
		args := append([]string{binding.key}, binding.envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("config: bind %s: %w", binding.key, err)
		}
	}
	return nil
}

// LoadDotEnv populates the process environment from the given files. Missing
// files are ignored; variables already present in the environment are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// ReadFile merges a YAML/TOML/JSON config file into v when path is non-empty.
func ReadFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration held by v. The database URL is required
// and normalised before it is returned.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Database: Database{
			URL:             strings.TrimSpace(v.GetString("database.url")),
			Schema:          v.GetString("database.schema"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
		},
		HTTP: HTTP{
			Addr:        v.GetString("http.addr"),
			Timeout:     v.GetDuration("http.timeout"),
			CORSOrigins: splitList(v.GetStringSlice("http.cors_origins")),
			ImagePath:   v.GetString("http.image_path"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Database.URL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	cfg.Database.URL = NormalizeDatabaseURL(cfg.Database.URL)

	if strings.TrimSpace(cfg.Database.Schema) == "" {
		return Config{}, errors.New("config: database.schema must not be empty")
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme to postgresql://.
func NormalizeDatabaseURL(raw string) string {
	if strings.HasPrefix(raw, legacyPostgresScheme) {
		return postgresScheme + strings.TrimPrefix(raw, legacyPostgresScheme)
	}
	return raw
}

// splitList accepts both proper slices and a single comma separated value,
// which is what an environment variable yields.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
