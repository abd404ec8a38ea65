package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray
// config.yaml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DatasetSourceCSV, cfg.Dataset.Source)
	assert.Equal(t, "Hasil_Uji_Data.csv", cfg.Dataset.Path)
	assert.Equal(t, "model_dan_encoders.json", cfg.Model.BundlePath)
	assert.Len(t, cfg.Routes, 4)
	assert.NoError(t, cfg.Validate())

	table, err := cfg.DurationTable()
	require.NoError(t, err)
	mins, ok := table.Duration("Jakarta-Padang")
	assert.True(t, ok)
	assert.Equal(t, 110, mins)
}

func TestLoadConfig_PortFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "8081")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_RoutesOverride(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
routes:
  - route: Jakarta-Denpasar
    minutes: 170
  - route: Jakarta-Padang
    minutes: 110
dataset:
  source: postgres
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("PORT", "")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DatasetSourcePostgres, cfg.Dataset.Source)
	assert.NoError(t, cfg.Validate())

	table, err := cfg.DurationTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jakarta-Denpasar", "Jakarta-Padang"}, table.Routes())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Host: "0.0.0.0", Port: 5000},
			Dataset: DatasetConfig{Source: DatasetSourceCSV, Path: "data.csv"},
			Model:   ModelConfig{BundlePath: "bundle.json"},
			Routes:  []RouteConfig{{Route: "Jakarta-Padang", Minutes: 110}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown source", func(c *Config) { c.Dataset.Source = "s3" }, "dataset.source"},
		{"csv without path", func(c *Config) { c.Dataset.Path = "" }, "dataset.path"},
		{"postgres without host", func(c *Config) {
			c.Dataset.Source = DatasetSourcePostgres
			c.Database.Database = "x"
		}, "database.host"},
		{"no bundle", func(c *Config) { c.Model.BundlePath = "" }, "model.bundle_path"},
		{"bad route", func(c *Config) { c.Routes = []RouteConfig{{Route: "Padang", Minutes: 110}} }, "invalid routes"},
		{"duplicate route", func(c *Config) {
			c.Routes = append(c.Routes, RouteConfig{Route: "Jakarta-Padang", Minutes: 90})
		}, "listed twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseConfig_Postgres(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "flights", SSLMode: "disable", MaxOpenConns: 10}
	pg := d.Postgres()
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=flights sslmode=disable", pg.DSN())
	assert.Equal(t, 10, pg.MaxOpenConns)
}
