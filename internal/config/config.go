package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flight-delay-predictor/internal/catalog"
	"flight-delay-predictor/pkg/database"
)

// Dataset source identifiers
const (
	DatasetSourceCSV      = "csv"
	DatasetSourcePostgres = "postgres"
)

// Config is the full application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Model    ModelConfig    `mapstructure:"model"`
	Routes   []RouteConfig  `mapstructure:"routes"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatasetConfig selects where the evaluation dataset is read from
type DatasetConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

// ModelConfig locates the model bundle
type ModelConfig struct {
	BundlePath string `mapstructure:"bundle_path"`
}

// RouteConfig is one entry of the nominal duration table. Routes are a
// list rather than a map because viper lower-cases map keys.
type RouteConfig struct {
	Route   string `mapstructure:"route"`
	Minutes int    `mapstructure:"minutes"`
}

// DatabaseConfig holds PostgreSQL settings, used when the dataset source is postgres
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads .env, an optional config.yaml and the environment
func LoadConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

// LoadFromFile loads configuration from a specific YAML file
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Routes) == 0 {
		for _, r := range catalog.DefaultRouteDurations {
			cfg.Routes = append(cfg.Routes, RouteConfig{Route: r.Route, Minutes: r.Minutes})
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("dataset.source", DatasetSourceCSV)
	v.SetDefault("dataset.path", "Hasil_Uji_Data.csv")
	v.SetDefault("model.bundle_path", "model_dan_encoders.json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "flight_delay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnv maps the flat environment variable names onto config keys.
// PORT is the only variable a plain deployment needs.
func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"server.port":       "PORT",
		"server.host":       "HOST",
		"dataset.source":    "DATASET_SOURCE",
		"dataset.path":      "DATASET_PATH",
		"model.bundle_path": "MODEL_BUNDLE_PATH",
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.database": "DB_NAME",
		"database.sslmode":  "DB_SSLMODE",
		"logging.level":     "LOG_LEVEL",
		"logging.format":    "LOG_FORMAT",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// loadEnvFile loads .env from the working directory when present
func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Dataset.Source {
	case DatasetSourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for csv source")
		}
	case DatasetSourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres source")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres source")
		}
	default:
		return fmt.Errorf("dataset.source must be %q or %q, got %q", DatasetSourceCSV, DatasetSourcePostgres, c.Dataset.Source)
	}

	if c.Model.BundlePath == "" {
		return fmt.Errorf("model.bundle_path is required")
	}

	if _, err := c.DurationTable(); err != nil {
		return fmt.Errorf("invalid routes: %w", err)
	}

	return nil
}

// DurationTable builds the route duration table from the configured routes
func (c *Config) DurationTable() (*catalog.DurationTable, error) {
	routes := make([]catalog.RouteDuration, 0, len(c.Routes))
	for _, r := range c.Routes {
		routes = append(routes, catalog.RouteDuration{Route: r.Route, Minutes: r.Minutes})
	}
	return catalog.NewDurationTable(routes)
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Postgres converts the database section into connection settings
func (d DatabaseConfig) Postgres() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}
