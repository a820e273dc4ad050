// Package config loads service settings from defaults, an optional YAML
// file, an optional .env file and the process environment, in that order of
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "CATALOG_"

	envConfigFile     = EnvPrefix + "CONFIG_FILE"
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Port              int           `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

type DataConfig struct {
	ProductsFile string `koanf:"products_file"`
	CartsFile    string `koanf:"carts_file"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

type RateLimitConfig struct {
	// WritesPerMinute caps mutating requests per client IP. Zero disables it.
	WritesPerMinute int `koanf:"writes_per_minute"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":                 8080,
		"server.read_header_timeout":  "5s",
		"server.shutdown_timeout":     "10s",
		"data.products_file":          "data/products.json",
		"data.carts_file":             "data/carts.json",
		"log.level":                   "info",
		"metrics.enabled":             false,
		"metrics.token":               "",
		"ratelimit.writes_per_minute": 0,
	}
}

// Load builds the configuration. Missing config and .env files are not an
// error; malformed ones are.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := os.Getenv(envConfigFile)
	if path == "" {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	dotenv, err := godotenv.Read(defaultEnvFile)
	switch {
	case err == nil:
		m := make(map[string]any, len(dotenv))
		for key, v := range dotenv {
			if strings.HasPrefix(key, EnvPrefix) {
				m[keyFromEnv(key)] = v
			}
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", defaultEnvFile, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", keyFromEnv), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// keyFromEnv maps CATALOG_DATA__PRODUCTS_FILE to data.products_file.
func keyFromEnv(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("invalid read header timeout: %v", c.Server.ReadHeaderTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Server.ShutdownTimeout)
	}
	if c.Data.ProductsFile == "" || c.Data.CartsFile == "" {
		return errors.New("data files are not configured")
	}
	if c.Data.ProductsFile == c.Data.CartsFile {
		return fmt.Errorf("products and carts share one file: %s", c.Data.ProductsFile)
	}
	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("invalid writes per minute: %d", c.RateLimit.WritesPerMinute)
	}
	if c.Metrics.Enabled && c.Metrics.Token == "" {
		return errors.New("metrics enabled without a token")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server ---\n")
	fmt.Fprintf(&b, "  server.port: %d\n", c.Server.Port)
	fmt.Fprintf(&b, "  server.read_header_timeout: %v\n", c.Server.ReadHeaderTimeout)
	fmt.Fprintf(&b, "  server.shutdown_timeout: %v\n", c.Server.ShutdownTimeout)

	b.WriteString("\n--- Data ---\n")
	fmt.Fprintf(&b, "  data.products_file: %s\n", c.Data.ProductsFile)
	fmt.Fprintf(&b, "  data.carts_file: %s\n", c.Data.CartsFile)

	b.WriteString("\n--- Observability ---\n")
	fmt.Fprintf(&b, "  log.level: %s\n", c.Log.Level)
	fmt.Fprintf(&b, "  metrics.enabled: %t\n", c.Metrics.Enabled)
	fmt.Fprintf(&b, "  metrics.token: %s\n", mask(c.Metrics.Token))

	b.WriteString("\n--- Rate limit ---\n")
	fmt.Fprintf(&b, "  ratelimit.writes_per_minute: %d\n", c.RateLimit.WritesPerMinute)

	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
