package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"

	DefaultPort         = 3000
	DefaultDataFile     = "data/posts.json"
	DefaultDocumentName = "posts"
	DefaultAuthor       = "Anônimo"
	DefaultLogLevel     = "info"
)

type Config struct {
	HTTP     HTTPConfig
	Store    StoreConfig
	Posts    PostsConfig
	LogLevel string
}

type HTTPConfig struct {
	Port     int
	BasePath string
}

type StoreConfig struct {
	Driver       string
	DataFile     string
	DatabaseURL  string
	DocumentName string
	StrictRead   bool
}

type PostsConfig struct {
	DefaultAuthor string
}

// Addr returns the listen address for the HTTP server.
func (hc HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", hc.Port)
}

// Load reads the configuration from the environment, falling back to defaults
// for anything unset. Call godotenv.Load beforehand to pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Port:     DefaultPort,
			BasePath: getEnv("API_BASE_PATH", ""),
		},
		Store: StoreConfig{
			Driver:       getEnv("STORE_DRIVER", DriverFile),
			DataFile:     getEnv("POSTS_FILE", DefaultDataFile),
			DatabaseURL:  getEnv("DATABASE_URL", ""),
			DocumentName: getEnv("POSTS_DOCUMENT", DefaultDocumentName),
		},
		Posts: PostsConfig{
			DefaultAuthor: getEnv("DEFAULT_AUTHOR", DefaultAuthor),
		},
		LogLevel: getEnv("LOG_LEVEL", DefaultLogLevel),
	}

	if v := getEnv("PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.HTTP.Port = port
	}

	if v := getEnv("STORE_STRICT_READ", ""); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STORE_STRICT_READ %q: %w", v, err)
		}
		cfg.Store.StrictRead = strict
	}

	return cfg, nil
}

// Validate checks values that may have been overridden after Load.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.HTTP.Port)
	}
	c.HTTP.BasePath = normalizeBasePath(c.HTTP.BasePath)

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("data file path is required for the %s driver", DriverFile)
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// normalizeBasePath turns "api", "/api/" and "/api" into "/api"; "/" becomes "".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
