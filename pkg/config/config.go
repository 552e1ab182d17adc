// Package config loads the modeltrack configuration from a TOML file.
//
// The config file lives at ~/.config/mtrack/config.toml by default and can be
// overridden with the MTRACK_CONFIG environment variable. All fields have
// working defaults so the tool runs without any config file at all.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// appName is the application name used for directories.
const appName = "mtrack"

// Backend names accepted in the config file.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the top-level configuration.
type Config struct {
	// StoreRoot is the directory holding run metadata and artifacts.
	StoreRoot string `toml:"store_root"`

	// Backend selects the run metadata store: file, memory, redis, or mongo.
	Backend string `toml:"backend"`

	Server ServerConfig `toml:"server"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// ServerConfig configures the tracking HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RedisConfig configures the Redis metadata backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the MongoDB metadata backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		StoreRoot: defaultStoreRoot(),
		Backend:   BackendFile,
		Server:    ServerConfig{Addr: "127.0.0.1:5500"},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		Mongo:     MongoConfig{URI: "mongodb://localhost:27017", Database: appName},
	}
}

// Load reads the config file at path, applying defaults for unset fields.
// An empty path resolves via MTRACK_CONFIG or the default location; a missing
// file at the default location is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		path = resolvePath()
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown backend %q", cfg.Backend)
	}
}

// resolvePath returns the config file path from MTRACK_CONFIG or the XDG
// config directory.
func resolvePath() string {
	if p := os.Getenv("MTRACK_CONFIG"); p != "" {
		return p
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultStoreRoot returns the store directory using the XDG data standard
// (~/.local/share/mtrack/).
func defaultStoreRoot() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}
