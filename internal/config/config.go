package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/studiowebux/restcore/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalConfigFile overrides the global config when present in the working directory
	LocalConfigFile = ".restcore.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.restcore)
	ConfigDir string

	// ConfigFile is the global YAML configuration file
	ConfigFile string

	// EnvironmentsDir holds named environment files (<name>.json)
	EnvironmentsDir string

	// CollectionsDir is the default location for saved request collections
	CollectionsDir string
)

// Config is the user configuration read from YAML
type Config struct {
	Proxy            ProxyConfig `yaml:"proxy"`
	LogLevel         string      `yaml:"log_level"`
	DefaultTimeoutMs uint32      `yaml:"default_timeout_ms"`
}

// ProxyConfig holds the proxies used by requests with use_config_proxy enabled
type ProxyConfig struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		LogLevel:         "info",
		DefaultTimeoutMs: types.DefaultTimeoutMillis,
	}
}

// Initialize sets up the configuration directories and files
// It creates ~/.restcore/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	// Set global paths
	ConfigDir = filepath.Join(homeDir, ".restcore")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	EnvironmentsDir = filepath.Join(ConfigDir, "environments")
	CollectionsDir = filepath.Join(ConfigDir, "collections")

	// Create directories if they don't exist
	for _, dir := range []string{ConfigDir, EnvironmentsDir, CollectionsDir} {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Write the defaults if the config file doesn't exist
	if _, err := os.Stat(ConfigFile); errors.Is(err, fs.ErrNotExist) {
		data, err := yaml.Marshal(Default())
		if err != nil {
			return fmt.Errorf("failed to encode default config: %w", err)
		}
		if err := os.WriteFile(ConfigFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// GetConfigFilePath returns the config file path (local or global)
func GetConfigFilePath() string {
	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile
	}
	return ConfigFile
}

// Load reads the YAML config at path. A missing file yields Default();
// keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

// ProxyURLs parses the configured proxies. Unset proxies are nil.
func (c Config) ProxyURLs() (httpProxy, httpsProxy *url.URL, err error) {
	parse := func(key, raw string) (*url.URL, error) {
		if raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy.%s %q: %w", key, raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy.%s %q: scheme and host are required", key, raw)
		}
		return u, nil
	}

	if httpProxy, err = parse("http", c.Proxy.HTTP); err != nil {
		return nil, nil, err
	}
	if httpsProxy, err = parse("https", c.Proxy.HTTPS); err != nil {
		return nil, nil, err
	}
	return httpProxy, httpsProxy, nil
}

// DefaultTimeout is used for requests whose timeout is 0
func (c Config) DefaultTimeout() time.Duration {
	if c.DefaultTimeoutMs == 0 {
		return types.DefaultTimeoutMillis * time.Millisecond
	}
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}

// NewLogger builds the process logger. verbose switches to a human readable
// development logger at debug level.
func (c Config) NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// EnvironmentPath resolves an environment name or path. Bare names are
// looked up as <EnvironmentsDir>/<name>.json.
func EnvironmentPath(nameOrPath string) (string, error) {
	return resolveNamed(nameOrPath, EnvironmentsDir, ".json", "environment")
}

// CollectionPath resolves a collection name or path. Bare names are looked
// up as <CollectionsDir>/<name>.yaml.
func CollectionPath(nameOrPath string) (string, error) {
	return resolveNamed(nameOrPath, CollectionsDir, ".yaml", "collection")
}

func resolveNamed(nameOrPath, dir, ext, kind string) (string, error) {
	if nameOrPath == "" {
		return "", fmt.Errorf("empty %s name", kind)
	}

	// Expand tilde to home directory
	if strings.HasPrefix(nameOrPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		nameOrPath = filepath.Join(homeDir, nameOrPath[2:])
	}

	if _, err := os.Stat(nameOrPath); err == nil {
		return nameOrPath, nil
	}
	if strings.ContainsRune(nameOrPath, filepath.Separator) || filepath.Ext(nameOrPath) != "" {
		return "", fmt.Errorf("%s file %s not found", kind, nameOrPath)
	}

	path := filepath.Join(dir, nameOrPath+ext)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s %q not found in %s", kind, nameOrPath, dir)
	}
	return path, nil
}
