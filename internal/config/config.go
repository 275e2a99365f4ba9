package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devco/docmerge/internal/fileutil"
	"github.com/devco/docmerge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Backend names.
const (
	BackendGoogle = "google"
	BackendLocal  = "local"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Field length limits.
const (
	MaxEmailLength  = 254  // RFC 5321
	MaxIDLength     = 200  // Drive ids are ~44 chars
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxPrefixLength = 100
	MaxAddrLength   = 255
	MaxKeyLength    = 16 << 10
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultTimeout         = 2 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 10 << 20
)

// userConfigSubdir is the directory under os.UserConfigDir searched by name.
const userConfigSubdir = "docmerge"

// Config holds all configuration for the service and CLI.
type Config struct {
	Google GoogleConfig `yaml:"google"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// GoogleConfig holds service account credentials and the scratch folder.
type GoogleConfig struct {
	ServiceAccountEmail string `yaml:"serviceAccountEmail"`
	PrivateKey          string `yaml:"privateKey"`     // PEM, literal \n accepted
	PrivateKeyFile      string `yaml:"privateKeyFile"` // Read when PrivateKey is empty
	ProjectID           string `yaml:"projectId"`
	FolderID            string `yaml:"folderId"` // Receives scratch copies and images
}

// StoreConfig selects the template store.
type StoreConfig struct {
	Backend       string `yaml:"backend"`       // "google" (default) or "local"
	TemplateDir   string `yaml:"templateDir"`   // Local backend only
	ScratchPrefix string `yaml:"scratchPrefix"` // Empty = TEMP_PDF_GEN_
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Timeout         time.Duration `yaml:"timeout"`         // Per-request merge budget
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // Graceful drain
	SweepInterval   time.Duration `yaml:"sweepInterval"`   // 0 disables the periodic sweep
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// LogConfig defines logger options.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns a configuration for the Google backend with no
// credentials set.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendGoogle},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			Timeout:         DefaultTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Log: LogConfig{Level: "info", Format: LogFormatConsole},
	}
}

// Validate checks enumerations, ranges and field lengths. Missing Google
// credentials are not an error here; they surface at authorization time so
// that commands not touching the store still run.
func (c *Config) Validate() error {
	if err := validateFieldLength("google.serviceAccountEmail", c.Google.ServiceAccountEmail, MaxEmailLength); err != nil {
		return err
	}
	if err := validateFieldLength("google.privateKey", c.Google.PrivateKey, MaxKeyLength); err != nil {
		return err
	}
	if err := validateFieldLength("google.privateKeyFile", c.Google.PrivateKeyFile, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("google.projectId", c.Google.ProjectID, MaxIDLength); err != nil {
		return err
	}
	if err := validateFieldLength("google.folderId", c.Google.FolderID, MaxIDLength); err != nil {
		return err
	}

	switch c.Store.Backend {
	case "", BackendGoogle:
	case BackendLocal:
		if c.Store.TemplateDir == "" {
			return fmt.Errorf("%w: store.templateDir: required for the local backend", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: store.backend: %q (must be google or local)", ErrInvalidValue, c.Store.Backend)
	}
	if err := validateFieldLength("store.templateDir", c.Store.TemplateDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("store.scratchPrefix", c.Store.ScratchPrefix, MaxPrefixLength); err != nil {
		return err
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout: must not be negative, got %s", ErrInvalidValue, c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdownTimeout: must not be negative, got %s", ErrInvalidValue, c.Server.ShutdownTimeout)
	}
	if c.Server.SweepInterval < 0 {
		return fmt.Errorf("%w: server.sweepInterval: must not be negative, got %s", ErrInvalidValue, c.Server.SweepInterval)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must not be negative, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: log.level: %q", ErrInvalidValue, c.Log.Level)
	}
	switch c.Log.Format {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format: %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name, on top of
// DefaultConfig. If nameOrPath contains a path separator, it's treated as a
// file path. Otherwise, it's searched as a name in SearchPaths.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order: current
// directory, then the user config directory, each with .yaml and .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, userConfigSubdir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
