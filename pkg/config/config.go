// Package config provides configuration management for seedgen.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomagicln/seedgen/pkg/gen"
)

const (
	// ConfigFileName is the name of the configuration file inside the
	// configuration directory.
	ConfigFileName = "config.yaml"

	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "SEEDGEN_CONFIG_DIR"
	// EnvSeed overrides the default seed.
	EnvSeed = "SEEDGEN_SEED"

	// DefaultSeed is the seed used when neither flags, environment nor
	// configuration name one.
	DefaultSeed int64 = 42
	// DefaultOutput is the default output format.
	DefaultOutput = "json"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{"json", "yaml", "table", "text"}

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ErrConfigExists is returned by Init when a configuration file is present
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Config is the contents of config.yaml.
type Config struct {
	// Defaults apply to every run unless overridden by flags.
	Defaults Defaults `yaml:"defaults"`

	// Schemas are OpenAPI documents whose component schemas are added to
	// the catalog as "<name>.<component>".
	Schemas []SchemaSource `yaml:"schemas,omitempty"`
}

// Defaults holds default run parameters.
type Defaults struct {
	Seed   int64  `yaml:"seed"`
	Size   int    `yaml:"size"`
	Count  int    `yaml:"count"`
	Output string `yaml:"output"`
}

// SchemaSource names an OpenAPI document to load.
type SchemaSource struct {
	// Name prefixes the catalog entries of this document.
	Name string `yaml:"name"`

	// Source is a file path or an http(s) URL. Relative paths are resolved
	// against the configuration directory.
	Source string `yaml:"source"`

	// Components restricts loading to the named component schemas. Empty
	// means every component that can be compiled.
	Components []string `yaml:"components,omitempty"`

	// Description is an optional description of the document.
	Description string `yaml:"description,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Seed:   DefaultSeed,
			Size:   gen.DefaultSize,
			Count:  gen.DefaultCount,
			Output: DefaultOutput,
		},
	}
}

// Manager handles configuration persistence and retrieval.
type Manager struct {
	configDir string
}

// ManagerOption is a function that configures a Manager.
type ManagerOption func(*Manager)

// WithConfigDir sets a custom configuration directory.
func WithConfigDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.configDir = dir
	}
}

// NewManager creates a new configuration manager.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	if m.configDir == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		m.configDir = dir
	}

	return m, nil
}

// GetConfigDir returns the platform-specific configuration directory.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, "Library", "Application Support", "seedgen"), nil

	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, "seedgen"), nil

	default:
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			xdgConfig = filepath.Join(homeDir, ".config")
		}
		return filepath.Join(xdgConfig, "seedgen"), nil
	}
}

// ConfigDir returns the configuration directory path.
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// ConfigPath returns the path of config.yaml.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.configDir, ConfigFileName)
}

// Exists reports whether config.yaml is present.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.ConfigPath())
	return err == nil
}

// Load reads config.yaml. A missing file yields Default(). Fields left out
// of the file keep their default values.
func (m *Manager) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(m.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", m.ConfigPath(), err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save validates cfg and writes it atomically.
func (m *Manager) Save(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath := m.ConfigPath()
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Init writes the default configuration. It refuses to replace an existing
// file unless force is set.
func (m *Manager) Init(force bool) (*Config, error) {
	if m.Exists() && !force {
		return nil, fmt.Errorf("%w: %s", ErrConfigExists, m.ConfigPath())
	}
	cfg := Default()
	if err := m.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveSource turns a relative schema source into a path under the
// configuration directory. URLs and absolute paths are returned unchanged.
func (m *Manager) ResolveSource(source string) string {
	if isWebURL(source) || filepath.IsAbs(source) {
		return source
	}
	if strings.HasPrefix(source, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, source[2:])
		}
	}
	return filepath.Join(m.configDir, source)
}

// LocalSources returns the resolved paths of every schema source that is a
// local file.
func (m *Manager) LocalSources(cfg *Config) []string {
	var paths []string
	for _, s := range cfg.Schemas {
		if !isWebURL(s.Source) {
			paths = append(paths, m.ResolveSource(s.Source))
		}
	}
	return paths
}

// SeedFromEnv returns the seed named by SEEDGEN_SEED, if set.
func SeedFromEnv() (int64, bool, error) {
	raw := os.Getenv(EnvSeed)
	if raw == "" {
		return 0, false, nil
	}
	seed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false, &ValidationError{Field: EnvSeed, Message: fmt.Sprintf("'%s' is not an integer", raw)}
	}
	return seed, true, nil
}

// Validate checks a configuration for values no run could use.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Defaults.Size < 0 {
		return &ValidationError{Field: "defaults.size", Message: "must not be negative"}
	}
	if cfg.Defaults.Count < 0 {
		return &ValidationError{Field: "defaults.count", Message: "must not be negative"}
	}
	if err := ValidateOutput(cfg.Defaults.Output); err != nil {
		return &ValidationError{Field: "defaults.output", Message: err.Error()}
	}

	seen := make(map[string]bool, len(cfg.Schemas))
	for i, s := range cfg.Schemas {
		field := fmt.Sprintf("schemas[%d]", i)
		if !schemaNamePattern.MatchString(s.Name) {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("'%s' must start with a letter and contain only letters, numbers, hyphens, and underscores", s.Name)}
		}
		if seen[s.Name] {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("'%s' is used more than once", s.Name)}
		}
		seen[s.Name] = true
		if s.Source == "" {
			return &ValidationError{Field: field + ".source", Message: "is required"}
		}
	}

	return nil
}

// ValidateOutput checks an output format name.
func ValidateOutput(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format '%s' (expected one of %s)", format, strings.Join(OutputFormats, ", "))
}

// ValidationError describes an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Message)
}

func isWebURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
