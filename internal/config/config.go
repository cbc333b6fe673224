package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models inspectline.yml.
type Config struct {
	Remote struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"remote"`
	Directory struct {
		EligibleRole string `yaml:"eligible_role"`
	} `yaml:"directory"`
	Workflow struct {
		TimestampLayout  string `yaml:"timestamp_layout"`
		GuardTransitions bool   `yaml:"guard_transitions"`
	} `yaml:"workflow"`
	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
		SeedFile string `yaml:"seed_file"`
	} `yaml:"server"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with il config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("config.remote.base_url is required")
	}
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config.remote.base_url must be an absolute URL, got %q", c.Remote.BaseURL)
	}
	if c.Remote.Timeout != "" {
		d, err := time.ParseDuration(c.Remote.Timeout)
		if err != nil {
			return fmt.Errorf("config.remote.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config.remote.timeout must be positive")
		}
	}
	if strings.TrimSpace(c.Directory.EligibleRole) == "" {
		return fmt.Errorf("config.directory.eligible_role is required")
	}
	if c.Workflow.TimestampLayout == "" {
		return fmt.Errorf("config.workflow.timestamp_layout is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("config.log.format must be console or json")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	return nil
}

// RemoteTimeout returns the per-request timeout; zero means the transport default.
func (c *Config) RemoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "inspectline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses config from raw YAML bytes over the defaults and validates it.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `remote:
  base_url: http://127.0.0.1:8080/v1
  timeout: 10s

directory:
  # accounts with this role can be assigned inspection work
  eligible_role: inspector

workflow:
  # submittedAt / approvedAt / rejectedAt are stored as local, human readable strings
  timestamp_layout: "1/2/2006, 3:04:05 PM"
  guard_transitions: true

journal:
  enabled: true

log:
  level: info
  format: console

server:
  addr: 127.0.0.1:8080
  base_path: /v1
  seed_file: ""
`
