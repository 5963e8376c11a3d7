package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all configuration details
type Config struct {
	Host      string          `yaml:"host"`
	BasePath  string          `yaml:"basePath"`
	DocsPath  string          `yaml:"docsPath"`
	StaticDir string          `yaml:"staticDir"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Pulsar    PulsarConfig    `yaml:"pulsar"`
	AWS       AWSConfig       `yaml:"aws"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Tunnel    TunnelConfig    `yaml:"tunnel"`
}

// StoreConfig selects where users and todos are kept
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// DatabaseConfig defines the database connection details. When SecretName is
// set the source is read from AWS Secrets Manager instead.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Source     string `yaml:"source"`
	SecretName string `yaml:"secretName"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RateLimitConfig limits requests across the whole API. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// TunnelConfig holds the SSH bastion used to reach a private database
type TunnelConfig struct {
	SSHUser        string `yaml:"sshUser"`
	SSHHost        string `yaml:"sshHost"`
	SSHPort        string `yaml:"sshPort"`
	RemoteHost     string `yaml:"remoteHost"`
	RemotePort     string `yaml:"remotePort"`
	LocalPort      string `yaml:"localPort"`
	PrivateKeyPath string `yaml:"privateKeyPath"`
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// A missing .env file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envVars); err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	var config Config
	config.setDefaults()
	return &config
}

func (c *Config) setDefaults() {
	if c.DocsPath == "" {
		c.DocsPath = "/docs"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Path == "" {
		c.Store.Path = "data.json"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RequestsPerSecond)
		if c.RateLimit.Burst < 1 {
			c.RateLimit.Burst = 1
		}
	}
	c.BasePath = strings.TrimSuffix(c.BasePath, "/")
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Database.Source == "" && c.Database.SecretName == "" {
		return errors.New("database source or secretName is required for the postgres backend")
	}
	return nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
