// Package config handles configuration for browser-steps.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// File names searched by LoadFromDir, in order.
var fileNames = []string{"browser-steps.yaml", "browser-steps.yml"}

// Defaults applied by ApplyDefaults.
const (
	DefaultFormat            = "pretty"
	DefaultDriver            = "auto"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultClickTimeout      = 5 * time.Second
)

// Config represents the workspace configuration (browser-steps.yaml).
type Config struct {
	// Browser selection
	Browser      string                 `yaml:"browser"`      // Capability shorthand (chrome, safari, puppeteer, ...)
	Driver       string                 `yaml:"driver"`       // auto, webdriver, playwright
	Capabilities map[string]interface{} `yaml:"capabilities"` // Explicit capabilities, replaces the shorthand
	Headless     *bool                  `yaml:"headless"`     // Local browsers only

	// World settings
	Shorthands map[string]string      `yaml:"shorthands"` // Extra selector shorthands
	Vars       map[string]interface{} `yaml:"vars"`       // Variables layered over the environment

	// Suite settings
	Features    []string `yaml:"features"`    // Feature files or directories
	Tags        string   `yaml:"tags"`        // godog tag expression
	Format      string   `yaml:"format"`      // godog formatter
	Strict      *bool    `yaml:"strict"`      // Fail on undefined/pending steps
	Concurrency int      `yaml:"concurrency"` // Scenarios run in parallel
	KeepOpen    bool     `yaml:"keepOpen"`    // Keep sessions open until the suite ends

	// Output
	Output    string               `yaml:"output"`    // Report directory
	Artifacts *core.ArtifactConfig `yaml:"artifacts"` // Screenshot capture policy

	Timeouts Timeouts `yaml:"timeouts"`
}

// Timeouts bounds the slow browser operations.
type Timeouts struct {
	Navigation time.Duration `yaml:"navigation"`
	Click      time.Duration `yaml:"click"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for browser-steps.yaml or browser-steps.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range fileNames {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// ApplyDefaults fills unset fields. Browser falls back to the BROWSER environment value.
func (c *Config) ApplyDefaults(env Env) {
	if c.Browser == "" && c.Capabilities == nil {
		c.Browser = env.Browser
	}
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if len(c.Features) == 0 {
		c.Features = []string{"features"}
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Artifacts == nil {
		artifacts := core.DefaultArtifactConfig()
		c.Artifacts = &artifacts
	}
	if c.Timeouts.Navigation <= 0 {
		c.Timeouts.Navigation = DefaultNavigationTimeout
	}
	if c.Timeouts.Click <= 0 {
		c.Timeouts.Click = DefaultClickTimeout
	}
}

// IsStrict reports whether undefined and pending steps fail the run. Default: true.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// IsHeadless reports whether local browsers run headless. Default: true.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}
