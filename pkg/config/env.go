package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/devicelab-dev/browser-steps/pkg/browsers"
)

// DefaultDotEnv is loaded when no env file is named explicitly.
const DefaultDotEnv = ".env"

// Env holds the settings read from environment variables.
type Env struct {
	Browser string `envconfig:"BROWSER" default:"puppeteer"`

	// Capability overrides for the shorthand table
	BrowserName    string `envconfig:"BROWSER_NAME"`
	BrowserVersion string `envconfig:"BROWSER_VERSION"`
	ChromeArgs     string `envconfig:"CHROME_ARGS"`
	OS             string `envconfig:"OS"`
	OSVersion      string `envconfig:"OS_VERSION"`
	BrowserLocal   string `envconfig:"BROWSER_LOCAL"`

	// Remote grid
	SeleniumServer string `envconfig:"SELENIUM_SERVER"`
	SeleniumUser   string `envconfig:"SELENIUM_USER"`
	SeleniumKey    string `envconfig:"SELENIUM_KEY"`
}

// ReadEnv reads Env from the process environment.
func ReadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// Browsers returns the overrides for the capability table.
func (e Env) Browsers() browsers.Env {
	return browsers.Env{
		BrowserName:    e.BrowserName,
		BrowserVersion: e.BrowserVersion,
		ChromeArgs:     e.ChromeArgs,
		OS:             e.OS,
		OSVersion:      e.OSVersion,
		Local:          e.BrowserLocal,
	}
}

// LoadDotEnv loads env files into the process environment without overriding
// variables that are already set. With no paths, ./.env is loaded if present.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load(DefaultDotEnv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", DefaultDotEnv, err)
		}
		return nil
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}
