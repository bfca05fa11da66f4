// Package driver selects and launches the automation backend for a session.
package driver

import (
	"strings"
	"time"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver/playwright"
	"github.com/devicelab-dev/browser-steps/pkg/driver/webdriver"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
)

// Kind names a backend.
type Kind string

// Kinds
const (
	KindAuto       Kind = "auto"       // WebDriver when a server is configured, else Playwright
	KindWebDriver  Kind = "webdriver"  // Remote WebDriver server
	KindPlaywright Kind = "playwright" // Local browser via Playwright
)

// Server is a remote WebDriver endpoint.
type Server struct {
	URL  string
	User string
	Key  string
}

// Options configures a session launch.
type Options struct {
	Kind              Kind
	Capabilities      core.Capabilities
	Server            Server
	Headless          bool
	NavigationTimeout time.Duration
	DriverDir         string
}

// Launcher starts a session. World uses it as its session factory.
type Launcher func(opts Options) (core.Browser, error)

// ParseKind parses a driver name; empty means auto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindWebDriver, KindPlaywright:
		return k, nil
	default:
		return "", core.ErrInvalidConfig.WithMessagef(
			"unknown driver %q (possible values: %q, %q, %q)", s, KindAuto, KindWebDriver, KindPlaywright)
	}
}

// Resolve returns the concrete backend for opts.
func (o Options) Resolve() (Kind, error) {
	kind, err := ParseKind(string(o.Kind))
	if err != nil {
		return "", err
	}
	if kind != KindAuto {
		return kind, nil
	}
	if o.Server.URL != "" && !o.Capabilities.Local() {
		return KindWebDriver, nil
	}
	return KindPlaywright, nil
}

// Launch starts a session on the backend opts resolve to.
func Launch(opts Options) (core.Browser, error) {
	kind, err := opts.Resolve()
	if err != nil {
		return nil, err
	}
	logger.Info("Launching %s session (browserName=%s)", kind, opts.Capabilities.BrowserName())

	switch kind {
	case KindWebDriver:
		return webdriver.New(webdriver.Config{
			ServerURL:       opts.Server.URL,
			User:            opts.Server.User,
			Key:             opts.Server.Key,
			Capabilities:    opts.Capabilities,
			PageLoadTimeout: opts.NavigationTimeout,
		})
	default:
		return playwright.New(playwright.Config{
			Capabilities:      opts.Capabilities,
			Headless:          opts.Headless,
			DriverDir:         opts.DriverDir,
			NavigationTimeout: opts.NavigationTimeout,
		})
	}
}
