// Package world implements the scenario-scoped execution context shared by
// step definitions: a lazily opened browser session, selector shorthands,
// element lookup, visibility assertions and the variable store.
package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/browser-steps/pkg/browsers"
	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
	"github.com/devicelab-dev/browser-steps/pkg/vars"
)

// DefaultShorthands are the built-in selector shorthands.
var DefaultShorthands = map[string]string{
	"button":   "button, summary, [role=button], input[type=submit]",
	"input":    "input, textarea, select",
	"dropdown": "select",
	"heading":  "h1, h2, h3, h4, h5, h6",
	"link":     "a[href]",
}

// Options configures a World. Zero fields take defaults.
type Options struct {
	// Browser is a capability shorthand. Default: Env.Browser
	Browser string
	// Capabilities replace the shorthand when set
	Capabilities core.Capabilities
	// Shorthands are merged over DefaultShorthands
	Shorthands map[string]string
	// Vars seed the variable store. Default: the process environment
	Vars map[string]interface{}
	// Env supplies capability overrides and the remote server
	Env config.Env
	// Driver is passed to Launch; Capabilities and Server are filled in by Open
	Driver driver.Options
	// Launch creates the session. Default: driver.Launch
	Launch driver.Launcher
	// ClickTimeout bounds the wait before a click. Default: config.DefaultClickTimeout
	ClickTimeout time.Duration
}

// World is the per-scenario context.
type World struct {
	opts       Options
	shorthands map[string]string
	vars       *vars.Store

	mu      sync.Mutex
	browser core.Browser
}

// New creates a World and registers it.
func New(opts Options) (*World, error) {
	if opts.Browser == "" && opts.Capabilities == nil {
		opts.Browser = opts.Env.Browser
	}
	if opts.Launch == nil {
		opts.Launch = driver.Launch
	}
	if opts.ClickTimeout <= 0 {
		opts.ClickTimeout = config.DefaultClickTimeout
	}

	var store *vars.Store
	if opts.Vars == nil {
		store = vars.FromStrings(config.Environ())
	} else {
		var err error
		if store, err = vars.New(opts.Vars); err != nil {
			return nil, core.ErrInvalidConfig.WithCause(err)
		}
	}

	shorthands := make(map[string]string, len(DefaultShorthands)+len(opts.Shorthands))
	for k, v := range DefaultShorthands {
		shorthands[k] = v
	}
	for k, v := range opts.Shorthands {
		shorthands[k] = v
	}

	w := &World{opts: opts, shorthands: shorthands, vars: store}
	register(w)
	return w, nil
}

// Browser returns the current session, or nil if none is open.
func (w *World) Browser() core.Browser {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.browser
}

// IsOpen reports whether a session is open.
func (w *World) IsOpen() bool {
	return w.Browser() != nil
}

// Open creates the session if there is none.
func (w *World) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.browser != nil {
		return nil
	}

	caps, err := w.capabilities()
	if err != nil {
		return err
	}

	opts := w.opts.Driver
	opts.Capabilities = caps
	if env := w.opts.Env; env.SeleniumServer != "" && !caps.Local() {
		opts.Server = driver.Server{URL: env.SeleniumServer, User: env.SeleniumUser, Key: env.SeleniumKey}
	}

	b, err := w.opts.Launch(opts)
	if err != nil {
		return err
	}
	w.browser = b
	register(w)
	return nil
}

func (w *World) capabilities() (core.Capabilities, error) {
	if w.opts.Capabilities != nil {
		return w.opts.Capabilities.Clone(), nil
	}
	name := w.opts.Browser
	if name == "" {
		return nil, core.ErrMissingRequired.WithMessage(`The "browser" parameter is required.`)
	}
	caps, ok := browsers.Lookup(name, w.opts.Env.Browsers())
	if !ok {
		return nil, core.ErrUnknownBrowser.WithMessagef(`No such browser shorthand: "%s" (possible values: "%s")`,
			name, strings.Join(browsers.Names(), `", "`))
	}
	return caps, nil
}

// Close ends the session if one is open and deregisters the World.
func (w *World) Close() error {
	w.mu.Lock()
	b := w.browser
	w.browser = nil
	w.mu.Unlock()

	deregister(w)
	if b == nil {
		return nil
	}
	logger.Debug("Closing browser session")
	return b.Close()
}

// session returns the open session or a "no browser" error naming action.
func (w *World) session(action string) (core.Browser, error) {
	b := w.Browser()
	if b == nil {
		return nil, core.ErrNoBrowser.WithMessagef("Unable to %s (no browser)", action)
	}
	return b, nil
}

// Clear navigates to a blank page.
func (w *World) Clear() error {
	b, err := w.session("clear")
	if err != nil {
		return err
	}
	return b.Navigate("about:blank")
}

// URL returns the current page URL.
func (w *World) URL() (string, error) {
	b, err := w.session("get URL")
	if err != nil {
		return "", err
	}
	return b.URL()
}

// Visit opens the session if needed and navigates to url.
func (w *World) Visit(url string) error {
	if err := w.Open(); err != nil {
		return err
	}
	logger.Debug("Visiting %s", url)
	return w.Browser().Navigate(url)
}

// Screenshot saves a PNG of the page to filename, creating parent directories.
func (w *World) Screenshot(filename string) error {
	b, err := w.session("take screenshot")
	if err != nil {
		return err
	}
	data, err := b.Screenshot()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	return os.WriteFile(filename, data, 0o644)
}

// ResizeWindow resizes the window. A zero height keeps the current height.
func (w *World) ResizeWindow(width, height int) error {
	b, err := w.session("resize window")
	if err != nil {
		return err
	}
	if height == 0 {
		current, err := b.WindowSize()
		if err != nil {
			return err
		}
		height = current.Height
	}
	return b.SetWindowSize(width, height)
}

// PressKey presses a named key.
func (w *World) PressKey(name string) error {
	b, err := w.session("press " + name)
	if err != nil {
		return err
	}
	return b.Keys(name)
}

// Type types text into the focused element.
func (w *World) Type(text string) error {
	b, err := w.session("type")
	if err != nil {
		return err
	}
	return b.Type(text)
}

// Click waits for el to become clickable, then clicks it.
func (w *World) Click(el core.Element) error {
	if err := el.WaitForClickable(w.opts.ClickTimeout); err != nil {
		return err
	}
	return el.Click()
}

// Vars returns the variable store.
func (w *World) Vars() *vars.Store {
	return w.vars
}

// Get returns the variable at key, or the first fallback.
func (w *World) Get(key string, fallback ...interface{}) interface{} {
	return w.vars.Get(key, fallback...)
}

// Has reports whether the variable key exists.
func (w *World) Has(key string) bool {
	return w.vars.Has(key)
}

// Set sets a variable and returns its previous value.
func (w *World) Set(key string, value interface{}) (interface{}, error) {
	return w.vars.Set(key, value)
}

// Unset removes a variable and returns its previous value.
func (w *World) Unset(key string) (interface{}, error) {
	return w.vars.Unset(key)
}

// Interpolate replaces $NAME and ${NAME} references with variable values.
func (w *World) Interpolate(value string) string {
	return w.vars.Interpolate(value)
}
