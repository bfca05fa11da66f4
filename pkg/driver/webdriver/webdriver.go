// Package webdriver implements core.Browser over a remote WebDriver server
// (Selenium grid, BrowserStack) using tebeka/selenium.
package webdriver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tebeka/selenium"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver/internal/dom"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
)

// DefaultHub is used when no server URL is configured.
const DefaultHub = "http://127.0.0.1:4444/wd/hub"

// Config configures a remote session.
type Config struct {
	ServerURL       string
	User            string
	Key             string
	Capabilities    core.Capabilities
	PageLoadTimeout time.Duration
}

// newRemote is replaced in tests.
var newRemote = selenium.NewRemote

// Browser implements core.Browser on a WebDriver session.
type Browser struct {
	wd selenium.WebDriver
}

// New starts a remote session.
func New(cfg Config) (*Browser, error) {
	hub, err := HubURL(cfg.ServerURL, cfg.User, cfg.Key)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}

	caps := selenium.Capabilities(cfg.Capabilities.Clone())
	if caps == nil {
		caps = selenium.Capabilities{}
	}
	// "local" only selects the driver; grids reject unknown top-level keys
	delete(caps, "local")

	redacted := redact(hub)
	logger.Debug("webdriver: new session on %s (browserName=%v)", redacted, caps["browserName"])

	wd, err := newRemote(caps, hub)
	if err != nil {
		return nil, core.ErrServerUnreachable.WithCause(err).WithDetails(map[string]interface{}{"server": redacted})
	}

	if cfg.PageLoadTimeout > 0 {
		if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
			logger.Warn("webdriver: set page load timeout: %v", err)
		}
	}

	return &Browser{wd: wd}, nil
}

// HubURL returns the server URL with user and key as userinfo.
func HubURL(server, user, key string) (string, error) {
	if server == "" {
		server = DefaultHub
	}
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: scheme and host required", server)
	}
	if user != "" {
		u.User = url.UserPassword(user, key)
	}
	return u.String(), nil
}

func redact(hub string) string {
	u, err := url.Parse(hub)
	if err != nil {
		return hub
	}
	return u.Redacted()
}

// by maps a selector to a WebDriver locator strategy.
func by(selector string) (string, string) {
	strategy, value := core.ParseSelector(selector)
	switch strategy {
	case core.StrategyXPath:
		return selenium.ByXPATH, value
	case core.StrategyLinkText:
		return selenium.ByLinkText, value
	case core.StrategyPartialLinkText:
		return selenium.ByPartialLinkText, value
	default:
		return selenium.ByCSSSelector, value
	}
}

func isNoSuchElement(err error) bool {
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == "no such element"
	}
	return err != nil && strings.Contains(err.Error(), "no such element")
}

// Navigate implements core.Browser.
func (b *Browser) Navigate(url string) error {
	return b.wd.Get(url)
}

// URL implements core.Browser.
func (b *Browser) URL() (string, error) {
	return b.wd.CurrentURL()
}

// FindElement implements core.Browser.
func (b *Browser) FindElement(selector string) (core.Element, error) {
	el, err := b.wd.FindElement(by(selector))
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, err
	}
	return &element{wd: b.wd, el: el}, nil
}

// FindElements implements core.Browser.
func (b *Browser) FindElements(selector string) ([]core.Element, error) {
	els, err := b.wd.FindElements(by(selector))
	if err != nil {
		if isNoSuchElement(err) {
			return []core.Element{}, nil
		}
		return nil, err
	}
	out := make([]core.Element, len(els))
	for i, el := range els {
		out[i] = &element{wd: b.wd, el: el}
	}
	return out, nil
}

// WindowSize implements core.Browser.
func (b *Browser) WindowSize() (core.WindowSize, error) {
	res, err := b.wd.ExecuteScript(dom.Call(dom.WindowSizeFunc), nil)
	if err != nil {
		return core.WindowSize{}, err
	}
	m, ok := res.(map[string]interface{})
	if !ok {
		return core.WindowSize{}, fmt.Errorf("unexpected window size result %T", res)
	}
	return core.WindowSize{Width: toInt(m["width"]), Height: toInt(m["height"])}, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// SetWindowSize implements core.Browser.
func (b *Browser) SetWindowSize(width, height int) error {
	handle, err := b.wd.CurrentWindowHandle()
	if err != nil {
		return err
	}
	return b.wd.ResizeWindow(handle, width, height)
}

// Keys implements core.Browser.
func (b *Browser) Keys(names ...string) error {
	var seq strings.Builder
	for _, name := range names {
		code, err := KeyCode(name)
		if err != nil {
			return err
		}
		seq.WriteString(code)
	}
	return b.Type(seq.String())
}

// Type implements core.Browser.
func (b *Browser) Type(text string) error {
	active, err := b.wd.ActiveElement()
	if err != nil {
		return err
	}
	return active.SendKeys(text)
}

// Screenshot implements core.Browser.
func (b *Browser) Screenshot() ([]byte, error) {
	return b.wd.Screenshot()
}

// Close implements core.Browser.
func (b *Browser) Close() error {
	return b.wd.Quit()
}

type element struct {
	wd selenium.WebDriver
	el selenium.WebElement
}

func (e *element) Click() error {
	return e.el.Click()
}

func (e *element) WaitForClickable(timeout time.Duration) error {
	err := e.wd.WaitWithTimeout(func(selenium.WebDriver) (bool, error) {
		displayed, err := e.el.IsDisplayed()
		if err != nil || !displayed {
			return false, err
		}
		return e.el.IsEnabled()
	}, timeout)
	if err != nil {
		return core.ErrTimeout.WithMessagef("element not clickable after %s", timeout).WithCause(err)
	}
	return nil
}

func (e *element) SetValue(value string) error {
	if err := e.el.Clear(); err != nil {
		return err
	}
	return e.el.SendKeys(value)
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) IsDisplayed() (bool, error) {
	return e.el.IsDisplayed()
}

func (e *element) ComputedLabel() (string, error) {
	res, err := e.wd.ExecuteScript(dom.Call(dom.LabelFunc), []interface{}{e.el})
	if err != nil {
		return "", err
	}
	s, _ := res.(string)
	return s, nil
}
