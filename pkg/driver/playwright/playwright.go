// Package playwright implements core.Browser on a locally launched browser
// using playwright-go.
package playwright

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver/internal/dom"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
)

// Engines
const (
	Chromium = "chromium"
	Firefox  = "firefox"
	WebKit   = "webkit"
)

// Config configures a local browser.
type Config struct {
	Capabilities      core.Capabilities
	Headless          bool
	DriverDir         string // Where the Playwright driver and browsers are installed
	NavigationTimeout time.Duration
}

var (
	installMu sync.Mutex
	installed = map[string]bool{}
)

// install and run are replaced in tests.
var (
	install = func(opts *pw.RunOptions) error { return pw.Install(opts) }
	run     = func(opts *pw.RunOptions) (*pw.Playwright, error) { return pw.Run(opts) }
)

// Browser implements core.Browser on a single Playwright page.
type Browser struct {
	pw      *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

// EngineFor maps a WebDriver browserName to a Playwright engine.
func EngineFor(browserName string) (string, error) {
	switch browserName {
	case "", "chrome", "chromium", "edge", "microsoftedge", "msedge":
		return Chromium, nil
	case "firefox":
		return Firefox, nil
	case "safari", "webkit":
		return WebKit, nil
	default:
		return "", core.ErrUnknownBrowser.WithMessagef("browser %q cannot run locally", browserName)
	}
}

// ensureInstalled installs the driver and engine once per process.
func ensureInstalled(dir, engine string) error {
	installMu.Lock()
	defer installMu.Unlock()

	key := dir + "|" + engine
	if installed[key] {
		return nil
	}
	logger.Info("playwright: installing %s into %s", engine, dir)
	out := logger.GetWriter()
	defer out.Close()
	if err := install(&pw.RunOptions{
		DriverDirectory: dir,
		Browsers:        []string{engine},
		Stdout:          out,
		Stderr:          out,
	}); err != nil {
		return fmt.Errorf("failed to install playwright %s: %w", engine, err)
	}
	installed[key] = true
	return nil
}

// New installs (if needed) and launches a browser, and opens a page.
func New(cfg Config) (*Browser, error) {
	engine, err := EngineFor(cfg.Capabilities.BrowserName())
	if err != nil {
		return nil, err
	}
	if err := ensureInstalled(cfg.DriverDir, engine); err != nil {
		return nil, err
	}

	p, err := run(&pw.RunOptions{DriverDirectory: cfg.DriverDir})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	opts := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(cfg.Headless)}
	var bt pw.BrowserType
	switch engine {
	case Firefox:
		bt = p.Firefox
	case WebKit:
		bt = p.WebKit
	default:
		bt = p.Chromium
		opts.Args = cfg.Capabilities.ChromeArgs()
	}

	logger.Debug("playwright: launching %s (headless=%v, args=%v)", engine, cfg.Headless, opts.Args)
	browser, err := bt.Launch(opts)
	if err != nil {
		_ = p.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", engine, err)
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = p.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if cfg.NavigationTimeout > 0 {
		page.SetDefaultNavigationTimeout(float64(cfg.NavigationTimeout.Milliseconds()))
	}

	return &Browser{pw: p, browser: browser, page: page}, nil
}

// Selector translates a selector into Playwright selector syntax.
func Selector(selector string) string {
	strategy, value := core.ParseSelector(selector)
	switch strategy {
	case core.StrategyXPath:
		return "xpath=" + value
	case core.StrategyLinkText:
		return "a:text-is(" + strconv.Quote(value) + ")"
	case core.StrategyPartialLinkText:
		return "a:has-text(" + strconv.Quote(value) + ")"
	default:
		return value
	}
}

// Navigate implements core.Browser.
func (b *Browser) Navigate(url string) error {
	_, err := b.page.Goto(url)
	return err
}

// URL implements core.Browser.
func (b *Browser) URL() (string, error) {
	return b.page.URL(), nil
}

// FindElement implements core.Browser.
func (b *Browser) FindElement(selector string) (core.Element, error) {
	els, err := b.FindElements(selector)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

// FindElements implements core.Browser.
func (b *Browser) FindElements(selector string) ([]core.Element, error) {
	locs, err := b.page.Locator(Selector(selector)).All()
	if err != nil {
		return nil, err
	}
	out := make([]core.Element, len(locs))
	for i, loc := range locs {
		out[i] = &element{loc: loc}
	}
	return out, nil
}

// WindowSize implements core.Browser. Playwright pages have no outer
// window, so this is the viewport.
func (b *Browser) WindowSize() (core.WindowSize, error) {
	size := b.page.ViewportSize()
	if size == nil {
		return core.WindowSize{}, errors.New("page has no fixed viewport")
	}
	return core.WindowSize{Width: size.Width, Height: size.Height}, nil
}

// SetWindowSize implements core.Browser.
func (b *Browser) SetWindowSize(width, height int) error {
	return b.page.SetViewportSize(width, height)
}

// Keys implements core.Browser.
func (b *Browser) Keys(names ...string) error {
	for _, name := range names {
		key, err := KeyName(name)
		if err != nil {
			return err
		}
		if err := b.page.Keyboard().Press(key); err != nil {
			return err
		}
	}
	return nil
}

// Type implements core.Browser.
func (b *Browser) Type(text string) error {
	return b.page.Keyboard().Type(text)
}

// Screenshot implements core.Browser.
func (b *Browser) Screenshot() ([]byte, error) {
	return b.page.Screenshot()
}

// Close implements core.Browser.
func (b *Browser) Close() error {
	var errs []error
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
	}
	if b.pw != nil {
		errs = append(errs, b.pw.Stop())
	}
	return errors.Join(errs...)
}

type element struct {
	loc pw.Locator
}

func (e *element) Click() error {
	return e.loc.Click()
}

func (e *element) WaitForClickable(timeout time.Duration) error {
	err := e.loc.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, pw.ErrTimeout) {
		return core.ErrTimeout.WithMessagef("element not clickable after %s", timeout).WithCause(err)
	}
	return err
}

func (e *element) SetValue(value string) error {
	return e.loc.Fill(value)
}

func (e *element) Text() (string, error) {
	return e.loc.InnerText()
}

func (e *element) IsDisplayed() (bool, error) {
	return e.loc.IsVisible()
}

func (e *element) ComputedLabel() (string, error) {
	res, err := e.loc.Evaluate(dom.LabelFunc, nil)
	if err != nil {
		return "", err
	}
	s, _ := res.(string)
	return s, nil
}
