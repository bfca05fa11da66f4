// Package mock provides an in-memory browser for testing without a real browser.
package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
)

// PNG is what Screenshot returns: the PNG signature.
var PNG = []byte("\x89PNG\r\n\x1a\n")

// Config configures mock browser behavior.
type Config struct {
	// URL is the initial page. Default: about:blank
	URL string
	// WindowSize is the initial window size. Default: 1024x768
	WindowSize core.WindowSize
	// Delay adds artificial latency to every command
	Delay time.Duration
	// Errors makes the named method fail ("Navigate", "Close", "Screenshot", ...)
	Errors map[string]error
}

// Browser is a mock implementation of core.Browser. Elements are registered
// per selector string exactly as the caller will query them.
type Browser struct {
	Config Config

	mu       sync.Mutex
	url      string
	size     core.WindowSize
	elements map[string][]*Element
	visits   []string
	pressed  []string
	typed    []string
	shots    int
	closed   int
	launches []driver.Options
}

// New creates a new mock browser.
func New(cfg Config) *Browser {
	if cfg.URL == "" {
		cfg.URL = "about:blank"
	}
	if cfg.WindowSize == (core.WindowSize{}) {
		cfg.WindowSize = core.WindowSize{Width: 1024, Height: 768}
	}
	return &Browser{
		Config:   cfg,
		url:      cfg.URL,
		size:     cfg.WindowSize,
		elements: make(map[string][]*Element),
	}
}

// Add registers elements under selector, after any already there.
func (b *Browser) Add(selector string, els ...*Element) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements[selector] = append(b.elements[selector], els...)
	return b
}

// Launcher returns a session factory that records its options and hands out b.
func (b *Browser) Launcher() driver.Launcher {
	return func(opts driver.Options) (core.Browser, error) {
		b.mu.Lock()
		b.launches = append(b.launches, opts)
		err := b.Config.Errors["Launch"]
		b.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func (b *Browser) command(name string) error {
	if b.Config.Delay > 0 {
		time.Sleep(b.Config.Delay)
	}
	if err := b.Config.Errors[name]; err != nil {
		return fmt.Errorf("mock %s: %w", name, err)
	}
	return nil
}

// Navigate implements core.Browser.
func (b *Browser) Navigate(url string) error {
	if err := b.command("Navigate"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
	b.visits = append(b.visits, url)
	return nil
}

// URL implements core.Browser.
func (b *Browser) URL() (string, error) {
	if err := b.command("URL"); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url, nil
}

// SetURL changes the current URL without recording a visit (e.g. a redirect).
func (b *Browser) SetURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
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
	if err := b.command("FindElements"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Element, 0, len(b.elements[selector]))
	for _, el := range b.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

// WindowSize implements core.Browser.
func (b *Browser) WindowSize() (core.WindowSize, error) {
	if err := b.command("WindowSize"); err != nil {
		return core.WindowSize{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size, nil
}

// SetWindowSize implements core.Browser.
func (b *Browser) SetWindowSize(width, height int) error {
	if err := b.command("SetWindowSize"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = core.WindowSize{Width: width, Height: height}
	return nil
}

// Keys implements core.Browser.
func (b *Browser) Keys(names ...string) error {
	if err := b.command("Keys"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = append(b.pressed, names...)
	return nil
}

// Type implements core.Browser.
func (b *Browser) Type(text string) error {
	if err := b.command("Type"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.typed = append(b.typed, text)
	return nil
}

// Screenshot implements core.Browser.
func (b *Browser) Screenshot() ([]byte, error) {
	if err := b.command("Screenshot"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shots++
	return append([]byte(nil), PNG...), nil
}

// Close implements core.Browser.
func (b *Browser) Close() error {
	b.mu.Lock()
	b.closed++
	b.mu.Unlock()
	return b.command("Close")
}

// Visits returns the URLs navigated to, in order.
func (b *Browser) Visits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visits...)
}

// Pressed returns the key names pressed, in order.
func (b *Browser) Pressed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.pressed...)
}

// Typed returns the text typed, one entry per Type call.
func (b *Browser) Typed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.typed...)
}

// Screenshots returns how many screenshots were taken.
func (b *Browser) Screenshots() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shots
}

// Closed returns how many times Close was called.
func (b *Browser) Closed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Launches returns the options of every launch through Launcher.
func (b *Browser) Launches() []driver.Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]driver.Options(nil), b.launches...)
}

// Element is a mock implementation of core.Element.
type Element struct {
	InnerText string
	Label     string
	Value     string
	Hidden    bool
	Disabled  bool
	// Err fails every element command
	Err error

	mu     sync.Mutex
	clicks int
}

// Clicks returns how many times the element was clicked.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Click implements core.Element.
func (e *Element) Click() error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks++
	return nil
}

// WaitForClickable implements core.Element. It does not wait.
func (e *Element) WaitForClickable(timeout time.Duration) error {
	if e.Err != nil {
		return e.Err
	}
	if e.Hidden || e.Disabled {
		return core.ErrTimeout.WithMessagef("element not clickable after %s", timeout)
	}
	return nil
}

// SetValue implements core.Element.
func (e *Element) SetValue(value string) error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Value = value
	return nil
}

// GetValue returns the current value.
func (e *Element) GetValue() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Value
}

// Text implements core.Element.
func (e *Element) Text() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.InnerText, nil
}

// IsDisplayed implements core.Element.
func (e *Element) IsDisplayed() (bool, error) {
	if e.Err != nil {
		return false, e.Err
	}
	return !e.Hidden, nil
}

// ComputedLabel implements core.Element.
func (e *Element) ComputedLabel() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Label, nil
}
