package core

import (
	"strings"
	"time"
)

// Browser defines the interface for an automation session.
// Implementations: WebDriver (remote grid), Playwright (local), mock.
// The World owns the session lifecycle; Browser just executes commands.
//
// Selectors passed to FindElement/FindElements use one syntax across drivers:
//
//	=Some text    link whose text equals "Some text"
//	*=Some text   link whose text contains "Some text"
//	//div[...]    XPath (anything starting with "/" or "(")
//	anything else CSS
type Browser interface {
	// Navigate loads url in the current window
	Navigate(url string) error

	// URL returns the current page URL
	URL() (string, error)

	// FindElement returns the first match, or nil (and no error) if nothing matches
	FindElement(selector string) (Element, error)

	// FindElements returns all matches, empty if nothing matches
	FindElements(selector string) ([]Element, error)

	// WindowSize returns the current outer window size
	WindowSize() (WindowSize, error)

	// SetWindowSize resizes the outer window
	SetWindowSize(width, height int) error

	// Keys presses the named keys (Enter, Tab, ArrowDown, ...) in order
	Keys(names ...string) error

	// Type sends text to the focused element
	Type(text string) error

	// Screenshot captures the viewport as PNG
	Screenshot() ([]byte, error)

	// Close ends the session
	Close() error
}

// Element is a handle to a DOM element in a Browser session.
type Element interface {
	Click() error
	WaitForClickable(timeout time.Duration) error
	SetValue(value string) error
	Text() (string, error)
	IsDisplayed() (bool, error)

	// ComputedLabel returns the element's accessible name
	ComputedLabel() (string, error)
}

// WindowSize is an outer window size in CSS pixels.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Capabilities are the session capabilities sent to the automation backend.
type Capabilities map[string]interface{}

// Clone returns a deep copy of the capabilities.
func (c Capabilities) Clone() Capabilities {
	if c == nil {
		return nil
	}
	return Capabilities(cloneMap(c))
}

// BrowserName returns the "browserName" capability, lowercased.
func (c Capabilities) BrowserName() string {
	name, _ := c["browserName"].(string)
	return strings.ToLower(name)
}

// Local reports whether the capabilities ask to bypass a configured grid server.
func (c Capabilities) Local() bool {
	switch v := c["local"].(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	case nil:
		return false
	default:
		return true
	}
}

// ChromeArgs returns goog:chromeOptions.args, if any.
func (c Capabilities) ChromeArgs() []string {
	opts, ok := c["goog:chromeOptions"].(map[string]interface{})
	if !ok {
		return nil
	}
	switch args := opts["args"].(type) {
	case []string:
		return append([]string(nil), args...)
	case []interface{}:
		out := make([]string, 0, len(args))
		for _, a := range args {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case Capabilities:
		return Capabilities(cloneMap(t))
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// ExecutedBy indicates what component executed a step
type ExecutedBy string

// ExecutedBy values
const (
	ExecutedByBrowser ExecutedBy = "browser" // Went through the automation session
	ExecutedByWorld   ExecutedBy = "world"   // Handled by the World alone (variables, waits)
)
