// Package browsers holds the browser capability shorthands: BrowserStack
// grid descriptors plus a local headless Chrome.
package browsers

import (
	"strings"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// Default is the shorthand used when no browser is configured.
const Default = "puppeteer"

// Env carries the environment overrides applied to the table.
type Env struct {
	BrowserName    string // BROWSER_NAME
	BrowserVersion string // BROWSER_VERSION
	ChromeArgs     string // CHROME_ARGS, space separated
	OS             string // OS
	OSVersion      string // OS_VERSION
	Local          string // BROWSER_LOCAL
}

type remote struct {
	browserName string
	version     string
	os          string
	osVersion   string
}

var remotes = []struct {
	name   string
	target remote
}{
	{"chrome", remote{"Chrome", "latest", "Windows", "10"}},
	{"edge", remote{"Edge", "latest", "Windows", "10"}},
	{"firefox", remote{"Firefox", "latest", "Windows", "10"}},
	{"ie9", remote{"IE", "9.0", "Windows", "7"}},
	{"ie10", remote{"IE", "10.0", "Windows", "7"}},
	{"ie11", remote{"IE", "11", "Windows", "10"}},
	{"safari", remote{"Safari", "13.0", "OS X", "Catalina"}},
}

// Names returns every shorthand in declaration order.
func Names() []string {
	names := make([]string, 0, len(remotes)+1)
	for _, r := range remotes {
		names = append(names, r.name)
	}
	return append(names, Default)
}

// Lookup resolves a shorthand to fresh capabilities.
func Lookup(name string, env Env) (core.Capabilities, bool) {
	if name == Default {
		return headlessChrome(env), true
	}
	for _, r := range remotes {
		if r.name == name {
			return r.target.capabilities(env), true
		}
	}
	return nil, false
}

// Table returns all shorthands resolved against env.
func Table(env Env) map[string]core.Capabilities {
	table := make(map[string]core.Capabilities, len(remotes)+1)
	for _, name := range Names() {
		table[name], _ = Lookup(name, env)
	}
	return table
}

func (r remote) capabilities(env Env) core.Capabilities {
	return core.Capabilities{
		"browserName":    or(env.BrowserName, r.browserName),
		"browserVersion": or(env.BrowserVersion, r.version),
		"bstack:options": map[string]interface{}{
			"debug":     true,
			"os":        or(env.OS, r.os),
			"osVersion": or(env.OSVersion, r.osVersion),
			"local":     env.Local,
		},
	}
}

func headlessChrome(env Env) core.Capabilities {
	args := []string{"--headless", "--no-sandbox"}
	if env.ChromeArgs != "" {
		args = strings.Split(env.ChromeArgs, " ")
	}
	return core.Capabilities{
		"browserName": "chrome",
		"goog:chromeOptions": map[string]interface{}{
			"args": args,
		},
	}
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
