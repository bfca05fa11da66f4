package core

import "strings"

// Strategy is how a selector string locates elements.
type Strategy int

const (
	StrategyCSS             Strategy = iota // CSS selector
	StrategyXPath                           // starts with "/" or "("
	StrategyLinkText                        // "=text"
	StrategyPartialLinkText                 // "*=text"
)

// String returns the string representation of Strategy
func (s Strategy) String() string {
	switch s {
	case StrategyXPath:
		return "xpath"
	case StrategyLinkText:
		return "link text"
	case StrategyPartialLinkText:
		return "partial link text"
	default:
		return "css"
	}
}

// ParseSelector splits a selector into its strategy and the value the
// strategy operates on.
func ParseSelector(selector string) (Strategy, string) {
	switch {
	case strings.HasPrefix(selector, "*="):
		return StrategyPartialLinkText, selector[2:]
	case strings.HasPrefix(selector, "="):
		return StrategyLinkText, selector[1:]
	case strings.HasPrefix(selector, "/"), strings.HasPrefix(selector, "("):
		return StrategyXPath, selector
	default:
		return StrategyCSS, selector
	}
}
