package playwright

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// keyNames maps lowercased key names and common aliases to the names
// Playwright's keyboard accepts.
var keyNames = map[string]string{
	"enter":      "Enter",
	"return":     "Enter",
	"tab":        "Tab",
	"escape":     "Escape",
	"esc":        "Escape",
	"backspace":  "Backspace",
	"delete":     "Delete",
	"insert":     "Insert",
	"space":      "Space",
	"arrowup":    "ArrowUp",
	"arrowdown":  "ArrowDown",
	"arrowleft":  "ArrowLeft",
	"arrowright": "ArrowRight",
	"up":         "ArrowUp",
	"down":       "ArrowDown",
	"left":       "ArrowLeft",
	"right":      "ArrowRight",
	"home":       "Home",
	"end":        "End",
	"pageup":     "PageUp",
	"pagedown":   "PageDown",
	"shift":      "Shift",
	"control":    "Control",
	"alt":        "Alt",
	"meta":       "Meta",
}

func init() {
	for i := 1; i <= 12; i++ {
		keyNames[fmt.Sprintf("f%d", i)] = fmt.Sprintf("F%d", i)
	}
}

// KeyName returns the Playwright name for a key. A single character is its own name.
func KeyName(name string) (string, error) {
	if key, ok := keyNames[strings.ToLower(name)]; ok {
		return key, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		return name, nil
	}
	return "", fmt.Errorf("unknown key %q", name)
}
