package webdriver

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tebeka/selenium"
)

// keyCodes maps DOM key names (as Playwright and KeyboardEvent.key spell
// them) to WebDriver key codes. Lookups are case-insensitive.
var keyCodes = map[string]string{
	"enter":      selenium.EnterKey,
	"return":     selenium.ReturnKey,
	"tab":        selenium.TabKey,
	"escape":     selenium.EscapeKey,
	"esc":        selenium.EscapeKey,
	"backspace":  selenium.BackspaceKey,
	"delete":     selenium.DeleteKey,
	"insert":     selenium.InsertKey,
	"space":      selenium.SpaceKey,
	"arrowup":    selenium.UpArrowKey,
	"arrowdown":  selenium.DownArrowKey,
	"arrowleft":  selenium.LeftArrowKey,
	"arrowright": selenium.RightArrowKey,
	"up":         selenium.UpArrowKey,
	"down":       selenium.DownArrowKey,
	"left":       selenium.LeftArrowKey,
	"right":      selenium.RightArrowKey,
	"home":       selenium.HomeKey,
	"end":        selenium.EndKey,
	"pageup":     selenium.PageUpKey,
	"pagedown":   selenium.PageDownKey,
	"shift":      selenium.ShiftKey,
	"control":    selenium.ControlKey,
	"alt":        selenium.AltKey,
	"meta":       selenium.MetaKey,
	"f1":         selenium.F1Key,
	"f2":         selenium.F2Key,
	"f3":         selenium.F3Key,
	"f4":         selenium.F4Key,
	"f5":         selenium.F5Key,
	"f6":         selenium.F6Key,
	"f7":         selenium.F7Key,
	"f8":         selenium.F8Key,
	"f9":         selenium.F9Key,
	"f10":        selenium.F10Key,
	"f11":        selenium.F11Key,
	"f12":        selenium.F12Key,
}

// KeyCode returns the WebDriver code for a named key. A single character is
// its own code.
func KeyCode(name string) (string, error) {
	if code, ok := keyCodes[strings.ToLower(name)]; ok {
		return code, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		return name, nil
	}
	return "", fmt.Errorf("unknown key %q", name)
}
