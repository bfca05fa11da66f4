package world

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// Qualifiers with special meaning in SelectorFor. Any other qualifier is an
// attribute name.
const (
	QualifierSelector       = "selector"
	QualifierText           = "text"
	QualifierTextContaining = "text containing"
)

// SelectorFor translates a qualifier and value into a selector.
func (w *World) SelectorFor(qualifier, value string) string {
	switch qualifier {
	case QualifierSelector:
		return w.Shorthand(value)
	case QualifierText:
		return "=" + value
	case QualifierTextContaining:
		return "*=" + value
	default:
		return fmt.Sprintf(`[%s="%s"]`, qualifier, value)
	}
}

// Shorthand expands a shorthand name, or returns the input unchanged.
func (w *World) Shorthand(nameOrSelector string) string {
	if selector, ok := w.shorthands[nameOrSelector]; ok {
		return selector
	}
	return nameOrSelector
}

// Element returns the first element matching a selector or shorthand.
func (w *World) Element(selectorOrShorthand string) (core.Element, error) {
	b, err := w.session(fmt.Sprintf(`select "%s" element`, selectorOrShorthand))
	if err != nil {
		return nil, err
	}
	selector := w.Shorthand(selectorOrShorthand)
	return findOne(b, selector, fmt.Sprintf(`with selector "%s"`, selector))
}

// Elements returns every element matching a selector or shorthand; none is an error.
func (w *World) Elements(selectorOrShorthand string) ([]core.Element, error) {
	b, err := w.session(fmt.Sprintf(`select "%s" elements`, selectorOrShorthand))
	if err != nil {
		return nil, err
	}
	selector := w.Shorthand(selectorOrShorthand)
	return findAll(b, selector, fmt.Sprintf(`with selector "%s"`, selector))
}

// ElementWith returns the first element matching qualifier and value.
func (w *World) ElementWith(qualifier, value string) (core.Element, error) {
	b, err := w.session(fmt.Sprintf(`select element with %s "%s"`, qualifier, value))
	if err != nil {
		return nil, err
	}
	selector := w.SelectorFor(qualifier, value)
	return findOne(b, selector, fmt.Sprintf(`with %s "%s" (%s)`, qualifier, value, selector))
}

// ElementsWith returns every element matching qualifier and value; none is an error.
func (w *World) ElementsWith(qualifier, value string) ([]core.Element, error) {
	b, err := w.session(fmt.Sprintf(`select elements with %s "%s"`, qualifier, value))
	if err != nil {
		return nil, err
	}
	selector := w.SelectorFor(qualifier, value)
	return findAll(b, selector, fmt.Sprintf(`with %s "%s" (%s)`, qualifier, value, selector))
}

// ElementWithLabel returns the first visible element matching selector
// (default "input") whose computed label, trimmed, equals label.
func (w *World) ElementWithLabel(label string, selector ...string) (core.Element, error) {
	sel := "input"
	if len(selector) > 0 && selector[0] != "" {
		sel = selector[0]
	}
	el, err := w.firstVisible(sel, label, core.Element.ComputedLabel)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, core.ErrElementNotFound.WithMessagef(
			`No element found with computed label: "%s" and selector: "%s"`, label, sel)
	}
	return el, nil
}

// ElementWithText returns the first visible element matching selector whose
// text, trimmed, equals text.
func (w *World) ElementWithText(selector, text string) (core.Element, error) {
	el, err := w.firstVisible(selector, text, core.Element.Text)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, core.ErrElementNotFound.WithMessagef(
			`No element found with text: "%s" and selector: "%s"`, text, selector)
	}
	return el, nil
}

// firstVisible scans the elements matching selector, skipping hidden ones,
// for the first whose property, trimmed, equals want. Nil if none does.
func (w *World) firstVisible(selector, want string, property func(core.Element) (string, error)) (core.Element, error) {
	els, err := w.Elements(selector)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		displayed, err := el.IsDisplayed()
		if err != nil {
			return nil, err
		}
		if !displayed {
			continue
		}
		got, err := property(el)
		if err != nil {
			return nil, err
		}
		if got != "" && strings.TrimSpace(got) == want {
			return el, nil
		}
	}
	return nil, nil
}

func findOne(b core.Browser, selector, reason string) (core.Element, error) {
	el, err := b.FindElement(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, core.ErrElementNotFound.WithMessage("No element found " + reason)
	}
	return el, nil
}

func findAll(b core.Browser, selector, reason string) ([]core.Element, error) {
	els, err := b.FindElements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, core.ErrElementNotFound.WithMessage("No elements found " + reason)
	}
	return els, nil
}
