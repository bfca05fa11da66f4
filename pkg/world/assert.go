package world

import (
	"fmt"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

func visibility(displayed bool) string {
	if displayed {
		return "visible"
	}
	return "hidden"
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// AssertDisplayed checks that el is visible (displayed) or hidden (!displayed).
func (w *World) AssertDisplayed(el core.Element, displayed bool) error {
	if el == nil {
		return core.ErrElementNotFound.WithMessagef(
			"Expected one or more %s elements, but got nil", visibility(displayed))
	}
	visible, err := el.IsDisplayed()
	if err != nil {
		return err
	}
	if visible != displayed {
		return core.ErrElementNotVisible.WithMessagef("Element is not %s", visibility(displayed))
	}
	return nil
}

// AssertAllDisplayed checks a set of elements: with displayed, that at least
// one is visible; without, that none is.
func (w *World) AssertAllDisplayed(els []core.Element, displayed bool) error {
	count, err := countVisible(els)
	if err != nil {
		return err
	}
	n := len(els)
	if displayed && count == 0 {
		return core.ErrElementNotVisible.WithMessagef("None of the %d %s are visible", n, pluralize("element", n))
	}
	if !displayed && count > 0 {
		return core.ErrElementNotVisible.WithMessagef("Expected 0 visible elements out of %d, but got %d", n, count)
	}
	return nil
}

// AssertDisplayedAtLeast checks that at least atLeast of els are visible.
func (w *World) AssertDisplayedAtLeast(els []core.Element, atLeast int) error {
	count, err := countVisible(els)
	if err != nil {
		return err
	}
	if count < atLeast {
		return core.ErrElementNotVisible.WithMessagef("Expected at least %d visible %s out of %d, but got %d",
			atLeast, pluralize("element", atLeast), len(els), count)
	}
	return nil
}

func countVisible(els []core.Element) (int, error) {
	if len(els) == 0 {
		return 0, core.ErrElementNotFound.WithMessage("Expected a non-empty element array")
	}
	count := 0
	for i, el := range els {
		visible, err := el.IsDisplayed()
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		if visible {
			count++
		}
	}
	return count, nil
}
