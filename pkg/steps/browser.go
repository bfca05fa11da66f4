package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/jsengine"
)

func browserSteps() []Definition {
	return []Definition{
		{`^I visit ` + quoted + `$`, visit,
			"Open the browser if needed and navigate to the URL (interpolated)."},
		{`^I resize the window to (\d+)$`, resizeWidth,
			"Set the window width, keeping the current height."},
		{`^I resize the window to (\d+)x(\d+)$`, resize,
			"Set the window size; a zero height keeps the current height."},
		{`^I click the element with ` + qualifier + ` ` + quoted + `$`, clickElementWith,
			"Wait for the element to be clickable, then click it."},
		{`^I press (\S+)$`, press,
			"Press a named key (Enter, Tab, Escape, ArrowDown, ...)."},
		{`^I type ` + quoted + `$`, typeText,
			"Type text into the focused element."},
		{`^the URL should be ` + quoted + `$`, urlShouldBe,
			"The current URL equals the value (interpolated)."},
		{`^the URL should contain ` + quoted + `$`, urlShouldContain,
			"The current URL contains the value (interpolated)."},
		{`^the URL should match ` + quoted + `$`, urlShouldMatch,
			"The current URL matches a JavaScript regular expression, /source/flags or plain source."},
		{`^the URL should be ` + quoted + ` after ` + number + ` seconds?$`, urlShouldBeAfter,
			"Wait, then check the current URL equals the value (interpolated)."},
		{`^I should see an element with ` + qualifier + ` ` + quoted + `$`, shouldSeeElementWith,
			"An element matching the qualifier exists and is visible."},
		{`^I should see a link to ` + quoted + `$`, shouldSeeLinkTo,
			"A visible link with exactly this href exists."},
		{`^the element with ` + qualifier + ` ` + quoted + ` should be (visible|hidden)$`, elementShouldBe,
			"The first matching element is visible or hidden."},
		{`^the element with ` + qualifier + ` ` + quoted + ` should have text ` + quoted + `$`, elementShouldHaveText,
			"The first matching element's trimmed text equals the value."},
		{`^the element with ` + qualifier + ` ` + quoted + ` should contain text ` + quoted + `$`, elementShouldContainText,
			"The first matching element's text contains the value."},
		{`^the elements with ` + qualifier + ` ` + quoted + ` should be (visible|hidden)$`, elementsShouldBe,
			"Visible: at least one matching element is visible. Hidden: none is."},
		{`^at least (\d+) elements? with ` + qualifier + ` ` + quoted + ` should be visible$`, atLeastShouldBeVisible,
			"At least N matching elements are visible."},
		{`^I set the value of ` + quoted + ` to ` + quoted + `$`, setValue,
			"Set the value of the visible input with this computed label (value interpolated)."},
		{`^I set the form values:$`, setFormValues,
			"Set input values by computed label from a | label | value | table (values interpolated)."},
		{`^I click on the ` + quoted + ` button$`, clickButton,
			"Click the visible button whose text is the value."},
		{`^I save a screenshot to ` + quoted + `$`, saveScreenshot,
			"Save a PNG screenshot to the path (interpolated), creating directories."},
		{`^I wait for ` + number + ` seconds?$`, wait,
			"Pause for the given number of seconds."},
		{`^I clear the browser$`, clearBrowser,
			"Navigate to about:blank."},
		{`^I close the browser$`, closeBrowser,
			"End the browser session; the next visit opens a new one."},
	}
}

func visit(ctx context.Context, url string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.Visit(w.Interpolate(url))
}

func resizeWidth(ctx context.Context, width int) error {
	return resize(ctx, width, 0)
}

func resize(ctx context.Context, width, height int) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.ResizeWindow(width, height)
}

func clickElementWith(ctx context.Context, q, value string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	el, err := w.ElementWith(q, value)
	if err != nil {
		return err
	}
	return w.Click(el)
}

func press(ctx context.Context, key string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.PressKey(key)
}

func typeText(ctx context.Context, text string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.Type(text)
}

func urlShouldBe(ctx context.Context, expected string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	actual, err := w.URL()
	if err != nil {
		return err
	}
	if expected = w.Interpolate(expected); actual != expected {
		return core.ErrURLMismatch.WithMessagef(`Expected URL to be "%s", but got "%s"`, expected, actual)
	}
	return nil
}

func urlShouldContain(ctx context.Context, substr string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	actual, err := w.URL()
	if err != nil {
		return err
	}
	if substr = w.Interpolate(substr); !strings.Contains(actual, substr) {
		return core.ErrURLMismatch.WithMessagef(`Expected URL to contain "%s", but got "%s"`, substr, actual)
	}
	return nil
}

func urlShouldMatch(ctx context.Context, pattern string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	actual, err := w.URL()
	if err != nil {
		return err
	}
	ok, err := jsengine.MatchString(pattern, actual)
	if err != nil {
		return core.ErrInvalidConfig.WithMessagef("invalid pattern %s", pattern).WithCause(err)
	}
	if !ok {
		return core.ErrURLMismatch.WithMessagef(`Expected URL to match %s, but got "%s"`,
			jsengine.RegExpFromString(pattern), actual)
	}
	return nil
}

func urlShouldBeAfter(ctx context.Context, expected string, secs float64) error {
	if err := sleep(ctx, seconds(secs)); err != nil {
		return err
	}
	return urlShouldBe(ctx, expected)
}

func shouldSeeElementWith(ctx context.Context, q, value string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	el, err := w.ElementWith(q, value)
	if err != nil {
		return err
	}
	return w.AssertDisplayed(el, true)
}

func shouldSeeLinkTo(ctx context.Context, href string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	link, err := w.Element(fmt.Sprintf(`a[href="%s"]`, href))
	if err != nil {
		return err
	}
	return w.AssertDisplayed(link, true)
}

func elementShouldBe(ctx context.Context, q, value, state string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	el, err := w.ElementWith(q, value)
	if err != nil {
		return err
	}
	return w.AssertDisplayed(el, state == "visible")
}

func elementText(ctx context.Context, q, value string) (string, error) {
	w, err := current(ctx)
	if err != nil {
		return "", err
	}
	el, err := w.ElementWith(q, value)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func elementShouldHaveText(ctx context.Context, q, value, expected string) error {
	actual, err := elementText(ctx, q, value)
	if err != nil {
		return err
	}
	if actual = strings.TrimSpace(actual); actual != expected {
		return core.ErrTextMismatch.WithMessagef(`Expected text "%s", but got "%s"`, expected, actual)
	}
	return nil
}

func elementShouldContainText(ctx context.Context, q, value, expected string) error {
	actual, err := elementText(ctx, q, value)
	if err != nil {
		return err
	}
	if !strings.Contains(actual, expected) {
		return core.ErrTextMismatch.WithMessagef(`Expected text to contain "%s", but got "%s"`, expected, actual)
	}
	return nil
}

func elementsShouldBe(ctx context.Context, q, value, state string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	els, err := w.ElementsWith(q, value)
	if err != nil {
		return err
	}
	return w.AssertAllDisplayed(els, state == "visible")
}

func atLeastShouldBeVisible(ctx context.Context, n int, q, value string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	els, err := w.ElementsWith(q, value)
	if err != nil {
		return err
	}
	return w.AssertDisplayedAtLeast(els, n)
}

func setValue(ctx context.Context, label, value string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	el, err := w.ElementWithLabel(label)
	if err != nil {
		return err
	}
	return el.SetValue(w.Interpolate(value))
}

func setFormValues(ctx context.Context, table *godog.Table) error {
	rows, err := hashes(table, "label", "value")
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := setValue(ctx, row["label"], row["value"]); err != nil {
			return err
		}
	}
	return nil
}

func clickButton(ctx context.Context, text string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	button, err := w.ElementWithText("button", text)
	if err != nil {
		return err
	}
	return w.Click(button)
}

func saveScreenshot(ctx context.Context, path string) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.Screenshot(w.Interpolate(path))
}

func wait(ctx context.Context, secs float64) error {
	return sleep(ctx, seconds(secs))
}

func clearBrowser(ctx context.Context) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.Clear()
}

func closeBrowser(ctx context.Context) error {
	w, err := current(ctx)
	if err != nil {
		return err
	}
	return w.Close()
}
