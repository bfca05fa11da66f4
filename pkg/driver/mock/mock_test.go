package mock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
)

var _ core.Browser = (*Browser)(nil)
var _ core.Element = (*Element)(nil)

func TestNew_Defaults(t *testing.T) {
	b := New(Config{})
	u, err := b.URL()
	require.NoError(t, err)
	assert.Equal(t, "about:blank", u)

	size, err := b.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, core.WindowSize{Width: 1024, Height: 768}, size)
}

func TestBrowser_Elements(t *testing.T) {
	heading := &Element{InnerText: "Hello"}
	b := New(Config{}).Add("h1", heading).Add("h1", &Element{InnerText: "Again", Hidden: true})

	els, err := b.FindElements("h1")
	require.NoError(t, err)
	assert.Len(t, els, 2)

	el, err := b.FindElement("h1")
	require.NoError(t, err)
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	missing, err := b.FindElement("h2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBrowser_Records(t *testing.T) {
	b := New(Config{})
	require.NoError(t, b.Navigate("https://example.com"))
	require.NoError(t, b.Keys("Enter", "Tab"))
	require.NoError(t, b.Type("abc"))
	_, err := b.Screenshot()
	require.NoError(t, err)
	require.NoError(t, b.Close())

	assert.Equal(t, []string{"https://example.com"}, b.Visits())
	assert.Equal(t, []string{"Enter", "Tab"}, b.Pressed())
	assert.Equal(t, []string{"abc"}, b.Typed())
	assert.Equal(t, 1, b.Screenshots())
	assert.Equal(t, 1, b.Closed())
}

func TestBrowser_Errors(t *testing.T) {
	boom := errors.New("boom")
	b := New(Config{Errors: map[string]error{"Close": boom, "Launch": boom}})

	err := b.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.Closed(), "close is counted even when it fails")

	_, err = b.Launcher()(driver.Options{})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.Launches(), 1)
}

func TestElement(t *testing.T) {
	el := &Element{Label: "Email"}
	require.NoError(t, el.WaitForClickable(0))
	require.NoError(t, el.Click())
	require.NoError(t, el.SetValue("me@example.com"))
	assert.Equal(t, 1, el.Clicks())
	assert.Equal(t, "me@example.com", el.GetValue())

	label, err := el.ComputedLabel()
	require.NoError(t, err)
	assert.Equal(t, "Email", label)

	el.Disabled = true
	err = el.WaitForClickable(0)
	assert.Equal(t, core.ErrCategoryTimeout, core.CategoryOf(err))

	el.Err = errors.New("stale")
	_, err = el.IsDisplayed()
	assert.Error(t, err)
}
