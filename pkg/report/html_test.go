package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

func TestGenerateHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, sampleResult()))

	data, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<title>checkout</title>")
	assert.Contains(t, html, "Pay with card!")
	assert.Contains(t, html, "Browse &lt;catalog&gt;")
	assert.NotContains(t, html, "Browse <catalog>")
	assert.Contains(t, html, "2 scenarios")
	assert.Contains(t, html, "1 failed")
	assert.Contains(t, html, "50% pass rate")
	assert.Contains(t, html, `src="assets/scenario-001-pay-with-card/step-002.png"`)
}

func TestGenerateHTML_Embed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, sampleResult()))
	res, err := Read(dir)
	require.NoError(t, err)

	out := filepath.Join(dir, "embedded.html")
	require.NoError(t, GenerateHTML(dir, res, HTMLConfig{OutputPath: out, EmbedAssets: true, Title: "Nightly"}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>Nightly</title>")
	assert.Contains(t, html, "data:image/png;base64,")
}

func TestGenerateHTML_DefaultTitle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateHTML(dir, core.SuiteResult{}, HTMLConfig{}))

	data, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<title>Test Report</title>"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "-"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "passed", statusClass(core.StatusPassed))
	assert.Equal(t, "failed", statusClass(core.StatusErrored))
	assert.Equal(t, "failed", statusClass(core.StatusUndefined))
	assert.Equal(t, "skipped", statusClass(core.StatusSkipped))
	assert.Equal(t, "pending", statusClass(core.StatusRunning))
}
