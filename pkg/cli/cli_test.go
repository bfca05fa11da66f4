package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver/mock"
	"github.com/devicelab-dev/browser-steps/pkg/report"
)

// newTestApp returns the app with output captured in buf.
func newTestApp(buf *bytes.Buffer) *cli.App {
	app := NewApp()
	app.Writer = buf
	app.ErrWriter = buf
	return app
}

// useMock routes sessions to b for the duration of the test.
func useMock(t *testing.T, b *mock.Browser) {
	t.Helper()
	launcher = b.Launcher()
	t.Cleanup(func() { launcher = nil })
}

func writeFeature(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const passingFeature = `Feature: CLI

  Scenario: Visit a page
    Given I visit "https://example.com/$PAGE"
    Then the URL should be "https://example.com/home"
`

const failingFeature = `Feature: CLI

  Scenario: Wrong page
    Given I visit "https://example.com/"
    Then the URL should contain "nowhere"
`

func TestGlobalFlags(t *testing.T) {
	names := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			names[name] = true
		}
	}
	for _, name := range []string{"verbose", "log-file", "no-ansi"} {
		assert.True(t, names[name], "expected flag %q", name)
	}
}

func TestRunCommand_Flags(t *testing.T) {
	names := make(map[string]bool)
	for _, f := range runCommand.Flags {
		for _, name := range f.Names() {
			names[name] = true
		}
	}
	for _, name := range []string{
		"config", "env-file", "browser", "driver", "tags", "format", "var", "v",
		"output", "keep-open", "no-strict", "concurrency", "headless",
	} {
		assert.True(t, names[name], "expected flag %q", name)
	}
}

func TestRun_Passing(t *testing.T) {
	t.Setenv("BROWSER", "puppeteer")
	b := mock.New(mock.Config{})
	useMock(t, b)

	dir := t.TempDir()
	feature := writeFeature(t, dir, "pass.feature", passingFeature)
	out := filepath.Join(dir, "out")

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run",
		"--output", out, "--format", "progress", "-v", "PAGE=home",
		feature,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/home"}, b.Visits())
	assert.Equal(t, 1, b.Closed())

	res, err := report.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PassedScenarios)
	assert.FileExists(t, filepath.Join(out, report.HTMLFile))
	assert.FileExists(t, filepath.Join(out, "browser-steps.log"))

	assert.Contains(t, buf.String(), "TOTAL")
	assert.Contains(t, buf.String(), "Visit a page")
	assert.Contains(t, buf.String(), "1/1")
}

func TestRun_Failing(t *testing.T) {
	t.Setenv("BROWSER", "puppeteer")
	b := mock.New(mock.Config{})
	useMock(t, b)

	dir := t.TempDir()
	feature := writeFeature(t, dir, "fail.feature", failingFeature)
	out := filepath.Join(dir, "out")

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run", "--output", out, "--format", "progress", feature,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 scenarios failed")

	res, err := report.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Scenarios, 1)
	steps := res.Scenarios[0].Steps
	require.Len(t, steps, 2)
	require.Len(t, steps[1].Attachments, 1)
	assert.FileExists(t, filepath.Join(out, filepath.FromSlash(steps[1].Attachments[0].Path)))
}

const taggedFeature = `Feature: Tags

  @smoke
  Scenario: Fast
    Given I visit "https://example.com/fast"

  @smoke @slow
  Scenario: Slow
    Given I visit "https://example.com/slow"
`

func TestRun_TagExpression(t *testing.T) {
	t.Setenv("BROWSER", "puppeteer")
	b := mock.New(mock.Config{})
	useMock(t, b)

	dir := t.TempDir()
	feature := writeFeature(t, dir, "tags.feature", taggedFeature)
	out := filepath.Join(dir, "out")

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run", "--output", out, "--format", "progress",
		"--tags", "@smoke and not @slow", feature,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/fast"}, b.Visits())

	res, err := report.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, "Fast", res.Scenarios[0].Name)
}

func TestRun_NoScenariosMatched(t *testing.T) {
	t.Setenv("BROWSER", "puppeteer")
	b := mock.New(mock.Config{})
	useMock(t, b)

	dir := t.TempDir()
	feature := writeFeature(t, dir, "tags.feature", taggedFeature)

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run", "--output", filepath.Join(dir, "out"),
		"--format", "progress", "--tags", "@wip", feature,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenarios matched")
	assert.Contains(t, err.Error(), `tags: "@wip"`)
	assert.Empty(t, b.Visits())
}

func TestRun_InvalidTags(t *testing.T) {
	dir := t.TempDir()
	feature := writeFeature(t, dir, "pass.feature", passingFeature)

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run", "--output", filepath.Join(dir, "out"),
		"--tags", "@smoke and", feature,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tag expression")
}

func TestRun_VerboseLogsToFileAndStderr(t *testing.T) {
	t.Setenv("BROWSER", "puppeteer")
	b := mock.New(mock.Config{})
	useMock(t, b)

	dir := t.TempDir()
	feature := writeFeature(t, dir, "pass.feature", passingFeature)
	out := filepath.Join(dir, "out")

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "--verbose", "run",
		"--output", out, "--format", "progress", "-v", "PAGE=home", feature,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Test execution started")
	data, err := os.ReadFile(filepath.Join(out, "browser-steps.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Test execution started")
}

func TestRun_InvalidDriver(t *testing.T) {
	dir := t.TempDir()
	feature := writeFeature(t, dir, "pass.feature", passingFeature)

	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "--no-ansi", "run",
		"--output", filepath.Join(dir, "out"), "--driver", "cypress", feature,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestRun_MissingEnvFile(t *testing.T) {
	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{
		"browser-steps", "run", "--env-file", filepath.Join(t.TempDir(), "missing.env"),
	})
	require.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	var got *config.Config
	app := &cli.App{
		Name: "test-app",
		Commands: []*cli.Command{{
			Name:  "run",
			Flags: runCommand.Flags,
			Action: func(c *cli.Context) error {
				got = &config.Config{
					Features:     []string{"features"},
					Capabilities: map[string]interface{}{"browserName": "chrome"},
					Vars:         map[string]interface{}{"KEEP": "yes"},
				}
				applyFlags(c, got)
				return nil
			},
		}},
	}

	err := app.Run([]string{
		"test-app", "run",
		"--browser", "firefox", "--driver", "webdriver", "--tags", "@smoke",
		"--format", "pretty", "--output", "out", "--keep-open", "--no-strict",
		"--concurrency", "3", "--headless=false",
		"-v", "A=1", "--var", "B=x=y", "-v", "junk",
		"a.feature", "b.feature",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.feature", "b.feature"}, got.Features)
	assert.Equal(t, "firefox", got.Browser)
	assert.Nil(t, got.Capabilities)
	assert.Equal(t, "webdriver", got.Driver)
	assert.Equal(t, "@smoke", got.Tags)
	assert.Equal(t, "pretty", got.Format)
	assert.Equal(t, "out", got.Output)
	assert.True(t, got.KeepOpen)
	assert.False(t, got.IsStrict())
	assert.Equal(t, 3, got.Concurrency)
	assert.False(t, got.IsHeadless())
	assert.Equal(t, map[string]interface{}{"KEEP": "yes", "A": "1", "B": "x=y"}, got.Vars)
}

func TestApplyFlags_Unset(t *testing.T) {
	var got *config.Config
	app := &cli.App{
		Name: "test-app",
		Commands: []*cli.Command{{
			Name:  "run",
			Flags: runCommand.Flags,
			Action: func(c *cli.Context) error {
				got = &config.Config{Browser: "safari", Features: []string{"specs"}}
				applyFlags(c, got)
				return nil
			},
		}},
	}

	require.NoError(t, app.Run([]string{"test-app", "run"}))
	assert.Equal(t, "safari", got.Browser)
	assert.Equal(t, []string{"specs"}, got.Features)
	assert.Nil(t, got.Strict)
	assert.Nil(t, got.Headless)
	assert.Nil(t, got.Vars)
}

func TestBrowsersCommand(t *testing.T) {
	t.Setenv("BROWSER", "chrome")
	t.Setenv("BROWSER_VERSION", "")

	var buf bytes.Buffer
	require.NoError(t, newTestApp(&buf).Run([]string{"browser-steps", "--no-ansi", "browsers"}))

	out := buf.String()
	assert.Contains(t, out, "chrome: (default)")
	assert.Contains(t, out, "browserName: Chrome")
	assert.Contains(t, out, "puppeteer:")
	assert.Contains(t, out, "safari:")
}

func TestBrowsersCommand_Named(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestApp(&buf).Run([]string{"browser-steps", "--no-ansi", "browsers", "firefox"}))
	assert.Contains(t, buf.String(), "firefox:")
	assert.NotContains(t, buf.String(), "safari:")
}

func TestBrowsersCommand_Unknown(t *testing.T) {
	var buf bytes.Buffer
	err := newTestApp(&buf).Run([]string{"browser-steps", "browsers", "netscape"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown browser "netscape"`)
}

func TestStepsCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestApp(&buf).Run([]string{"browser-steps", "--no-ansi", "steps"}))
	assert.Contains(t, buf.String(), "I visit {string}\n")
	assert.Contains(t, buf.String(), "I wait for {float} seconds?\n")
	assert.Contains(t, buf.String(), "variable defaults")
}

func TestParseVars(t *testing.T) {
	vars := parseVars([]string{"USER=test", "URL=https://x?a=b", "EMPTY=", "invalid", "=nokey"})
	assert.Equal(t, map[string]string{
		"USER":  "test",
		"URL":   "https://x?a=b",
		"EMPTY": "",
	}, vars)
	assert.Empty(t, parseVars(nil))
}

func TestResolveOutputDir(t *testing.T) {
	assert.Equal(t, "my-reports", resolveOutputDir("./my-reports/"))

	dir := resolveOutputDir("")
	parts := strings.Split(filepath.ToSlash(dir), "/")
	require.Len(t, parts, 2)
	assert.Equal(t, "reports", parts[0])
	_, err := time.Parse("2006-01-02_15-04-05", parts[1])
	assert.NoError(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.5s"},
		{65 * time.Second, "1m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestPrintSummary(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	res := core.SuiteResult{
		Duration: 2 * time.Second,
		Scenarios: []core.ScenarioResult{
			{Name: "Passes", Status: core.StatusPassed, Steps: []core.StepResult{{Status: core.StatusPassed}}},
			{
				Name:   strings.Repeat("very long scenario name ", 3),
				Status: core.StatusFailed,
				Error:  "element not found",
				Steps:  []core.StepResult{{Status: core.StatusFailed}, {Status: core.StatusSkipped}},
			},
		},
	}
	for i := range res.Scenarios {
		res.Scenarios[i].ComputeSummary()
	}
	res.ComputeSummary()

	var buf bytes.Buffer
	printSummary(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "1 steps passing (2.0s)")
	assert.Contains(t, out, "1 steps failing")
	assert.Contains(t, out, "1 steps skipped")
	assert.Contains(t, out, "✓ PASS")
	assert.Contains(t, out, "✗ FAIL")
	assert.Contains(t, out, "very long scenario name very long scena...")
	assert.Contains(t, out, "╰─ element not found")
	assert.Contains(t, out, "1/2")
}
