package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
	"github.com/devicelab-dev/browser-steps/pkg/driver/mock"
	"github.com/devicelab-dev/browser-steps/pkg/report"
	"github.com/devicelab-dev/browser-steps/pkg/world"
)

func testOptions(b *mock.Browser, path string) Options {
	return Options{
		Name:        "test",
		Paths:       []string{path},
		Format:      "progress",
		Output:      io.Discard,
		NoColors:    true,
		Strict:      true,
		Concurrency: 1,
		World: world.Options{
			Browser: "puppeteer",
			Vars:    map[string]interface{}{},
			Launch:  b.Launcher(),
		},
		Artifacts: core.DefaultArtifactConfig(),
		Recorder:  report.NewRecorder("test"),
	}
}

func TestRun_Passing(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/pass.feature")

	status, err := Run(opts)
	require.NoError(t, err)
	require.Equal(t, 0, status)

	res := opts.Recorder.Result()
	require.Len(t, res.Scenarios, 2)
	assert.True(t, res.Success())

	first := res.Scenarios[0]
	assert.Equal(t, "Visit and check the URL", first.Name)
	assert.Contains(t, first.Feature, "pass.feature")
	assert.Equal(t, "puppeteer", first.Browser)
	require.Len(t, first.Steps, 2)
	assert.Equal(t, "Given", first.Steps[0].Keyword)
	assert.Equal(t, `I visit "https://example.com/"`, first.Steps[0].Text)
	assert.Equal(t, "Then", first.Steps[1].Keyword)
	for _, st := range first.Steps {
		assert.Equal(t, core.StatusPassed, st.Status)
		assert.Empty(t, st.Attachments)
	}

	second := res.Scenarios[1]
	assert.Equal(t, []string{"@variables"}, second.Tags)
	assert.Equal(t, core.StatusPassed, second.Status)

	// only the first scenario opened a session
	assert.Len(t, b.Launches(), 1)
	assert.Equal(t, 1, b.Closed())
	assert.Equal(t, 0, b.Screenshots())
	assert.Empty(t, world.Instances())
}

func TestRun_FailureScreenshot(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/fail.feature")

	status, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, status)

	res := opts.Recorder.Result()
	require.Len(t, res.Scenarios, 1)
	sc := res.Scenarios[0]
	assert.Equal(t, core.StatusFailed, sc.Status)
	assert.Contains(t, sc.Error, `Expected URL to be "https://example.org/", but got "https://example.com/"`)

	require.Len(t, sc.Steps, 3)
	assert.Equal(t, core.StatusPassed, sc.Steps[0].Status)

	failed := sc.Steps[1]
	assert.Equal(t, core.StatusFailed, failed.Status)
	assert.Equal(t, core.ErrCategoryAssertion, failed.Category)
	require.Len(t, failed.Attachments, 1)
	assert.Equal(t, core.AttachmentScreenshot, failed.Attachments[0].Name)
	assert.Equal(t, mock.PNG, failed.Attachments[0].Body)

	assert.Equal(t, core.StatusSkipped, sc.Steps[2].Status)
	assert.Equal(t, "I wait for 0 seconds", sc.Steps[2].Text)
	assert.Equal(t, 2, sc.Steps[2].Index)
	assert.Equal(t, 3, sc.TotalSteps)
	assert.Equal(t, 1, sc.SkippedSteps)
	assert.Equal(t, 1, b.Screenshots())
	assert.Equal(t, 1, b.Closed())
}

func TestRun_NoScreenshotWhenDisabled(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/fail.feature")
	opts.Artifacts.Screenshot = false

	status, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Equal(t, 0, b.Screenshots())
}

func TestRun_KeepOpen(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/keepopen.feature")
	opts.KeepOpen = true
	opts.Steps = func(sc *godog.ScenarioContext) {
		sc.Step(`^(\d+) worlds? should be registered$`, func(n int) error {
			if got := len(world.Instances()); got != n {
				return fmt.Errorf("expected %d registered worlds, got %d", n, got)
			}
			return nil
		})
	}

	status, err := Run(opts)
	require.NoError(t, err)
	require.Equal(t, 0, status)

	// both sessions were closed by the suite teardown
	assert.Equal(t, 2, b.Closed())
	assert.Empty(t, world.Instances())
}

func TestRun_CloseErrorFailsScenario(t *testing.T) {
	b := mock.New(mock.Config{Errors: map[string]error{"Close": errors.New("boom")}})
	opts := testOptions(b, "testdata/pass.feature")
	opts.Tags = "not @variables"

	status, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, status)

	res := opts.Recorder.Result()
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, core.StatusFailed, res.Scenarios[0].Status)
	assert.Contains(t, res.Scenarios[0].Error, "boom")
}

func TestRun_TagExpressions(t *testing.T) {
	tests := []struct {
		tags string
		want []string
	}{
		{"@variables", []string{"Variables only"}},
		{"not @variables", []string{"Visit and check the URL"}},
		{"~@variables", []string{"Visit and check the URL"}},
		{"@variables or not @variables", []string{"Visit and check the URL", "Variables only"}},
		{"not (@variables or @smoke)", []string{"Visit and check the URL"}},
	}
	for _, tt := range tests {
		t.Run(tt.tags, func(t *testing.T) {
			b := mock.New(mock.Config{})
			opts := testOptions(b, "testdata/pass.feature")
			opts.Tags = tt.tags

			status, err := Run(opts)
			require.NoError(t, err)
			require.Equal(t, 0, status)

			var names []string
			for _, sc := range opts.Recorder.Result().Scenarios {
				names = append(names, sc.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRun_NoScenariosMatched(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/pass.feature")
	opts.Tags = "@variables and @smoke"

	status, err := Run(opts)
	assert.ErrorIs(t, err, ErrNoScenarios)
	assert.Equal(t, 1, status)
	assert.Empty(t, opts.Recorder.Result().Scenarios)
	assert.Empty(t, b.Launches())
}

func TestRun_InvalidTags(t *testing.T) {
	b := mock.New(mock.Config{})
	opts := testOptions(b, "testdata/pass.feature")
	opts.Tags = "@smoke and"

	status, err := Run(opts)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Equal(t, 2, status)
	assert.Empty(t, opts.Recorder.Result().Scenarios)
}

func TestFromConfig(t *testing.T) {
	t.Setenv("BROWSER_STEPS_SUITE_TEST", "from-env")

	cfg := &config.Config{
		Driver: "playwright",
		Tags:   "@smoke",
		Vars:   map[string]interface{}{"user": map[string]interface{}{"name": "ada"}},
	}
	cfg.ApplyDefaults(config.Env{Browser: "chrome"})

	opts, err := FromConfig(cfg, config.Env{Browser: "chrome"})
	require.NoError(t, err)

	assert.Equal(t, []string{"features"}, opts.Paths)
	assert.Equal(t, "@smoke", opts.Tags)
	assert.Equal(t, config.DefaultFormat, opts.Format)
	assert.True(t, opts.Strict)
	assert.Equal(t, 1, opts.Concurrency)
	assert.Equal(t, "chrome", opts.World.Browser)
	assert.Equal(t, driver.KindPlaywright, opts.World.Driver.Kind)
	assert.True(t, opts.World.Driver.Headless)
	assert.Equal(t, config.DefaultNavigationTimeout, opts.World.Driver.NavigationTimeout)
	assert.Equal(t, config.DefaultClickTimeout, opts.World.ClickTimeout)
	assert.Equal(t, core.DefaultArtifactConfig(), opts.Artifacts)

	assert.Equal(t, "from-env", opts.World.Vars["BROWSER_STEPS_SUITE_TEST"])
	assert.Equal(t, map[string]interface{}{"name": "ada"}, opts.World.Vars["user"])
}

func TestFromConfig_NoVarsUsesEnvironment(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults(config.Env{})

	opts, err := FromConfig(cfg, config.Env{})
	require.NoError(t, err)
	assert.Nil(t, opts.World.Vars)
}

func TestFromConfig_InvalidTags(t *testing.T) {
	_, err := FromConfig(&config.Config{Tags: "not"}, config.Env{})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestFromConfig_InvalidDriver(t *testing.T) {
	_, err := FromConfig(&config.Config{Driver: "cypress"}, config.Env{})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestStepStatus(t *testing.T) {
	tests := []struct {
		status godog.StepResultStatus
		err    error
		want   core.StepStatus
	}{
		{godog.StepPassed, nil, core.StatusPassed},
		{godog.StepFailed, core.ErrTextMismatch, core.StatusFailed},
		{godog.StepFailed, core.ErrNoBrowser, core.StatusErrored},
		{godog.StepFailed, nil, core.StatusFailed},
		{godog.StepSkipped, nil, core.StatusSkipped},
		{godog.StepUndefined, nil, core.StatusUndefined},
		{godog.StepPending, nil, core.StatusPending},
		{godog.StepResultStatus(99), errors.New("ambiguous"), core.StatusErrored},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stepStatus(tt.status, tt.err))
	}
}

func TestKeyword(t *testing.T) {
	assert.Equal(t, "Given", keyword(messages.PickleStepType_CONTEXT))
	assert.Equal(t, "When", keyword(messages.PickleStepType_ACTION))
	assert.Equal(t, "Then", keyword(messages.PickleStepType_OUTCOME))
	assert.Equal(t, "*", keyword(messages.PickleStepType_UNKNOWN))
}

func TestBrowserLabel(t *testing.T) {
	assert.Equal(t, "firefox", browserLabel(world.Options{
		Browser:      "chrome",
		Capabilities: core.Capabilities{"browserName": "Firefox"},
	}))
	assert.Equal(t, "chrome", browserLabel(world.Options{Browser: "chrome"}))
	assert.Equal(t, "puppeteer", browserLabel(world.Options{Env: config.Env{Browser: "puppeteer"}}))
}

func TestWorldInContext(t *testing.T) {
	b := mock.New(mock.Config{})
	run := &scenarioRun{opts: testOptions(b, ""), starts: map[string]time.Time{}}

	ctx, err := run.before(context.Background(), &godog.Scenario{Id: "s1", Name: "direct"})
	require.NoError(t, err)

	w, err := world.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, run.world, w)

	_, err = run.after(ctx, &godog.Scenario{Id: "s1", Name: "direct"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, world.Instances(), w)
}
