// Package suite runs feature files through godog with a World per scenario.
package suite

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
	"github.com/devicelab-dev/browser-steps/pkg/report"
	"github.com/devicelab-dev/browser-steps/pkg/steps"
	"github.com/devicelab-dev/browser-steps/pkg/world"
)

// Options configures a suite run.
type Options struct {
	Name        string
	Paths       []string
	Tags        string
	Format      string
	Output      io.Writer // Formatter output. Default: os.Stdout
	NoColors    bool
	Strict      bool
	Concurrency int
	KeepOpen    bool // Leave sessions open until the suite ends
	TestingT    *testing.T

	// World is the template for each scenario's World
	World world.Options
	// Artifacts decides when failing steps get a screenshot
	Artifacts core.ArtifactConfig
	// Recorder receives scenario and step results. Optional.
	Recorder *report.Recorder
	// Steps registers extra step definitions after the built-in ones. Optional.
	Steps func(sc *godog.ScenarioContext)
}

// FromConfig builds Options from a workspace configuration with defaults applied.
func FromConfig(cfg *config.Config, env config.Env) (Options, error) {
	kind, err := driver.ParseKind(cfg.Driver)
	if err != nil {
		return Options{}, err
	}

	var seed map[string]interface{}
	if len(cfg.Vars) > 0 {
		seed = make(map[string]interface{})
		for k, v := range config.Environ() {
			seed[k] = v
		}
		for k, v := range cfg.Vars {
			seed[k] = v
		}
	}

	if _, err := TagFilter(cfg.Tags); err != nil {
		return Options{}, err
	}

	opts := Options{
		Name:        "browser-steps",
		Paths:       cfg.Features,
		Tags:        cfg.Tags,
		Format:      cfg.Format,
		Strict:      cfg.IsStrict(),
		Concurrency: cfg.Concurrency,
		KeepOpen:    cfg.KeepOpen,
		World: world.Options{
			Browser:      cfg.Browser,
			Capabilities: cfg.Capabilities,
			Shorthands:   cfg.Shorthands,
			Vars:         seed,
			Env:          env,
			Driver: driver.Options{
				Kind:              kind,
				Headless:          cfg.IsHeadless(),
				NavigationTimeout: cfg.Timeouts.Navigation,
				DriverDir:         config.GetDriversDir("playwright"),
			},
			ClickTimeout: cfg.Timeouts.Click,
		},
		Artifacts: core.DefaultArtifactConfig(),
	}
	if cfg.Artifacts != nil {
		opts.Artifacts = *cfg.Artifacts
	}
	return opts, nil
}

// ErrNoScenarios is returned by Run when the paths and tags select no scenario.
var ErrNoScenarios = errors.New("no scenarios matched")

// New returns the godog suite for opts. Tags may be a Cucumber tag
// expression; see TagFilter.
func New(opts Options) (godog.TestSuite, error) {
	s, _, err := newSuite(opts)
	return s, err
}

// Run runs the suite and returns godog's exit status. A run that selects no
// scenario fails with ErrNoScenarios.
func Run(opts Options) (int, error) {
	s, started, err := newSuite(opts)
	if err != nil {
		return exitOptionError, err
	}
	status := s.Run()
	if started.Load() == 0 {
		logger.Error("No scenarios matched paths %v and tags %q", opts.Paths, opts.Tags)
		if status == 0 {
			status = exitFailure
		}
		return status, ErrNoScenarios
	}
	return status, nil
}

const (
	exitFailure     = 1
	exitOptionError = 2
)

func newSuite(opts Options) (godog.TestSuite, *atomic.Int64, error) {
	tags, err := TagFilter(opts.Tags)
	if err != nil {
		return godog.TestSuite{}, nil, err
	}
	if tags != opts.Tags {
		logger.Debug("Tag expression %q filters as %q", opts.Tags, tags)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if !opts.NoColors {
		output = colors.Colored(output)
	}

	started := new(atomic.Int64)
	return godog.TestSuite{
		Name: opts.Name,
		TestSuiteInitializer: func(ctx *godog.TestSuiteContext) {
			initializeSuite(ctx)
		},
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				started.Add(1)
				return ctx, nil
			})
			initializeScenario(sc, opts)
		},
		Options: &godog.Options{
			Format:      opts.Format,
			Paths:       opts.Paths,
			Tags:        tags,
			Output:      output,
			NoColors:    opts.NoColors,
			Strict:      opts.Strict,
			Concurrency: opts.Concurrency,
			TestingT:    opts.TestingT,
		},
	}, started, nil
}

func initializeSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		logger.Info("---- BeforeAll ----")
	})
	ctx.AfterSuite(func() {
		logger.Info("---- AfterAll ----")
		if err := world.CloseAll(); err != nil {
			logger.Error("Failed to close sessions: %v", err)
		}
	})
}

// scenarioRun is the state of one scenario; godog calls the scenario
// initializer once per scenario.
type scenarioRun struct {
	opts       Options
	scenarioID string
	world      *world.World

	mu     sync.Mutex
	starts map[string]time.Time
}

func initializeScenario(sc *godog.ScenarioContext, opts Options) {
	run := &scenarioRun{opts: opts, starts: make(map[string]time.Time)}

	sc.Before(run.before)
	sc.After(run.after)
	sc.StepContext().Before(run.beforeStep)
	sc.StepContext().After(run.afterStep)

	steps.Register(sc)
	if opts.Steps != nil {
		opts.Steps(sc)
	}
}

func (r *scenarioRun) before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	logger.Info("---- Before: %s (%s) ----", sc.Name, sc.Uri)

	w, err := world.New(r.opts.World)
	if err != nil {
		return ctx, err
	}
	r.world = w
	r.scenarioID = sc.Id

	if r.opts.Recorder != nil {
		r.opts.Recorder.StartScenario(sc.Id, sc.Name, sc.Uri, tagNames(sc.Tags), browserLabel(r.opts.World))
	}
	return world.NewContext(ctx, w), nil
}

func (r *scenarioRun) after(ctx context.Context, sc *godog.Scenario, _ error) (context.Context, error) {
	logger.Info("---- After: %s ----", sc.Name)

	var closeErr error
	if r.world != nil && !r.opts.KeepOpen {
		closeErr = r.world.Close()
		if closeErr != nil {
			logger.Error("Failed to close session for %q: %v", sc.Name, closeErr)
		}
	}
	if r.opts.Recorder != nil {
		r.opts.Recorder.EndScenario(sc.Id, closeErr)
	}
	return ctx, closeErr
}

func (r *scenarioRun) beforeStep(ctx context.Context, st *godog.Step) (context.Context, error) {
	r.mu.Lock()
	r.starts[st.Id] = time.Now()
	r.mu.Unlock()
	return ctx, nil
}

func (r *scenarioRun) afterStep(ctx context.Context, st *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
	r.mu.Lock()
	start, ok := r.starts[st.Id]
	delete(r.starts, st.Id)
	r.mu.Unlock()

	result := core.StepResult{
		Keyword: keyword(st.Type),
		Text:    st.Text,
		Status:  stepStatus(status, err),
	}
	if ok {
		result.StartTime = start
		result.Duration = time.Since(start)
	}
	logger.WithFields(map[string]interface{}{
		"scenario": r.scenarioID,
		"step":     st.Text,
		"status":   result.Status.String(),
		"duration": result.Duration,
	}).Debug("step finished")
	if err != nil {
		result.Error = err.Error()
		result.Category = core.CategoryOf(err)
		logger.Warn("Step failed: %s: %v", st.Text, err)
	}

	if r.world != nil && r.world.IsOpen() && r.opts.Artifacts.ShouldCapture(result.Status) {
		if png, shotErr := r.world.Browser().Screenshot(); shotErr != nil {
			logger.Warn("Failed to capture screenshot: %v", shotErr)
		} else {
			result.Attachments = append(result.Attachments, core.NewScreenshotAttachment("", png))
		}
	}

	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordStep(r.scenarioID, result)
	}
	return ctx, nil
}

// stepStatus maps godog's step status onto the report model.
func stepStatus(status godog.StepResultStatus, err error) core.StepStatus {
	switch status {
	case godog.StepPassed:
		return core.StatusPassed
	case godog.StepFailed:
		if err == nil {
			return core.StatusFailed
		}
		return core.StatusForError(err)
	case godog.StepSkipped:
		return core.StatusSkipped
	case godog.StepUndefined:
		return core.StatusUndefined
	case godog.StepPending:
		return core.StatusPending
	default:
		return core.StatusErrored
	}
}

// keyword approximates the Gherkin keyword from the pickle step type.
func keyword(t messages.PickleStepType) string {
	switch t {
	case messages.PickleStepType_CONTEXT:
		return "Given"
	case messages.PickleStepType_ACTION:
		return "When"
	case messages.PickleStepType_OUTCOME:
		return "Then"
	default:
		return "*"
	}
}

func tagNames(tags []*messages.PickleTag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func browserLabel(opts world.Options) string {
	if opts.Capabilities != nil {
		return opts.Capabilities.BrowserName()
	}
	if opts.Browser != "" {
		return opts.Browser
	}
	return opts.Env.Browser
}
