// Package report collects scenario results while a suite runs and writes them to disk.
package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// Recorder builds a core.SuiteResult from scenario and step events.
// Scenarios may run concurrently; all methods are safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	now     func() time.Time
	result  core.SuiteResult
	running map[string]*scenario
	order   int

	// start sequence of each entry in result.Scenarios
	finished []int
}

type scenario struct {
	seq    int
	result core.ScenarioResult
}

// NewRecorder starts a new run named name.
func NewRecorder(name string) *Recorder {
	r := &Recorder{
		now:     time.Now,
		running: make(map[string]*scenario),
	}
	r.result = core.SuiteResult{
		Name:      name,
		RunID:     uuid.NewString(),
		StartTime: r.now(),
	}
	return r
}

// RunID returns the unique ID of this run.
func (r *Recorder) RunID() string {
	return r.result.RunID
}

// StartScenario opens a scenario. id must be unique for the run.
func (r *Recorder) StartScenario(id, name, feature string, tags []string, browser string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running[id] = &scenario{
		seq: r.order,
		result: core.ScenarioResult{
			ID:        id,
			Name:      name,
			Feature:   feature,
			Tags:      append([]string(nil), tags...),
			Browser:   browser,
			Status:    core.StatusRunning,
			StartTime: r.now(),
		},
	}
	r.order++
}

// RecordStep appends step to the scenario's results and assigns its index.
// godog ends a failed scenario before it reports the remaining skipped steps,
// so steps for a finished scenario are appended to it and its summary is
// recomputed. Steps for unknown scenarios are dropped.
func (r *Recorder) RecordStep(scenarioID string, step core.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sc, ok := r.running[scenarioID]; ok {
		step.Index = len(sc.result.Steps)
		sc.result.Steps = append(sc.result.Steps, step)
		return
	}

	res := r.finishedScenario(scenarioID)
	if res == nil {
		return
	}
	step.Index = len(res.Steps)
	res.Steps = append(res.Steps, step)
	res.ComputeSummary()
}

// finishedScenario returns the ended scenario with the given ID, or nil.
func (r *Recorder) finishedScenario(scenarioID string) *core.ScenarioResult {
	for i := len(r.result.Scenarios) - 1; i >= 0; i-- {
		if r.result.Scenarios[i].ID == scenarioID {
			return &r.result.Scenarios[i]
		}
	}
	return nil
}

// EndScenario closes a scenario, aggregating its status from the recorded steps.
// A non-nil err that no step accounts for (a failing hook) fails the scenario.
func (r *Recorder) EndScenario(scenarioID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, ok := r.running[scenarioID]
	if !ok {
		return
	}
	delete(r.running, scenarioID)

	res := &sc.result
	res.Duration = r.now().Sub(res.StartTime)
	res.ComputeSummary()
	res.Status = res.AggregateStatus()
	if err != nil {
		res.Error = err.Error()
		if res.Status == core.StatusPassed || res.Status == core.StatusSkipped {
			res.Status = core.StatusFailed
		}
	} else if res.Status == core.StatusFailed {
		for _, step := range res.Steps {
			if step.Error != "" {
				res.Error = step.Error
				break
			}
		}
	}

	r.insert(sc)
}

// insert keeps finished scenarios in start order.
func (r *Recorder) insert(sc *scenario) {
	i := sort.SearchInts(r.finished, sc.seq)
	r.result.Scenarios = append(r.result.Scenarios, core.ScenarioResult{})
	copy(r.result.Scenarios[i+1:], r.result.Scenarios[i:])
	r.result.Scenarios[i] = sc.result
	r.finished = append(r.finished, 0)
	copy(r.finished[i+1:], r.finished[i:])
	r.finished[i] = sc.seq
}

// Result returns a snapshot of the run so far. Scenarios still running are not included.
func (r *Recorder) Result() core.SuiteResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.result
	out.Scenarios = make([]core.ScenarioResult, len(r.result.Scenarios))
	copy(out.Scenarios, r.result.Scenarios)
	out.Duration = r.now().Sub(out.StartTime)
	out.ComputeSummary()
	return out
}
