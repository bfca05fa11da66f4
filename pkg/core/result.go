package core

import (
	"time"
)

// StepResult captures the complete outcome of executing a single Gherkin step
type StepResult struct {
	// Identity
	Index   int    `json:"index"`   // 0-based position in scenario
	Keyword string `json:"keyword"` // Given, When, Then, And
	Text    string `json:"text"`    // Step text as written

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Error Details
	Error string `json:"error,omitempty"`

	// Debug Artifacts
	Attachments []Attachment `json:"attachments,omitempty"` // Screenshots on failure
}

// ScenarioResult captures the complete outcome of executing a scenario
type ScenarioResult struct {
	// Identity
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Feature string   `json:"feature"` // URI of the feature file
	Tags    []string `json:"tags,omitempty"`

	// Browser the scenario ran against (shorthand or browserName)
	Browser string `json:"browser,omitempty"`

	// Status (aggregated from steps)
	Status StepStatus `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps     int `json:"totalSteps"`
	PassedSteps    int `json:"passedSteps"`
	FailedSteps    int `json:"failedSteps"`
	SkippedSteps   int `json:"skippedSteps"`
	UndefinedSteps int `json:"undefinedSteps,omitempty"`

	// Error info (if scenario failed)
	Error string `json:"error,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (s *ScenarioResult) ComputeSummary() {
	s.TotalSteps = len(s.Steps)
	s.PassedSteps = 0
	s.FailedSteps = 0
	s.SkippedSteps = 0
	s.UndefinedSteps = 0

	for _, step := range s.Steps {
		switch step.Status {
		case StatusPassed:
			s.PassedSteps++
		case StatusFailed, StatusErrored:
			s.FailedSteps++
		case StatusSkipped:
			s.SkippedSteps++
		case StatusUndefined, StatusPending:
			s.UndefinedSteps++
		}
	}
}

// hasFailure checks if any step in the slice has failed or errored
func hasFailure(steps []StepResult) bool {
	for _, step := range steps {
		if step.Status == StatusFailed || step.Status == StatusErrored {
			return true
		}
	}
	return false
}

// AggregateStatus determines the scenario status from step results
// Rules:
// - Any failed/errored step → StatusFailed
// - Any undefined/pending step (strict runs) → StatusUndefined
// - No steps ran → StatusSkipped
// - Otherwise → StatusPassed
func (s *ScenarioResult) AggregateStatus() StepStatus {
	if hasFailure(s.Steps) {
		return StatusFailed
	}
	for _, step := range s.Steps {
		if step.Status == StatusUndefined || step.Status == StatusPending {
			return StatusUndefined
		}
	}
	if len(s.Steps) == 0 {
		return StatusSkipped
	}
	return StatusPassed
}

// SuiteResult captures the complete outcome of executing multiple scenarios
type SuiteResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Scenarios []ScenarioResult `json:"scenarios"`

	// Summary
	TotalScenarios   int `json:"totalScenarios"`
	PassedScenarios  int `json:"passedScenarios"`
	FailedScenarios  int `json:"failedScenarios"`
	SkippedScenarios int `json:"skippedScenarios"`
}

// ComputeSummary calculates scenario counts from the Scenarios slice
func (s *SuiteResult) ComputeSummary() {
	s.TotalScenarios = len(s.Scenarios)
	s.PassedScenarios = 0
	s.FailedScenarios = 0
	s.SkippedScenarios = 0

	for _, sc := range s.Scenarios {
		switch sc.Status {
		case StatusPassed:
			s.PassedScenarios++
		case StatusFailed, StatusErrored, StatusUndefined:
			s.FailedScenarios++
		case StatusSkipped:
			s.SkippedScenarios++
		}
	}
}

// Success returns true if all scenarios passed
func (s *SuiteResult) Success() bool {
	for _, sc := range s.Scenarios {
		if !sc.Status.IsSuccess() {
			return false
		}
	}
	return len(s.Scenarios) > 0
}
