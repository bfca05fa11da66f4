package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgCyan)
	grayColor = color.New(color.Faint)
	boldColor = color.New(color.Bold)
)

const tableWidth = 92

// printSummary prints the per-scenario results table.
func printSummary(w io.Writer, result core.SuiteResult) {
	totalSteps, passedSteps, failedSteps, skippedSteps := 0, 0, 0, 0
	for _, sc := range result.Scenarios {
		totalSteps += sc.TotalSteps
		passedSteps += sc.PassedSteps
		failedSteps += sc.FailedSteps
		skippedSteps += sc.SkippedSteps
	}

	fmt.Fprintln(w)
	if passedSteps > 0 {
		fmt.Fprintf(w, "  %s (%s)\n", passColor.Sprintf("%d steps passing", passedSteps), formatDuration(result.Duration))
	}
	if failedSteps > 0 {
		fmt.Fprintf(w, "  %s\n", failColor.Sprintf("%d steps failing", failedSteps))
	}
	if skippedSteps > 0 {
		fmt.Fprintf(w, "  %s\n", skipColor.Sprintf("%d steps skipped", skippedSteps))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("═", tableWidth))
	fmt.Fprintf(w, "  %-42s %6s %7s %6s %6s %6s %10s\n", "Scenario", "Status", "Steps", "Pass", "Fail", "Skip", "Duration")
	fmt.Fprintln(w, strings.Repeat("─", tableWidth))

	for _, sc := range result.Scenarios {
		name := sc.Name
		if len(name) > 42 {
			name = name[:39] + "..."
		}
		fmt.Fprintf(w, "  %-42s %s %7d %6d %6d %6d %10s\n",
			name, statusLabel(sc.Status),
			sc.TotalSteps, sc.PassedSteps, sc.FailedSteps, sc.SkippedSteps,
			formatDuration(sc.Duration))
		if sc.Error != "" && !sc.Status.IsSuccess() {
			fmt.Fprintf(w, "      %s %s\n", grayColor.Sprint("╰─"), sc.Error)
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", tableWidth))
	statusColor := passColor
	if result.FailedScenarios > 0 {
		statusColor = failColor
	}
	fmt.Fprintf(w, "  %s %s %7d %6d %6d %6d %10s\n",
		boldColor.Sprintf("%-42s", "TOTAL"),
		statusColor.Sprintf("%6s", fmt.Sprintf("%d/%d", result.PassedScenarios, result.TotalScenarios)),
		totalSteps, passedSteps, failedSteps, skippedSteps,
		formatDuration(result.Duration))
	fmt.Fprintln(w, strings.Repeat("═", tableWidth))
}

func statusLabel(s core.StepStatus) string {
	switch s {
	case core.StatusPassed:
		return passColor.Sprintf("%6s", "✓ PASS")
	case core.StatusSkipped:
		return skipColor.Sprintf("%6s", "- SKIP")
	default:
		return failColor.Sprintf("%6s", "✗ FAIL")
	}
}

// formatDuration formats a duration for the summary table.
// Shows milliseconds below one second, seconds otherwise.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
