package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file (default: <dir>/report.html)
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: suite name, then "Test Report")
}

// GenerateHTML renders result as a standalone HTML page in dir.
// Attachment paths are resolved relative to dir.
func GenerateHTML(dir string, result core.SuiteResult, cfg HTMLConfig) error {
	if cfg.Title == "" {
		cfg.Title = result.Name
	}
	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(dir, HTMLFile)
	}

	html, err := renderHTML(buildHTMLData(dir, result, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	RunID         string
	Summary       SummaryHTMLData
	TotalDuration string
	PassRate      float64
	Scenarios     []ScenarioHTMLData
}

// SummaryHTMLData holds scenario counts.
type SummaryHTMLData struct {
	Total, Passed, Failed, Skipped int
}

// ScenarioHTMLData contains scenario data formatted for HTML.
type ScenarioHTMLData struct {
	core.ScenarioResult
	StatusClass string
	DurationStr string
	DurationPct float64
	Steps       []StepHTMLData
}

// StepHTMLData contains step data formatted for HTML.
type StepHTMLData struct {
	core.StepResult
	StatusClass string
	DurationStr string
	Screenshots []string // data URIs or paths relative to the report
}

func statusClass(s core.StepStatus) string {
	switch s {
	case core.StatusPassed:
		return "passed"
	case core.StatusFailed, core.StatusErrored, core.StatusUndefined:
		return "failed"
	case core.StatusSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

func buildHTMLData(dir string, result core.SuiteResult, cfg HTMLConfig) HTMLData {
	result.ComputeSummary()

	var maxDuration time.Duration
	for _, sc := range result.Scenarios {
		if sc.Duration > maxDuration {
			maxDuration = sc.Duration
		}
	}

	scenarios := make([]ScenarioHTMLData, len(result.Scenarios))
	for i, sc := range result.Scenarios {
		steps := make([]StepHTMLData, len(sc.Steps))
		for j, st := range sc.Steps {
			step := StepHTMLData{
				StepResult:  st,
				StatusClass: statusClass(st.Status),
				DurationStr: formatDuration(st.Duration),
			}
			for _, a := range st.Attachments {
				if a.ContentType != core.ContentTypePNG || a.Path == "" {
					continue
				}
				src := a.Path
				if cfg.EmbedAssets {
					src = loadAsBase64(filepath.Join(dir, filepath.FromSlash(a.Path)))
				}
				if src != "" {
					step.Screenshots = append(step.Screenshots, src)
				}
			}
			steps[j] = step
		}

		var pct float64
		if maxDuration > 0 {
			pct = float64(sc.Duration) / float64(maxDuration) * 100
		}
		scenarios[i] = ScenarioHTMLData{
			ScenarioResult: sc,
			StatusClass:    statusClass(sc.Status),
			DurationStr:    formatDuration(sc.Duration),
			DurationPct:    pct,
			Steps:          steps,
		}
	}

	var passRate float64
	if result.TotalScenarios > 0 {
		passRate = float64(result.PassedScenarios) / float64(result.TotalScenarios) * 100
	}

	return HTMLData{
		Title:       cfg.Title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		RunID:       result.RunID,
		Summary: SummaryHTMLData{
			Total:   result.TotalScenarios,
			Passed:  result.PassedScenarios,
			Failed:  result.FailedScenarios,
			Skipped: result.SkippedScenarios,
		},
		TotalDuration: formatDuration(result.Duration),
		PassRate:      passRate,
		Scenarios:     scenarios,
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func loadAsBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-secondary: rgb(75, 85, 99);
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --passed-bg: rgba(34, 197, 94, 0.1);
            --failed: #ef4444;
            --failed-bg: rgba(239, 68, 68, 0.08);
            --skipped: #eab308;
            --skipped-bg: rgba(234, 179, 8, 0.1);
            --pending: #6b7280;
            --accent: #06b6d4;
        }

        * { box-sizing: border-box; margin: 0; padding: 0; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }
        .header-title-main { font-size: 18px; font-weight: 600; }
        .header-title-sub { color: var(--text-muted); font-size: 13px; margin-left: 12px; }

        .summary { display: flex; gap: 20px; margin-top: 12px; font-size: 14px; color: var(--text-secondary); }
        .summary .passed { color: var(--passed); }
        .summary .failed { color: var(--failed); }
        .summary .skipped { color: var(--skipped); }

        .scenarios { padding: 16px 24px; }

        details.scenario {
            border: 1px solid var(--border-color);
            border-left-width: 4px;
            border-radius: 6px;
            margin-bottom: 10px;
        }
        details.scenario.passed { border-left-color: var(--passed); }
        details.scenario.failed { border-left-color: var(--failed); background: var(--failed-bg); }
        details.scenario.skipped { border-left-color: var(--skipped); }
        details.scenario.pending { border-left-color: var(--pending); }

        summary {
            cursor: pointer;
            padding: 10px 14px;
            display: flex;
            align-items: center;
            gap: 12px;
        }
        .scenario-name { font-weight: 600; flex: 1; }
        .scenario-meta { color: var(--text-muted); font-size: 13px; }
        .duration-bar { width: 80px; height: 4px; background: var(--border-color); border-radius: 2px; }
        .duration-fill { height: 100%; background: var(--accent); border-radius: 2px; }

        .steps { list-style: none; padding: 0 14px 12px 14px; }
        .step { padding: 6px 0; border-top: 1px solid var(--border-color); font-size: 14px; }
        .step .keyword { font-weight: 600; color: var(--text-secondary); }
        .step .duration { float: right; color: var(--text-muted); font-size: 12px; }
        .step.passed::before { content: "\2713 "; color: var(--passed); }
        .step.failed::before { content: "\2717 "; color: var(--failed); }
        .step.skipped::before { content: "- "; color: var(--skipped); }
        .step.pending::before { content: "? "; color: var(--pending); }
        .error {
            margin-top: 6px;
            padding: 8px;
            background: var(--failed-bg);
            color: var(--failed);
            font-family: ui-monospace, SFMono-Regular, Menlo, monospace;
            font-size: 12px;
            white-space: pre-wrap;
        }
        .screenshot img { margin-top: 8px; max-width: 480px; border: 1px solid var(--border-color); }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <span class="header-title-main">{{.Title}}</span>
            <span class="header-title-sub">{{.GeneratedAt}}{{if .RunID}} &middot; {{.RunID}}{{end}}</span>
        </div>
        <div class="summary">
            <span>{{.Summary.Total}} scenarios</span>
            <span class="passed">{{.Summary.Passed}} passed</span>
            <span class="failed">{{.Summary.Failed}} failed</span>
            {{if .Summary.Skipped}}<span class="skipped">{{.Summary.Skipped}} skipped</span>{{end}}
            <span>{{printf "%.0f" .PassRate}}% pass rate</span>
            <span>{{.TotalDuration}}</span>
        </div>
    </div>

    <div class="scenarios">
        {{range $si, $sc := .Scenarios}}
        <details class="scenario {{$sc.StatusClass}}" id="scenario-{{$si}}"{{if eq $sc.StatusClass "failed"}} open{{end}}>
            <summary>
                <span class="scenario-name">{{$sc.Name}}</span>
                <span class="scenario-meta">{{$sc.Feature}}{{if $sc.Browser}} &middot; {{$sc.Browser}}{{end}}</span>
                <span class="scenario-meta">{{len $sc.Steps}} steps</span>
                <div class="duration-bar"><div class="duration-fill" style="width: {{printf "%.1f" $sc.DurationPct}}%"></div></div>
                <span class="scenario-meta">{{$sc.DurationStr}}</span>
            </summary>
            <ul class="steps">
                {{range $sc.Steps}}
                <li class="step {{.StatusClass}}">
                    <span class="keyword">{{.Keyword}}</span> {{.Text}}
                    <span class="duration">{{.DurationStr}}</span>
                    {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
                    {{range .Screenshots}}<div class="screenshot"><a href="{{safeURL .}}" target="_blank"><img src="{{safeURL .}}" alt="screenshot"></a></div>{{end}}
                </li>
                {{end}}
            </ul>
            {{if and $sc.Error (not $sc.Steps)}}<div class="error">{{$sc.Error}}</div>{{end}}
        </details>
        {{end}}
    </div>
</body>
</html>
`
