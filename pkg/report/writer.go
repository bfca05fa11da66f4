package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// File names inside a report directory.
const (
	JSONFile  = "report.json"
	HTMLFile  = "report.html"
	AssetsDir = "assets"
)

// Write saves result under dir: attachment bodies go to
// assets/<scenario>/<step>.<ext>, then report.json and report.html are written.
// Attachment paths in the written JSON are relative to dir.
func Write(dir string, result core.SuiteResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	result.Scenarios = append([]core.ScenarioResult(nil), result.Scenarios...)
	for i := range result.Scenarios {
		sc := &result.Scenarios[i]
		sc.Steps = append([]core.StepResult(nil), sc.Steps...)
		for j := range sc.Steps {
			step := &sc.Steps[j]
			step.Attachments = append([]core.Attachment(nil), step.Attachments...)
			for k := range step.Attachments {
				a := &step.Attachments[k]
				if a.Body == nil {
					continue
				}
				rel := assetPath(i, sc.Name, step.Index, k, a.ContentType)
				if err := writeAsset(dir, rel, a.Body); err != nil {
					return err
				}
				a.Path = filepath.ToSlash(rel)
			}
		}
	}

	if err := atomicWriteJSON(filepath.Join(dir, JSONFile), result); err != nil {
		return fmt.Errorf("write %s: %w", JSONFile, err)
	}
	if err := GenerateHTML(dir, result, HTMLConfig{}); err != nil {
		return fmt.Errorf("write %s: %w", HTMLFile, err)
	}
	return nil
}

// Read loads a report.json written by Write.
func Read(dir string) (core.SuiteResult, error) {
	var result core.SuiteResult
	data, err := os.ReadFile(filepath.Join(dir, JSONFile))
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("parse %s: %w", JSONFile, err)
	}
	return result, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// slug turns a scenario name into a directory-safe token.
func slug(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	return s
}

func assetPath(scenario int, name string, step, attachment int, contentType string) string {
	dir := fmt.Sprintf("scenario-%03d", scenario+1)
	if s := slug(name); s != "" {
		dir += "-" + s
	}
	file := fmt.Sprintf("step-%03d", step+1)
	if attachment > 0 {
		file += fmt.Sprintf("-%d", attachment)
	}
	return filepath.Join(AssetsDir, dir, file+extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case core.ContentTypePNG:
		return ".png"
	case core.ContentTypeJSON:
		return ".json"
	case core.ContentTypeText:
		return ".txt"
	default:
		return ".bin"
	}
}

func writeAsset(dir, rel string, body []byte) error {
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write asset %s: %w", rel, err)
	}
	return nil
}

// atomicWriteJSON writes v to a temp file next to path and renames it into place,
// so readers never see a partial report.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
