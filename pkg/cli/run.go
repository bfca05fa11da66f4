package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/core"
	"github.com/devicelab-dev/browser-steps/pkg/driver"
	"github.com/devicelab-dev/browser-steps/pkg/logger"
	"github.com/devicelab-dev/browser-steps/pkg/report"
	"github.com/devicelab-dev/browser-steps/pkg/suite"
)

// launcher overrides the session factory; nil uses driver.Launch.
var launcher driver.Launcher

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run feature files",
	ArgsUsage: "[feature-file-or-folder]...",
	Description: `Run Gherkin feature files. Without arguments, the features listed in
browser-steps.yaml are run (default: ./features).

Reports are written to the output directory:
  - Default: ./reports/<timestamp>/
  - With --output: <output>/

Examples:
  browser-steps run features/
  browser-steps run --browser firefox --tags "@smoke and not @slow" features/
  browser-steps run --env-file .env.staging -v BASE_URL=https://staging.example.com
  browser-steps run --driver playwright --headless=false features/checkout.feature`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to browser-steps.yaml (default: ./browser-steps.yaml if present)",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "Load environment variables from these files (default: ./.env if present)",
		},
		&cli.StringFlag{
			Name:    "browser",
			Aliases: []string{"b"},
			Usage:   "Capability shorthand (chrome, firefox, edge, ie11, safari, puppeteer)",
		},
		&cli.StringFlag{
			Name:    "driver",
			Aliases: []string{"d"},
			Usage:   "Session backend (auto, webdriver, playwright)",
		},
		&cli.StringFlag{
			Name:    "tags",
			Aliases: []string{"t"},
			Usage:   "Tag expression, e.g. \"@smoke and not (@wip or @slow)\"; godog's \"@smoke && ~@wip\" also works",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "godog formatter (pretty, progress, cucumber, junit, events)",
		},
		&cli.StringSliceFlag{
			Name:    "var",
			Aliases: []string{"v"},
			Usage:   "Variables for the scenarios (KEY=VALUE), layered over the environment",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report directory (default: ./reports/<timestamp>)",
		},
		&cli.BoolFlag{
			Name:  "keep-open",
			Usage: "Keep browser sessions open until the suite ends",
		},
		&cli.BoolFlag{
			Name:  "no-strict",
			Usage: "Do not fail on undefined or pending steps",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"c"},
			Usage:   "Number of scenarios to run in parallel",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run local browsers headless (default: true)",
		},
	},
	Action: runFeatures,
}

func runFeatures(c *cli.Context) error {
	if err := config.LoadDotEnv(c.StringSlice("env-file")...); err != nil {
		return err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	cfg.ApplyDefaults(env)

	outputDir := resolveOutputDir(cfg.Output)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if c.String("log-file") == "" {
		logPath := filepath.Join(outputDir, "browser-steps.log")
		var extra []io.Writer
		if c.Bool("verbose") {
			extra = append(extra, c.App.ErrWriter)
		}
		if err := logger.Init(logPath, extra...); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "Warning: Failed to initialize logger: %v\n", err)
		}
	}

	logger.Info("=== Test execution started ===")
	logger.Info("Output directory: %s", outputDir)
	logger.Info("Features: %s", strings.Join(cfg.Features, ", "))
	logger.Info("Browser: %s, driver: %s", cfg.Browser, cfg.Driver)

	opts, err := suite.FromConfig(cfg, env)
	if err != nil {
		return err
	}
	opts.Output = c.App.Writer
	opts.NoColors = color.NoColor
	opts.Recorder = report.NewRecorder("browser-steps")
	if launcher != nil {
		opts.World.Launch = launcher
	}

	status, runErr := suite.Run(opts)
	if errors.Is(runErr, core.ErrInvalidConfig) {
		return runErr
	}

	result := opts.Recorder.Result()
	logger.Info("=== Test execution finished (status %d, run %s) ===", status, result.RunID)
	if err := report.Write(outputDir, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printSummary(c.App.Writer, result)
	fmt.Fprintf(c.App.Writer, "\n  Report: %s\n\n", filepath.Join(outputDir, report.HTMLFile))

	if runErr != nil {
		return fmt.Errorf("%w (features: %s, tags: %q)", runErr, strings.Join(cfg.Features, ", "), cfg.Tags)
	}
	if status != 0 {
		if result.FailedScenarios > 0 {
			return fmt.Errorf("%d of %d scenarios failed", result.FailedScenarios, result.TotalScenarios)
		}
		return fmt.Errorf("test run failed (status %d)", status)
	}
	return nil
}

// loadConfig reads the named config file, or browser-steps.yaml from the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.NArg() > 0 {
		cfg.Features = c.Args().Slice()
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
		cfg.Capabilities = nil
	}
	if c.IsSet("driver") {
		cfg.Driver = c.String("driver")
	}
	if c.IsSet("tags") {
		cfg.Tags = c.String("tags")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("keep-open") {
		cfg.KeepOpen = c.Bool("keep-open")
	}
	if c.IsSet("no-strict") {
		strict := !c.Bool("no-strict")
		cfg.Strict = &strict
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("headless") {
		headless := c.Bool("headless")
		cfg.Headless = &headless
	}
	if vars := parseVars(c.StringSlice("var")); len(vars) > 0 {
		if cfg.Vars == nil {
			cfg.Vars = make(map[string]interface{}, len(vars))
		}
		for k, v := range vars {
			cfg.Vars[k] = v
		}
	}
}

// resolveOutputDir returns output, or ./reports/<timestamp> when empty.
func resolveOutputDir(output string) string {
	if output != "" {
		return filepath.Clean(output)
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("reports", timestamp)
}

// parseVars parses KEY=VALUE pairs; entries without "=" are ignored.
func parseVars(pairs []string) map[string]string {
	result := make(map[string]string)
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) == 2 && parts[0] != "" {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
