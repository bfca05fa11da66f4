// Package cli provides the command-line interface for browser-steps.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/browser-steps/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging (to stderr unless --log-file is set)",
		EnvVars: []string{"BROWSER_STEPS_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file (default: <output>/browser-steps.log for run)",
		EnvVars: []string{"BROWSER_STEPS_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "browser-steps",
		Usage:   "Run Gherkin browser tests against local browsers or a WebDriver grid",
		Version: Version,
		Description: `browser-steps runs Gherkin feature files with a built-in step vocabulary
for browser automation. Sessions run locally through Playwright, or on a remote
WebDriver server (Selenium Grid, BrowserStack) when SELENIUM_SERVER is set.

Examples:
  browser-steps run features/
  browser-steps run --browser chrome --tags @smoke features/
  browser-steps run -v USER=alice -v PASS=secret features/login.feature
  browser-steps browsers
  browser-steps steps`,
		Flags:  GlobalFlags,
		Before: setup,
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			browsersCommand,
			stepsCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup applies the global flags before any command runs.
func setup(c *cli.Context) error {
	if c.Bool("no-ansi") || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	level := "info"
	if c.Bool("verbose") {
		level = "debug"
	}
	if err := logger.SetLevel(level); err != nil {
		return err
	}

	if path := c.String("log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
	} else if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}
	return nil
}
