package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/browser-steps/pkg/browsers"
	"github.com/devicelab-dev/browser-steps/pkg/config"
	"github.com/devicelab-dev/browser-steps/pkg/steps"
)

var browsersCommand = &cli.Command{
	Name:      "browsers",
	Usage:     "List capability shorthands",
	ArgsUsage: "[name]",
	Description: `Print the capabilities each --browser shorthand resolves to, after
BROWSER_NAME, BROWSER_VERSION, OS, OS_VERSION, CHROME_ARGS and BROWSER_LOCAL
overrides from the environment.

Examples:
  browser-steps browsers
  browser-steps browsers chrome`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "Load environment variables from these files (default: ./.env if present)",
		},
	},
	Action: runBrowsers,
}

var stepsCommand = &cli.Command{
	Name:  "steps",
	Usage: "Print the step vocabulary",
	Action: func(c *cli.Context) error {
		for _, d := range steps.All() {
			fmt.Fprintf(c.App.Writer, "%s\n", boldColor.Sprint(d.Usage()))
			if d.Doc != "" {
				fmt.Fprintf(c.App.Writer, "    %s\n", grayColor.Sprint(d.Doc))
			}
		}
		return nil
	},
}

func runBrowsers(c *cli.Context) error {
	if err := config.LoadDotEnv(c.StringSlice("env-file")...); err != nil {
		return err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return err
	}

	names := browsers.Names()
	if c.NArg() > 0 {
		names = c.Args().Slice()
	}

	for _, name := range names {
		caps, ok := browsers.Lookup(name, env.Browsers())
		if !ok {
			return fmt.Errorf("unknown browser %q (available: %v)", name, browsers.Names())
		}
		out, err := yaml.Marshal(map[string]interface{}(caps))
		if err != nil {
			return err
		}
		marker := ""
		if name == env.Browser {
			marker = grayColor.Sprint(" (default)")
		}
		fmt.Fprintf(c.App.Writer, "%s:%s\n", skipColor.Sprint(name), marker)
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			fmt.Fprintf(c.App.Writer, "  %s\n", line)
		}
	}
	return nil
}
