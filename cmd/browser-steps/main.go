// Command browser-steps runs Gherkin browser tests.
package main

import "github.com/devicelab-dev/browser-steps/pkg/cli"

func main() {
	cli.Execute()
}
