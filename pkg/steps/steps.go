// Package steps binds the Gherkin step vocabulary to the World.
package steps

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"regexp/syntax"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/devicelab-dev/browser-steps/pkg/world"
)

const (
	// qualifier matches the qualifier in "with <qualifier> "<value>"" phrases.
	qualifier = `(text containing|\S+)`
	// quoted matches a double- or single-quoted argument; a backslash escapes
	// the quote character.
	quoted = `("(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')`
	// number matches 2, 1.5 and .5.
	number = `(\d*\.?\d+)`
)

// Definition is a step expression and its handler.
type Definition struct {
	Expr    string
	Handler interface{}
	Doc     string
}

// All returns every step definition: browser steps, then variable steps.
func All() []Definition {
	return append(browserSteps(), variableSteps()...)
}

// Register adds every step definition to sc.
func Register(sc *godog.ScenarioContext) {
	for _, d := range All() {
		sc.Step(d.Expr, d.handler())
	}
}

// Usage renders Expr for people, with {string} and {float} in place of the
// argument patterns.
func (d Definition) Usage() string {
	expr := strings.TrimSuffix(strings.TrimPrefix(d.Expr, "^"), "$")
	return strings.NewReplacer(quoted, "{string}", number, "{float}").Replace(expr)
}

// Match returns the arguments text binds to, quotes removed, and whether it matched.
func (d Definition) Match(text string) ([]string, bool) {
	m := regexp.MustCompile(d.Expr).FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	args := m[1:]
	for _, i := range quotedArgs(d.Expr) {
		args[i] = unquote(args[i])
	}
	return args, true
}

// handler wraps Handler so quoted arguments arrive without their quotes.
func (d Definition) handler() interface{} {
	args := quotedArgs(d.Expr)
	if len(args) == 0 {
		return d.Handler
	}
	fn := reflect.ValueOf(d.Handler)
	return reflect.MakeFunc(fn.Type(), func(in []reflect.Value) []reflect.Value {
		for _, i := range args {
			// in[0] is the context
			in[i+1] = reflect.ValueOf(unquote(in[i+1].String()))
		}
		return fn.Call(in)
	}).Interface()
}

var quotedGroup = func() *syntax.Regexp {
	re, err := syntax.Parse(quoted, syntax.Perl)
	if err != nil {
		panic(err)
	}
	return re.Sub[0]
}()

// quotedArgs returns the argument indexes of expr captured by the quoted pattern.
func quotedArgs(expr string) []int {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil
	}
	var idx []int
	var walk func(*syntax.Regexp)
	walk = func(r *syntax.Regexp) {
		if r.Op == syntax.OpCapture && r.Sub[0].Equal(quotedGroup) {
			idx = append(idx, r.Cap-1)
		}
		for _, sub := range r.Sub {
			walk(sub)
		}
	}
	walk(re)
	return idx
}

// unquote strips the surrounding quotes and unescapes the quote character.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[:1]
	return strings.ReplaceAll(s[1:len(s)-1], `\`+q, q)
}

// current returns the World of the running scenario.
func current(ctx context.Context) (*world.World, error) {
	return world.FromContext(ctx)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// hashes returns the data rows of a table keyed by its header row. Every
// column in required must be present.
func hashes(table *godog.Table, required ...string) ([]map[string]string, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("expected a data table with columns %q", required)
	}
	header := table.Rows[0].Cells
	names := make([]string, len(header))
	for i, cell := range header {
		names[i] = cell.Value
	}
	for _, col := range required {
		found := false
		for _, name := range names {
			if name == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("data table is missing the %q column (got %q)", col, names)
		}
	}

	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		m := make(map[string]string, len(names))
		for i, cell := range row.Cells {
			if i < len(names) {
				m[names[i]] = cell.Value
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}
