package jsengine

import (
	"regexp"
)

// literal matches "/source/flags" regular expression literals.
var literal = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

// RegExp is a JavaScript regular expression in source/flags form.
type RegExp struct {
	Source string
	Flags  string
}

// String renders the expression as a JS literal.
func (r RegExp) String() string {
	return "/" + r.Source + "/" + r.Flags
}

// RegExpFromString reads "/source/flags" as a literal; any other string is
// taken whole as the source with no flags.
func RegExpFromString(s string) RegExp {
	if m := literal.FindStringSubmatch(s); m != nil {
		return RegExp{Source: m[1], Flags: m[2]}
	}
	return RegExp{Source: s}
}

// Test reports whether input matches re using JavaScript RegExp semantics.
func (e *Engine) Test(re RegExp, input string) (bool, error) {
	result, err := e.call(`function (source, flags, input) {
		return new RegExp(source, flags).test(input)
	}`, re.Source, re.Flags, input)
	if err != nil {
		return false, err
	}
	return result.ToBoolean(), nil
}

// MatchString tests input against a pattern string read by RegExpFromString.
func MatchString(pattern, input string) (bool, error) {
	e := New()
	defer e.Close()
	return e.Test(RegExpFromString(pattern), input)
}
