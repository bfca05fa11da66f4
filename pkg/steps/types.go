package steps

import (
	"strings"

	"github.com/titanous/json5"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

// ParseJSON parses a JSON5 value: strict JSON plus unquoted object keys,
// single-quoted strings, trailing commas, comments and hex numbers.
// Numbers decode as float64.
func ParseJSON(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, core.ErrInvalidConfig.WithMessage("invalid JSON value: empty")
	}
	var v interface{}
	if err := json5.Unmarshal([]byte(s), &v); err != nil {
		return nil, core.ErrInvalidConfig.WithMessagef("invalid JSON value %s", s).WithCause(err)
	}
	return v, nil
}
