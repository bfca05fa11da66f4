// Package jsengine evaluates JavaScript in an embedded goja runtime. Steps use
// it where feature files are written against JavaScript semantics, such as
// regular expression literals.
package jsengine

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Engine wraps a goja runtime. Safe for concurrent use; calls are serialized.
type Engine struct {
	runtime *goja.Runtime
	mu      sync.Mutex
}

// New creates a new JS engine instance
func New() *Engine {
	return &Engine{runtime: goja.New()}
}

// call invokes a JS function expression with Go arguments
func (e *Engine) call(fnExpr string, args ...interface{}) (goja.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.runtime.RunString("(" + fnExpr + ")")
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("JS eval error: %s is not a function", fnExpr)
	}

	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = e.runtime.ToValue(a)
	}
	result, err := fn(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, fmt.Errorf("JS runtime error: %w", err)
	}
	return result, nil
}

// Close interrupts any running script. Safe to call multiple times.
func (e *Engine) Close() {
	e.runtime.Interrupt("engine closed")
}
