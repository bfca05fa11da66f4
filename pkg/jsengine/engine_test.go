package jsengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall(t *testing.T) {
	engine := New()
	defer engine.Close()

	v, err := engine.call(`function (a, b) { return a + ':' + b }`, "john", 42)
	require.NoError(t, err)
	assert.Equal(t, "john:42", v.String())
}

func TestCallErrors(t *testing.T) {
	engine := New()
	defer engine.Close()

	tests := []struct {
		name   string
		fnExpr string
		want   string
	}{
		{"syntax", "function (", "JS eval error"},
		{"not a function", "42", "is not a function"},
		{"throws", "function () { throw new Error('boom') }", "JS runtime error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.call(tt.fnExpr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClose(t *testing.T) {
	engine := New()
	engine.Close()
	engine.Close()

	_, err := engine.Test(RegExp{Source: "a"}, "a")
	assert.Error(t, err, "closed engine rejects scripts")
}
