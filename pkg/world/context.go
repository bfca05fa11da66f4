package world

import (
	"context"

	"github.com/devicelab-dev/browser-steps/pkg/core"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying w.
func NewContext(ctx context.Context, w *World) context.Context {
	return context.WithValue(ctx, ctxKey{}, w)
}

// FromContext returns the World carried by ctx.
func FromContext(ctx context.Context) (*World, error) {
	w, ok := ctx.Value(ctxKey{}).(*World)
	if !ok || w == nil {
		return nil, core.NewExecutionError(core.ErrCategoryConfig, "no_world", "no World in step context")
	}
	return w, nil
}
