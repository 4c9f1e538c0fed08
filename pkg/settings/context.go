package settings

import (
	"context"
)

type contextKey string

const (
	runContextKey contextKey = "filtx-run-settings"
)

// IntoContext stores a Run object in the context.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runContextKey, s)
}

// FromContext retrieves a Run object from the context.
func FromContext(ctx context.Context) (*Run, bool) {
	val := ctx.Value(runContextKey)
	s, ok := val.(*Run)
	return s, ok
}

// FromContextOrDefault retrieves a Run object from the context, falling back
// to fresh CLI defaults when the context carries none.
func FromContextOrDefault(ctx context.Context) *Run {
	if s, ok := FromContext(ctx); ok {
		return s
	}
	return NewCliParams()
}
