package action

import (
	"context"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const actionContextKey contextKey = "actionscope_action"

// WithAction adds an action to the context so nested layers can annotate it.
func WithAction(ctx context.Context, a *Action) context.Context {
	return context.WithValue(ctx, actionContextKey, a)
}

// FromContext retrieves the action from context, or nil.
func FromContext(ctx context.Context) *Action {
	if a, ok := ctx.Value(actionContextKey).(*Action); ok {
		return a
	}
	return nil
}
