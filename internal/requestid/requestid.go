// Package requestid carries a request ID through a context so that inbound API
// requests and the store requests they cause share one ID.
package requestid

import "context"

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

type contextKey struct{}

// With returns a context carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// From returns the request ID stored in ctx, or "" when there is none.
func From(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
