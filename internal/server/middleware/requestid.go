// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/employee-directory/internal/requestid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = requestid.Header

// RequestID reuses the caller's X-Request-ID or assigns a new one, stores it in
// the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestid.With(r.Context(), id)))
	})
}

// GetRequestID returns the request ID stored in ctx, or "" when there is none.
func GetRequestID(ctx context.Context) string {
	return requestid.From(ctx)
}
