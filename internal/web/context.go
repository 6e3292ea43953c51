package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/leadintake/internal/core"
	"github.com/JonMunkholm/leadintake/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so service
// log lines can name who made a change and from where.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}

// actorFrom returns the authenticated actor, or "" which the service
// rejects with ErrAuthRequired.
func actorFrom(r *http.Request) string {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}
