package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ActorHeader names the acting user when token auth is disabled.
const ActorHeader = "X-Actor-ID"

type contextKey string

const actorKey contextKey = "actor"

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Secret is the HMAC key bearer tokens are signed with.
	Secret string

	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string

	// Disabled trusts ActorHeader instead of a token. Local development only.
	Disabled bool
}

// Authenticate resolves the acting user for every request and stores it in
// the request context. A request without a resolvable actor is rejected
// with 401 before reaching the handler.
//
// With auth enabled the actor is the sub claim of an HMAC-signed JWT sent as
// "Authorization: Bearer <token>". If no secret is configured every request
// is rejected.
func Authenticate(opts AuthOptions) func(http.Handler) http.Handler {
	parser := newTokenParser(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				actor string
				err   error
			)
			if opts.Disabled {
				actor = strings.TrimSpace(r.Header.Get(ActorHeader))
				if actor == "" {
					err = fmt.Errorf("missing %s header", ActorHeader)
				}
			} else {
				actor, err = parser.actor(r.Header.Get("Authorization"))
			}

			if err != nil {
				slog.Warn("auth: rejected request",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", ClientIP(r),
					"error", err,
				)
				writeAuthError(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores the acting user in ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting user set by Authenticate.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)
	return actor, ok && actor != ""
}

type tokenParser struct {
	secret []byte
	parser *jwt.Parser
}

func newTokenParser(opts AuthOptions) *tokenParser {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	return &tokenParser{
		secret: []byte(opts.Secret),
		parser: jwt.NewParser(parserOpts...),
	}
}

func (p *tokenParser) actor(header string) (string, error) {
	if len(p.secret) == 0 {
		return "", fmt.Errorf("token auth is not configured")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	var claims jwt.RegisteredClaims
	token, err := p.parser.ParseWithClaims(strings.TrimSpace(tokenString), &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="leads"`)
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q,"message":"Please sign in to continue.","code":"AUTH001"}`, message)
}
