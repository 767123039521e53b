package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// StaticAuthenticator resolves a token of the form
// "<tenant_id>:<actor_id>:<privileged|member>" to a Principal, without
// calling out to an external identity provider. It exists so this module
// is runnable standalone; production deployments supply their own
// Authenticator (JWT validation, an IAM lookup, etc.) implementing the
// same narrow interface.
type StaticAuthenticator struct{}

// NewStaticAuthenticator builds the static token-format authenticator.
func NewStaticAuthenticator() *StaticAuthenticator {
	return &StaticAuthenticator{}
}

// Authenticate parses token into a Principal. A malformed token is
// treated as authentication failure, not a panic.
func (StaticAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, nil
	}
	return &Principal{
		TenantID:   parts[0],
		ActorID:    parts[1],
		Privileged: parts[2] == "privileged",
	}, nil
}

type contextKey string

const (
	tenantIDContextKey  contextKey = "tenant_id"
	actorIDContextKey   contextKey = "actor_id"
	privilegedContextKey contextKey = "privileged"
)

// Principal is what an Authenticator resolves a bearer token to. The
// identity provider itself is a boundary service, out of this module's
// scope; this is the narrow interface the pipeline consumes.
type Principal struct {
	TenantID   string
	ActorID    string
	Privileged bool
}

// Authenticator validates a bearer token and resolves it to a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// Auth extracts the bearer token, resolves it via auth, and stores the
// resulting tenant id, actor id, and privileged flag in the request context.
type Auth struct {
	logger zerolog.Logger
	auth   Authenticator
	header string
}

// NewAuth builds the auth middleware over the given Authenticator.
func NewAuth(logger zerolog.Logger, auth Authenticator, header string) *Auth {
	if header == "" {
		header = "Authorization"
	}
	return &Auth{logger: logger, auth: auth, header: header}
}

// Handler is the chi-compatible middleware function.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(a.header)
		if raw == "" {
			writeUnauthorized(w, "missing authorization header")
			return
		}
		token := raw
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			token = raw[7:]
		}
		if token == "" {
			writeUnauthorized(w, "empty bearer token")
			return
		}

		principal, err := a.auth.Authenticate(r.Context(), token)
		if err != nil || principal == nil {
			a.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
			writeUnauthorized(w, "invalid credentials")
			return
		}

		ctx := context.WithValue(r.Context(), tenantIDContextKey, principal.TenantID)
		ctx = context.WithValue(ctx, actorIDContextKey, principal.ActorID)
		ctx = context.WithValue(ctx, privilegedContextKey, principal.Privileged)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "error",
		"error_code": "UNAUTHENTICATED",
		"message": msg,
	})
}

// TenantID reads the authenticated tenant id from request context.
func TenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDContextKey).(string)
	return v
}

// ActorID reads the authenticated actor id from request context.
func ActorID(ctx context.Context) string {
	v, _ := ctx.Value(actorIDContextKey).(string)
	return v
}

// IsPrivileged reports whether the authenticated actor holds the
// privileged (HOD) capability required to commit a session.
func IsPrivileged(ctx context.Context) bool {
	v, _ := ctx.Value(privilegedContextKey).(bool)
	return v
}
