package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"hotel/config"
	"hotel/infras/jwt"
	"hotel/infras/otel"
	"hotel/permissions"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// internalCaller marks a request authenticated by the API key.
type internalCaller struct{}

var (
	errMissingAuthorization = failure.Unauthorized("Missing authorization header")
	errAuthorizationFormat  = failure.Unauthorized("Invalid authorization header format")
	errInvalidClaims        = failure.Unauthorized("Invalid token claims")
	errForbidden            = failure.Forbidden("You do not have permission to perform this action")
)

// tokenFailures maps token validation errors onto the message returned to the caller.
var tokenFailures = []struct {
	target  error
	message string
}{
	{jwt.ErrExpiredToken, "Token has expired"},
	{jwt.ErrInvalidToken, "Invalid token"},
	{jwt.ErrInvalidClaim, "Invalid token claims"},
}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole is the full access-control chain: APIKey, then Auth, then RBAC.
type AuthRole interface {
	Auth
	Role
}

type accessControl struct {
	tokens      jwt.JWT
	otel        otel.Otel
	permissions *permissions.PermissionData
	apiKey      string
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, perms *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &accessControl{
		tokens:      jwtService,
		otel:        otel,
		permissions: perms,
		apiKey:      cfg.App.APIKey,
	}
}

func isInternal(ctx context.Context) bool {
	internal, _ := ctx.Value(internalCaller{}).(bool)

	return internal
}

// withIdentity copies the token claims onto the context under the keys services read.
func withIdentity(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)

	return context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)
}

// route resolves the chi pattern of the request and its declared endpoint. The pattern is
// empty when no route matches, leaving chi to answer 404 or 405.
func (m *accessControl) route(request *http.Request) (string, permissions.Endpoint, bool) {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return "", permissions.Endpoint{}, false
	}

	pattern := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
	if pattern == "" || m.permissions == nil {
		return pattern, permissions.Endpoint{}, false
	}

	endpoint, found := m.permissions.FindPermissions(pattern, request.Method)

	return pattern, endpoint, found
}

// Auth validates the bearer token and stores the caller identity on the context.
// Public endpoints accept anonymous callers, but a token that is sent must be valid.
func (m *accessControl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "middleware.auth")
		defer scope.End()

		if isInternal(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		pattern, endpoint, found := m.route(request)
		if pattern == "" {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"http.route":  pattern,
			"http.method": request.Method,
		})

		header := request.Header.Get(constant.RequestHeaderAuthorization)

		switch {
		case header == "" && found && endpoint.Skip:
			next.ServeHTTP(writer, request)

			return
		case header == "":
			scope.TraceError(errMissingAuthorization)
			response.WithError(writer, errMissingAuthorization)

			return
		}

		claims, err := m.authenticate(ctx, header)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request.WithContext(withIdentity(request.Context(), claims)))
	})
}

func (m *accessControl) authenticate(ctx context.Context, header string) (*jwt.Claims, error) {
	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, errAuthorizationFormat
	}

	claims, err := m.tokens.ValidateToken(ctx, token, jwt.AccessToken)
	if err != nil {
		for _, tf := range tokenFailures {
			if errors.Is(err, tf.target) {
				return nil, failure.Unauthorized(tf.message)
			}
		}

		return nil, failure.Unauthorized("Token validation failed")
	}

	if claims.UserID == "" || claims.Email == "" {
		log.Warn().Str("user_id", claims.UserID).Str("token_id", claims.TokenID).Msg("token carries an incomplete identity")

		return nil, errInvalidClaims
	}

	return claims, nil
}

// RBAC requires the caller's role to hold every capability the endpoint declares. Routes that
// exist but are absent from the permission file are denied.
func (m *accessControl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "middleware.rbac")
		defer scope.End()

		pattern, endpoint, found := m.route(request)

		switch {
		case isInternal(ctx), pattern == "":
			next.ServeHTTP(writer, request)

			return
		case !found:
			scope.SetAttribute("reason", "endpoint_not_declared")
			scope.TraceError(errForbidden)
			response.WithError(writer, errForbidden)

			return
		case m.permissions.Skip || endpoint.Skip:
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if !permissions.CanAll(role, endpoint.Permissions) {
			scope.SetAttributes(map[string]any{
				"user_role":             role,
				"required_capabilities": endpoint.Permissions,
				"reason":                "capability_missing",
			})
			scope.TraceError(errForbidden)
			response.WithError(writer, errForbidden)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

// APIKey lets internal services act as ADMIN with the shared key. A wrong key is refused
// outright rather than treated as anonymous.
func (m *accessControl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "middleware.api_key")
		defer scope.End()

		key := request.Header.Get(constant.RequestHeaderAPIKey)
		if key == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			scope.TraceError(errForbidden)
			response.WithError(writer, errForbidden)

			return
		}

		ctx := context.WithValue(request.Context(), internalCaller{}, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
