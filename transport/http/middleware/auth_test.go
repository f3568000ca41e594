package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/jwt"
	jwtMocks "hotel/infras/jwt/mocks"
	otelMocks "hotel/infras/otel/mocks"
	"hotel/permissions"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"
)

const testPermissions = `{
  "endpoints": [
    {"path": "/v1/rooms/", "method": "GET", "skip": true},
    {"path": "/v1/rooms/", "method": "POST", "permissions": ["manage_rooms"]},
    {"path": "/v1/bookings/me", "method": "GET", "permissions": []}
  ]
}`

const testAPIKey = "internal-key"

func newRouter(t *testing.T, jwtService jwt.JWT) http.Handler {
	t.Helper()

	perms, err := permissions.Load([]byte(testPermissions))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = testAPIKey

	mw := middleware.NewAuthRoleMiddleware(jwtService, otelMocks.NewOtel(), perms, cfg)

	whoami := func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		_, _ = w.Write([]byte(userID))
	}

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)
	router.Route("/v1", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", whoami)
			r.Post("/", whoami)
		})
		r.Get("/bookings/me", whoami)
		r.Get("/undeclared", whoami)
	})

	return router
}

func TestAuthRole(t *testing.T) {
	customer := &jwt.Claims{UserID: "u-customer", Email: "guest@example.com", Role: constant.RoleCustomer}
	receptionist := &jwt.Claims{UserID: "u-desk", Email: "desk@example.com", Role: constant.RoleReceptionist}

	tests := []struct {
		name      string
		method    string
		path      string
		header    map[string]string
		setupMock func(m *jwtMocks.MockJWT)
		wantCode  int
		wantBody  string
	}{
		{
			name:     "public endpoint without token",
			method:   http.MethodGet,
			path:     "/v1/rooms/",
			wantCode: http.StatusOK,
		},
		{
			name:     "public endpoint without trailing slash",
			method:   http.MethodGet,
			path:     "/v1/rooms",
			wantCode: http.StatusOK,
		},
		{
			name:   "public endpoint with valid token carries identity",
			method: http.MethodGet,
			path:   "/v1/rooms/",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(customer, nil)
			},
			wantCode: http.StatusOK,
			wantBody: "u-customer",
		},
		{
			name:   "public endpoint with invalid token",
			method: http.MethodGet,
			path:   "/v1/rooms/",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer bad"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "bad", jwt.AccessToken).Return(nil, jwt.ErrInvalidToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "authenticated endpoint without token",
			method:   http.MethodGet,
			path:     "/v1/bookings/me",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed authorization header",
			method:   http.MethodGet,
			path:     "/v1/bookings/me",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/v1/bookings/me",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "claims without email",
			method: http.MethodGet,
			path:   "/v1/bookings/me",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer partial"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "partial", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u-1", Role: constant.RoleCustomer}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "any role may use an empty capability list",
			method: http.MethodGet,
			path:   "/v1/bookings/me",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(customer, nil)
			},
			wantCode: http.StatusOK,
			wantBody: "u-customer",
		},
		{
			name:   "customer lacks manage_rooms",
			method: http.MethodPost,
			path:   "/v1/rooms/",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(customer, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "receptionist holds manage_rooms",
			method: http.MethodPost,
			path:   "/v1/rooms/",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer desk"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "desk", jwt.AccessToken).Return(receptionist, nil)
			},
			wantCode: http.StatusOK,
			wantBody: "u-desk",
		},
		{
			name:   "undeclared route is denied",
			method: http.MethodGet,
			path:   "/v1/undeclared",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer desk"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "desk", jwt.AccessToken).Return(receptionist, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown path is not found",
			method:   http.MethodGet,
			path:     "/v1/nowhere",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "valid api key bypasses authentication",
			method:   http.MethodPost,
			path:     "/v1/rooms/",
			header:   map[string]string{constant.RequestHeaderAPIKey: testAPIKey},
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong api key",
			method:   http.MethodGet,
			path:     "/v1/rooms/",
			header:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			jwtService := jwtMocks.NewMockJWT(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(jwtService)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.header {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			newRouter(t, jwtService).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
