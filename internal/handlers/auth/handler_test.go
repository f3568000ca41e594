package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	otelMocks "hotel/infras/otel/mocks"
	"hotel/internal/domains/auth/model/dto"
	"hotel/internal/domains/auth/service/mocks"
	userDto "hotel/internal/domains/user/model/dto"
	"hotel/internal/handlers/auth"
	"hotel/shared/failure"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		setupMock func(m *mocks.MockAuth)
		wantCode  int
		wantBody  string
	}{
		{
			name:   "register answers with the login payload",
			method: http.MethodPost,
			path:   "/auth/register",
			body:   `{"email": "ama@example.com", "password": "secret1", "full_name": "Ama Mensah"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().Register(gomock.Any(), dto.RegisterRequest{
					Email: "ama@example.com", Password: "secret1", FullName: "Ama Mensah",
				}).Return(dto.LoginResponse{Token: "access", Refresh: "refresh"}, nil)
			},
			wantCode: http.StatusCreated,
			wantBody: `"refresh":"refresh"`,
		},
		{
			name:     "register with a short password",
			method:   http.MethodPost,
			path:     "/auth/register",
			body:     `{"email": "ama@example.com", "password": "123"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "register with a taken email",
			method: http.MethodPost,
			path:   "/auth/register",
			body:   `{"email": "ama@example.com", "password": "secret1"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(dto.LoginResponse{}, failure.Conflict("email already registered"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name:   "login with wrong credentials",
			method: http.MethodPost,
			path:   "/auth/login",
			body:   `{"email": "ama@example.com", "password": "nope"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().Login(gomock.Any(), gomock.Any()).Return(dto.LoginResponse{}, failure.Unauthorized("invalid email or password"))
			},
			wantCode: http.StatusUnauthorized,
			wantBody: "invalid email or password",
		},
		{
			name:     "login with malformed body",
			method:   http.MethodPost,
			path:     "/auth/login",
			body:     `email=ama`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "refresh",
			method: http.MethodPost,
			path:   "/auth/refresh",
			body:   `{"refresh": "old"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().RefreshToken(gomock.Any(), dto.RefreshTokenRequest{Refresh: "old"}).
					Return(dto.RefreshTokenResponse{Token: "a2", Refresh: "r2", ExpiresIn: 900}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `"expires_in":900`,
		},
		{
			name:   "me",
			method: http.MethodGet,
			path:   "/auth/me",
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().Me(gomock.Any()).Return(userDto.UserResponse{ID: "u-1", Email: "ama@example.com"}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: "ama@example.com",
		},
		{
			name:   "change password failure is masked",
			method: http.MethodPost,
			path:   "/auth/change-password",
			body:   `{"current_password": "secret1", "new_password": "secret2"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: "Internal Server Error",
		},
		{
			name:   "change password",
			method: http.MethodPost,
			path:   "/auth/change-password",
			body:   `{"current_password": "secret1", "new_password": "secret2"}`,
			setupMock: func(m *mocks.MockAuth) {
				m.EXPECT().ChangePassword(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.ChangePasswordRequest) error {
						assert.Equal(t, "secret2", req.NewPassword)

						return nil
					})
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockAuth(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			handler := auth.New(svc, otelMocks.NewOtel())
			router := chi.NewRouter()
			handler.Router(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
