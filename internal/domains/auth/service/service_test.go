package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/jwt"
	jwtMocks "hotel/infras/jwt/mocks"
	"hotel/infras/otel/mocks"
	"hotel/internal/domains/auth/model/dto"
	"hotel/internal/domains/auth/service"
	userMocks "hotel/internal/domains/user/mocks"
	userModel "hotel/internal/domains/user/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/password"
)

var tokenPair = &jwt.TokenPair{
	AccessToken:  "access-token",
	RefreshToken: "refresh-token",
	TokenType:    "Bearer",
	ExpiresIn:    3600,
}

func newService(t *testing.T) (service.Auth, *userMocks.MockUser, *jwtMocks.MockJWT) {
	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	return service.New(mockRepo, &config.Config{}, mocks.NewOtel(), mockJWT), mockRepo, mockJWT
}

func existingUser(t *testing.T, plain string) userModel.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	return userModel.User{
		ID:       "user-1",
		Email:    "guest@hotel.test",
		Password: hashed,
		Role:     constant.RoleCustomer,
		Active:   true,
	}
}

func TestAuthService_Register(t *testing.T) {
	req := dto.RegisterRequest{Email: "new@hotel.test", Password: "secret1", FullName: "New Guest"}

	tests := []struct {
		name      string
		setupMock func(repo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT)
		wantCode  int
	}{
		{
			name: "successful registration",
			setupMock: func(repo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT) {
				repo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user userModel.User) error {
						assert.Equal(t, constant.RoleCustomer, user.Role)
						assert.False(t, user.IsStaff)
						assert.NotEqual(t, "secret1", user.Password)

						return nil
					})
				jwtSvc.EXPECT().
					GenerateTokenPair(gomock.Any(), gomock.Any(), "new@hotel.test", constant.RoleCustomer).
					Return(tokenPair, nil)
			},
		},
		{
			name: "email already registered",
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "token generation fails",
			setupMock: func(repo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT) {
				repo.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				jwtSvc.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("signing failed"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, jwtSvc := newService(t)
			tt.setupMock(repo, jwtSvc)

			res, err := svc.Register(context.Background(), req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", res.Token)
			assert.Equal(t, "refresh-token", res.Refresh)
			assert.Equal(t, "new@hotel.test", res.User.Email)
			assert.Equal(t, constant.ContextGuest, res.User.CreatedBy)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	user := existingUser(t, "secret1")

	inactive := user
	inactive.Active = false

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(repo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT)
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: user.Email, Password: "secret1"},
			setupMock: func(repo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
				jwtSvc.EXPECT().GenerateTokenPair(gomock.Any(), "user-1", user.Email, constant.RoleCustomer).Return(tokenPair, nil)
				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Contains(t, fields, userModel.FieldLastLogin)

						return nil
					})
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@hotel.test", Password: "secret1"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: user.Email, Password: "secret2"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated account",
			req:  dto.LoginRequest{Email: user.Email, Password: "secret1"},
			setupMock: func(repo *userMocks.MockUser, _ *jwtMocks.MockJWT) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, jwtSvc := newService(t)
			tt.setupMock(repo, jwtSvc)

			res, err := svc.Login(context.Background(), tt.req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", res.Token)
			assert.NotNil(t, res.User.LastLogin)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, jwtSvc := newService(t)

	jwtSvc.EXPECT().RefreshTokens(gomock.Any(), "refresh-token").Return(tokenPair, nil)

	res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{Refresh: "refresh-token"})
	require.NoError(t, err)
	assert.Equal(t, "access-token", res.Token)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	jwtSvc.EXPECT().RefreshTokens(gomock.Any(), "expired").Return(nil, jwt.ErrExpiredToken)

	_, err = svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{Refresh: "expired"})
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
}

func TestAuthService_Me(t *testing.T) {
	svc, repo, _ := newService(t)

	_, err := svc.Me(context.Background())
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: "user-1", Role: constant.RoleAdmin}, nil)

	res, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{constant.RoleAdmin}, res.Roles)
	assert.NotEmpty(t, res.Permissions)

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)

	_, err = svc.Me(ctx)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestAuthService_ChangePassword(t *testing.T) {
	user := existingUser(t, "secret1")
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, user.ID)

	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func(repo *userMocks.MockUser)
		wantCode  int
	}{
		{
			name: "successful change",
			req:  dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						hashed, ok := fields[userModel.FieldPassword].(string)
						require.True(t, ok)
						assert.NoError(t, password.Verify("secret2", hashed))

						return nil
					})
			},
		},
		{
			name: "wrong current password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "update fails",
			req:  dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"},
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			tt.setupMock(repo)

			err := svc.ChangePassword(ctx, tt.req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}
