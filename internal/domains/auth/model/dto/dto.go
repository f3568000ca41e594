package dto

import (
	"time"

	"hotel/infras/jwt"
	userModel "hotel/internal/domains/user/model"
	userDto "hotel/internal/domains/user/model/dto"
	"hotel/shared/constant"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
)

// RegisterRequest always yields a CUSTOMER; staff accounts are created through the admin API or the seeder.
type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email,max=254"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=150"`
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	now := timezone.Now()

	return userModel.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		FullName: r.FullName,
		Role:     constant.RoleCustomer,
		Active:   true,
		IsStaff:  false,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  constant.ContextGuest,
			ModifiedBy: constant.ContextGuest,
		},
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login"`
}

// LoginResponse is shared by register and login.
type LoginResponse struct {
	Token     string               `json:"token"`
	Refresh   string               `json:"refresh"`
	ExpiresIn int64                `json:"expires_in"`
	User      userDto.UserResponse `json:"user"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair, user userModel.User) {
	l.Token = tokenPair.AccessToken
	l.Refresh = tokenPair.RefreshToken
	l.ExpiresIn = tokenPair.ExpiresIn
	l.User.FromModel(user)
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type RefreshTokenResponse struct {
	Token     string `json:"token"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.Token = tokenPair.AccessToken
	r.Refresh = tokenPair.RefreshToken
	r.ExpiresIn = tokenPair.ExpiresIn
}

// MeResponse is the profile returned for the token's owner.
type MeResponse = userDto.UserResponse

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password"`
}
