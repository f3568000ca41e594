package auth

import (
	"context"
	"net/http"

	"hotel/infras/otel"
	"hotel/internal/domains/auth/model/dto"
	"hotel/internal/domains/auth/service"
	"hotel/shared/constant"
	"hotel/shared/validator"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh", handler.RefreshToken)
		r.Get("/me", handler.Me)
		r.Post("/change-password", handler.ChangePassword)
	})
}

func (handler *Handler) scope(r *http.Request, name string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

// exchange decodes a JSON body of type Req, hands it to call and writes the result with status.
func exchange[Req, Res any](
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	scope otel.Scope,
	status int,
	call func(context.Context, Req) (Res, error),
) bool {
	var req Req

	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return false
	}

	res, err := call(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("auth request rejected")

		response.WithError(w, err)

		return false
	}

	response.WithJSON(w, status, res)

	return true
}

// Register creates a customer account and returns the same payload as login.
// @Summary Register a new customer
// @Description Register a CUSTOMER account and sign it in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Data[dto.LoginResponse] "Registered and signed in"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Register")
	defer scope.End()

	if exchange(ctx, w, r, scope, http.StatusCreated, handler.service.Register) {
		scope.AddEvent("customer registered")
	}
}

// Login exchanges credentials for a token pair.
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Data[dto.LoginResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Login")
	defer scope.End()

	if exchange(ctx, w, r, scope, http.StatusOK, handler.service.Login) {
		scope.AddEvent("signed in")
	}
}

// RefreshToken rotates a refresh token into a new pair.
// @Summary Refresh the token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Data[dto.RefreshTokenResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/refresh [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "RefreshToken")
	defer scope.End()

	if exchange(ctx, w, r, scope, http.StatusOK, handler.service.RefreshToken) {
		scope.AddEvent("token pair rotated")
	}
}

// Me returns the authenticated user.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[dto.MeResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "Me")
	defer scope.End()

	user, err := handler.service.Me(ctx)
	if err != nil {
		fail(w, scope, err, "failed to load current user")

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// ChangePassword changes the authenticated user's password.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message "Password changed"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "ChangePassword")
	defer scope.End()

	req := dto.ChangePasswordRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "failed to validate request body")

		return
	}

	if err := handler.service.ChangePassword(ctx, req); err != nil {
		fail(w, scope, err, "failed to change password")

		return
	}

	scope.AddEvent("password changed")

	response.WithMessage(w, http.StatusOK, "Password changed successfully")
}
