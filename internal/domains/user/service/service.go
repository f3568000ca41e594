package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/user/model"
	"hotel/internal/domains/user/model/dto"
	"hotel/internal/domains/user/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/password"
	gRepo "hotel/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetUser    = "user:get"
	cacheGetAllUser = "user:gets"
	cacheCountUser  = "user:count"
)

var (
	errEmailInUse   = failure.Conflict("email is already in use")
	errUserNotFound = failure.NotFound("user not found")
)

// User is the staff-facing account directory. Self registration lives in the auth service.
type User interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func actor(ctx context.Context) string {
	if id, _ := ctx.Value(constant.ContextKeyUserID).(string); id != "" {
		return id
	}

	return constant.ContextGuest
}

// Create opens an account with any role. Staff roles are flagged IsStaff by the request's
// model conversion.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	taken, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return res, fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return res, errEmailInUse
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	user := req.ToModel(actor(ctx), hash)

	err = s.repo.Insert(ctx, user)

	switch {
	case gRepo.IsPqError(err, constant.PqErrorCodeUniqueViolation):
		return res, errEmailInUse
	case err != nil:
		return res, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("userID", user.ID).Str("role", user.Role).Msg("user created")

	s.invalidateLists(ctx)

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllUser)
	shared.InvalidateCaches(ctx, s.cache, cacheCountUser)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := shared.BuildCacheKeyWithQuery(cacheGetAllUser, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (page dto.GetUsersResponse, err error) {
		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		users, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			return page, fmt.Errorf("failed to get users: %w", err)
		}

		page.FromModels(users, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := shared.BuildCacheKeyWithQuery(cacheCountUser, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			return 0, fmt.Errorf("failed to count users: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetUser, id), s.cfg.Cache.TTL,
		func(ctx context.Context) (found dto.UserResponse, err error) {
			user, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
			if err != nil {
				return found, fmt.Errorf("failed to get user: %w", err)
			}

			if user.ID == "" {
				return found, errUserNotFound
			}

			found.FromModel(user)

			return found, nil
		})
}
